package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/ampplex/influencerflow/internal/model"
)

type CRMLogRepositoryInterface interface {
	Append(ctx context.Context, campaignID, influencerID uuid.UUID, msgs ...model.CRMMessage) error
	Get(ctx context.Context, campaignID, influencerID uuid.UUID) (*model.CRMLog, error)
}

type CRMLogRepository struct {
	DB DBTX
}

// Append adds messages to the transcript in a single statement, creating the
// log on first use. Postgres concatenates the jsonb arrays under the row lock,
// so concurrent appends never drop each other.
func (r *CRMLogRepository) Append(ctx context.Context, campaignID, influencerID uuid.UUID, msgs ...model.CRMMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	payload, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO crm_logs (id, campaign_id, influencer_id, messages, created_at, updated_at)
        VALUES ($1, $2, $3, $4::jsonb, NOW(), NOW())
        ON CONFLICT (campaign_id, influencer_id)
        DO UPDATE SET messages = crm_logs.messages || EXCLUDED.messages, updated_at = NOW()
    `
	_, err = r.DB.ExecContext(ctx, query, uuid.New(), campaignID, influencerID, string(payload))
	return err
}

// Get returns the transcript, or an empty log when nothing was recorded yet.
func (r *CRMLogRepository) Get(ctx context.Context, campaignID, influencerID uuid.UUID) (*model.CRMLog, error) {
	query := `
        SELECT id, campaign_id, influencer_id, messages, created_at, updated_at
        FROM crm_logs
        WHERE campaign_id=$1 AND influencer_id=$2
    `
	var l model.CRMLog
	var raw []byte
	err := r.DB.QueryRowContext(ctx, query, campaignID, influencerID).
		Scan(&l.ID, &l.CampaignID, &l.InfluencerID, &raw, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &model.CRMLog{CampaignID: campaignID, InfluencerID: influencerID, Messages: []model.CRMMessage{}}, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &l.Messages); err != nil {
		return nil, err
	}
	return &l, nil
}

var _ CRMLogRepositoryInterface = (*CRMLogRepository)(nil)
