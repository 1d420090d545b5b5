package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
)

type OutreachRepositoryInterface interface {
	CreateIfAbsent(ctx context.Context, o *model.Outreach) (*model.Outreach, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Outreach, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Outreach, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*model.Outreach, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetAgreed(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
	SetSession(ctx context.Context, id uuid.UUID, sessionID string) error
	StatsByCampaign(ctx context.Context, campaignID uuid.UUID) (map[string]int, error)
}

type OutreachRepository struct {
	DB DBTX
}

const outreachColumns = `id, campaign_id, influencer_id, influencer_name, influencer_email, email_subject, email_body,
        status, agreed_price, session_id, created_at, updated_at`

// CreateIfAbsent is an idempotent insert: a second call for the same campaign
// and influencer returns the existing row and false.
func (r *OutreachRepository) CreateIfAbsent(ctx context.Context, o *model.Outreach) (*model.Outreach, bool, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = model.OutreachSent
	}
	query := `
        INSERT INTO outreach (id, campaign_id, influencer_id, influencer_name, influencer_email, email_subject, email_body, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        ON CONFLICT (campaign_id, influencer_id) DO NOTHING
        RETURNING ` + outreachColumns
	created, err := scanOutreach(r.DB.QueryRowContext(ctx, query, o.ID, o.CampaignID, o.InfluencerID,
		o.InfluencerName, o.InfluencerEmail, o.EmailSubject, o.EmailBody, o.Status))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	existing, err := scanOutreach(r.DB.QueryRowContext(ctx,
		`SELECT `+outreachColumns+` FROM outreach WHERE campaign_id=$1 AND influencer_id=$2`, o.CampaignID, o.InfluencerID))
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *OutreachRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Outreach, error) {
	o, err := scanOutreach(r.DB.QueryRowContext(ctx, `SELECT `+outreachColumns+` FROM outreach WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("outreach", id)
	}
	return o, err
}

func (r *OutreachRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Outreach, error) {
	o, err := scanOutreach(r.DB.QueryRowContext(ctx, `SELECT `+outreachColumns+` FROM outreach WHERE session_id=$1`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &appErrors.NotFoundError{Entity: "outreach for session", ID: sessionID}
	}
	return o, err
}

func (r *OutreachRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*model.Outreach, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+outreachColumns+` FROM outreach WHERE campaign_id=$1 ORDER BY created_at`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.Outreach{}
	for rows.Next() {
		o, err := scanOutreach(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *OutreachRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE outreach SET status=$1, updated_at=NOW() WHERE id=$2`
	return expectOne(r.DB.ExecContext(ctx, query, status, id))("outreach", id)
}

func (r *OutreachRepository) SetAgreed(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	query := `UPDATE outreach SET status=$1, agreed_price=$2, updated_at=NOW() WHERE id=$3`
	return expectOne(r.DB.ExecContext(ctx, query, model.OutreachReplied, price, id))("outreach", id)
}

func (r *OutreachRepository) SetSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	query := `UPDATE outreach SET session_id=$1, updated_at=NOW() WHERE id=$2`
	return expectOne(r.DB.ExecContext(ctx, query, sessionID, id))("outreach", id)
}

func (r *OutreachRepository) StatsByCampaign(ctx context.Context, campaignID uuid.UUID) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM outreach WHERE campaign_id=$1 GROUP BY status`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		"total":                 0,
		model.OutreachSent:      0,
		model.OutreachPending:   0,
		model.OutreachReplied:   0,
		model.OutreachDeclined:  0,
		model.OutreachCompleted: 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

func scanOutreach(row rowScanner) (*model.Outreach, error) {
	var o model.Outreach
	var session sql.NullString
	err := row.Scan(&o.ID, &o.CampaignID, &o.InfluencerID, &o.InfluencerName, &o.InfluencerEmail,
		&o.EmailSubject, &o.EmailBody, &o.Status, &o.AgreedPrice, &session, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if session.Valid {
		o.SessionID = &session.String
	}
	return &o, nil
}

var _ OutreachRepositoryInterface = (*OutreachRepository)(nil)
