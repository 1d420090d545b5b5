package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ampplex/influencerflow/internal/model"
)

type OutboxRepositoryInterface interface {
	Add(ctx context.Context, topic string, payload any) error
	FetchUnpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

type OutboxRepository struct {
	DB DBTX
}

func (r *OutboxRepository) Add(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO outbox (id, topic, payload, created_at) VALUES ($1, $2, $3::jsonb, NOW())`,
		uuid.New(), topic, string(body))
	return err
}

// FetchUnpublished locks a batch of pending events; call it inside a transaction
// so concurrent relays skip rows another relay holds.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, topic, payload, created_at
        FROM outbox
        WHERE published_at IS NULL
        ORDER BY created_at
        LIMIT $1
        FOR UPDATE SKIP LOCKED
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.OutboxEvent{}
	for rows.Next() {
		var e model.OutboxEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Topic, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = payload
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE outbox SET published_at=NOW() WHERE id=$1`, id)
	return err
}

var _ OutboxRepositoryInterface = (*OutboxRepository)(nil)
