package queue

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ampplex/influencerflow/internal/repository"
)

type TxRunner interface {
	InTx(ctx context.Context, fn func(repository.Repos) error) error
}

// Relay moves committed outbox rows onto the queue.
type Relay struct {
	Store     TxRunner
	Queue     Queue
	Interval  time.Duration
	BatchSize int
	Log       logrus.FieldLogger
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			r.Log.WithError(err).Warn("outbox flush failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Flush publishes one batch. A row is marked published only after the queue
// accepted it, so delivery is at-least-once.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	published := 0
	err := r.Store.InTx(ctx, func(repos repository.Repos) error {
		events, err := repos.Outbox.FetchUnpublished(ctx, r.BatchSize)
		if err != nil {
			return err
		}
		for _, e := range events {
			if err := r.Queue.Publish(e.Topic, e.Payload); err != nil {
				r.Log.WithError(err).WithField("event_id", e.ID).Warn("publish failed, will retry")
				continue
			}
			if err := repos.Outbox.MarkPublished(ctx, e.ID); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	return published, err
}
