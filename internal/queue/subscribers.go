package queue

import (
	"context"

	"github.com/ampplex/influencerflow/internal/logging"
	"github.com/ampplex/influencerflow/internal/model"
)

// DealHandler reacts to an accepted deal.
type DealHandler interface {
	HandleDealAccepted(ctx context.Context, deal model.DealAccepted) error
}

// contextConsumer is implemented by queues whose consumers stop with ctx.
type contextConsumer interface {
	Consume(ctx context.Context, topic string, handler func(payload any) error) error
}

// StartDealAcceptedSubscriber routes deal.accepted events to h. Undecodable
// payloads are dropped rather than retried.
func StartDealAcceptedSubscriber(ctx context.Context, q Queue, h DealHandler) error {
	log := logging.Get().WithField("topic", model.TopicDealAccepted)

	handle := func(payload any) error {
		deal, err := Decode[model.DealAccepted](payload)
		if err != nil {
			log.WithError(err).Warn("⚠️ invalid deal payload")
			return nil
		}

		log.WithField("outreach_id", deal.OutreachID).Info("📩 processing accepted deal")
		return h.HandleDealAccepted(ctx, deal)
	}

	if c, ok := q.(contextConsumer); ok {
		return c.Consume(ctx, model.TopicDealAccepted, handle)
	}
	return q.Subscribe(model.TopicDealAccepted, handle)
}
