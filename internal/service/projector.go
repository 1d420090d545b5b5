package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/negotiation"
	"github.com/ampplex/influencerflow/internal/repository"
	"github.com/ampplex/influencerflow/internal/status"
)

// Projector writes negotiation progress onto outreach, campaign and CRM rows.
type Projector struct {
	Repos repository.Repos
	Tx    TxRunner
	Log   logrus.FieldLogger
	Now   func() time.Time
}

func (p *Projector) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

// ApplyHeuristic logs the influencer's message and, if it matches a status
// keyword, moves the outreach to that status. Completed rows and rows with
// an agreed price are never touched. It returns the status it wrote, or "" when nothing changed.
func (p *Projector) ApplyHeuristic(ctx context.Context, o *model.Outreach, message string) (string, error) {
	err := p.Repos.CRMLogs.Append(ctx, o.CampaignID, o.InfluencerID, model.CRMMessage{
		Content:   message,
		Type:      model.MessageUser,
		Timestamp: p.now(),
	})
	if err != nil {
		return "", fmt.Errorf("crm append: %w", err)
	}

	next, ok := status.Detect(message)
	if !ok || next == o.Status || !status.HeuristicMayOverwrite(o.Status, o.AgreedPrice.Valid) {
		return "", nil
	}
	if err := p.Repos.Outreach.UpdateStatus(ctx, o.ID, next); err != nil {
		return "", fmt.Errorf("outreach status: %w", err)
	}

	p.Log.WithFields(logrus.Fields{
		"outreach_id": o.ID,
		"from":        o.Status,
		"to":          next,
	}).Info("outreach status updated from reply")
	o.Status = next
	return next, nil
}

// ApplyCompletion records the bot's reply. When the turn closed a deal the
// outreach becomes replied with the agreed price and the campaign moves to
// in_review, in the same transaction as the transcript entry.
func (p *Projector) ApplyCompletion(ctx context.Context, o *model.Outreach, c *negotiation.Completion) error {
	now := p.now()
	msgs := []model.CRMMessage{}
	if c.Message != "" {
		msgs = append(msgs, model.CRMMessage{Content: c.Message, Type: model.MessageBot, Timestamp: now})
	}

	if !c.Deal() {
		if len(msgs) == 0 {
			return nil
		}
		return p.Repos.CRMLogs.Append(ctx, o.CampaignID, o.InfluencerID, msgs...)
	}

	price := c.AgreedPrice.Decimal
	msgs = append(msgs, model.CRMMessage{
		Content:   "Negotiation completed at " + price.StringFixed(2),
		Type:      model.MessageSystem,
		Timestamp: now,
	})

	err := p.Tx.InTx(ctx, func(repos repository.Repos) error {
		if err := repos.Outreach.SetAgreed(ctx, o.ID, price); err != nil {
			return err
		}
		if err := repos.Campaigns.SetFinalPrice(ctx, o.CampaignID, model.CampaignInReview, price); err != nil {
			return err
		}
		return repos.CRMLogs.Append(ctx, o.CampaignID, o.InfluencerID, msgs...)
	})
	if err != nil {
		return fmt.Errorf("apply deal: %w", err)
	}

	o.Status = model.OutreachReplied
	o.AgreedPrice = c.AgreedPrice
	p.Log.WithFields(logrus.Fields{
		"outreach_id":  o.ID,
		"campaign_id":  o.CampaignID,
		"agreed_price": price.String(),
	}).Info("🤝 negotiation reached a deal")
	return nil
}
