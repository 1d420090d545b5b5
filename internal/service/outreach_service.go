package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ampplex/influencerflow/internal/auth"
	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/repository"
)

type OutreachService struct {
	Repos repository.Repos
	Tx    TxRunner
	Log   logrus.FieldLogger
	Now   func() time.Time
}

type InitiateOutreachInput struct {
	InfluencerIDs []uuid.UUID `json:"influencer_ids" validate:"required,min=1,max=200"`
}

// InitiateResult separates rows created by this call from ones that already existed.
type InitiateResult struct {
	Created  []*model.Outreach `json:"created"`
	Existing []*model.Outreach `json:"existing"`
	Skipped  []uuid.UUID       `json:"skipped"`
}

func (s *OutreachService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// InitiateOutreach renders the campaign email for each influencer and records
// one outreach row per pair. Unknown influencers are skipped.
func (s *OutreachService) InitiateOutreach(ctx context.Context, brandID, campaignID uuid.UUID, in InitiateOutreachInput) (*InitiateResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	campaign, err := s.Repos.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(brandID, campaign); err != nil {
		return nil, err
	}
	brand, err := s.Repos.Brands.GetByID(ctx, campaign.BrandID)
	if err != nil {
		return nil, err
	}

	body := campaign.EmailTemplate
	if body == "" {
		body = defaultOutreachBody
	}

	result := &InitiateResult{}
	seen := make(map[uuid.UUID]bool, len(in.InfluencerIDs))
	for _, id := range in.InfluencerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		inf, err := s.Repos.Influencers.GetByID(ctx, id)
		if appErrors.IsNotFound(err) {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		if err != nil {
			return nil, err
		}

		data := map[string]string{
			"influencer_name": inf.Name,
			"brand_name":      brand.Name,
			"campaign_name":   campaign.Name,
			"campaign_type":   campaign.CampaignType,
			"budget":          campaign.Budget.StringFixed(2),
		}
		o := &model.Outreach{
			CampaignID:      campaign.ID,
			InfluencerID:    inf.ID,
			InfluencerName:  inf.Name,
			InfluencerEmail: inf.Email,
			EmailSubject:    RenderTemplate(defaultOutreachSubject, data),
			EmailBody:       RenderTemplate(body, data),
			Status:          model.OutreachSent,
		}
		row, created, err := s.Repos.Outreach.CreateIfAbsent(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("create outreach: %w", err)
		}
		if !created {
			result.Existing = append(result.Existing, row)
			continue
		}
		result.Created = append(result.Created, row)

		err = s.Repos.CRMLogs.Append(ctx, campaign.ID, inf.ID, model.CRMMessage{
			Content:   row.EmailSubject + "\n\n" + row.EmailBody,
			Type:      model.MessageSystem,
			Timestamp: s.now(),
		})
		if err != nil {
			s.Log.WithError(err).WithField("outreach_id", row.ID).Warn("⚠️ failed to log outreach email")
		}
	}

	if len(result.Created) > 0 && campaign.Status == model.CampaignDraft {
		if err := s.Repos.Campaigns.UpdateStatus(ctx, campaign.ID, model.CampaignActive); err != nil {
			return nil, err
		}
	}

	s.Log.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"created":     len(result.Created),
		"existing":    len(result.Existing),
		"skipped":     len(result.Skipped),
	}).Info("📨 outreach initiated")
	return result, nil
}

func (s *OutreachService) ListOutreach(ctx context.Context, campaignID uuid.UUID) ([]*model.Outreach, error) {
	if _, err := s.Repos.Campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.Repos.Outreach.ListByCampaign(ctx, campaignID)
}

// Accept closes the deal: outreach and campaign are completed and a
// deal.accepted event is queued, all in one transaction.
func (s *OutreachService) Accept(ctx context.Context, brandID, outreachID uuid.UUID) (*model.Outreach, error) {
	return s.decide(ctx, brandID, outreachID, true)
}

// Deny declines the outreach and its campaign.
func (s *OutreachService) Deny(ctx context.Context, brandID, outreachID uuid.UUID) (*model.Outreach, error) {
	return s.decide(ctx, brandID, outreachID, false)
}

func (s *OutreachService) decide(ctx context.Context, brandID, outreachID uuid.UUID, accept bool) (*model.Outreach, error) {
	var out *model.Outreach
	err := s.Tx.InTx(ctx, func(repos repository.Repos) error {
		o, err := repos.Outreach.GetByID(ctx, outreachID)
		if err != nil {
			return err
		}
		campaign, err := repos.Campaigns.GetByID(ctx, o.CampaignID)
		if err != nil {
			return err
		}
		if err := ensureOwner(brandID, campaign); err != nil {
			return err
		}
		if o.Status == model.OutreachCompleted || o.Status == model.OutreachDeclined {
			return fmt.Errorf("%w: outreach already %s", appErrors.ErrInvalidTransition, o.Status)
		}

		note := "Brand declined the deal"
		if accept {
			if err := repos.Outreach.UpdateStatus(ctx, o.ID, model.OutreachCompleted); err != nil {
				return err
			}
			if o.AgreedPrice.Valid {
				err = repos.Campaigns.SetFinalPrice(ctx, campaign.ID, model.CampaignCompleted, o.AgreedPrice.Decimal)
			} else {
				err = repos.Campaigns.UpdateStatus(ctx, campaign.ID, model.CampaignCompleted)
			}
			if err != nil {
				return err
			}
			err = repos.Outbox.Add(ctx, model.TopicDealAccepted, model.DealAccepted{
				OutreachID:   o.ID,
				CampaignID:   o.CampaignID,
				InfluencerID: o.InfluencerID,
			})
			if err != nil {
				return err
			}
			o.Status = model.OutreachCompleted
			note = "Brand accepted the deal"
		} else {
			if err := repos.Outreach.UpdateStatus(ctx, o.ID, model.OutreachDeclined); err != nil {
				return err
			}
			if err := repos.Campaigns.UpdateStatus(ctx, campaign.ID, model.CampaignDeclined); err != nil {
				return err
			}
			o.Status = model.OutreachDeclined
		}

		if err := repos.CRMLogs.Append(ctx, o.CampaignID, o.InfluencerID, model.CRMMessage{
			Content:   note,
			Type:      model.MessageSystem,
			Timestamp: s.now(),
		}); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"outreach_id": out.ID,
		"status":      out.Status,
	}).Info("✅ brand decision recorded")
	return out, nil
}

// CRMLog returns the transcript for one campaign and influencer pair.
// CRMLog returns the transcript to the campaign's brand or to the influencer.
func (s *OutreachService) CRMLog(ctx context.Context, sess *auth.Session, campaignID, influencerID uuid.UUID) (*model.CRMLog, error) {
	if campaignID == uuid.Nil || influencerID == uuid.Nil {
		return nil, appErrors.BadRequest("campaign_id and influencer_id are required")
	}
	campaign, err := s.Repos.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := authorizeParty(sess, campaign.BrandID, influencerID); err != nil {
		return nil, err
	}
	return s.Repos.CRMLogs.Get(ctx, campaignID, influencerID)
}
