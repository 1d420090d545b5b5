package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ampplex/influencerflow/internal/auth"
	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/logging"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/queue"
	"github.com/ampplex/influencerflow/internal/repository"
	"github.com/ampplex/influencerflow/internal/status"
)

const defaultContractTemplate = "standard"

type ContractService struct {
	Repos repository.Repos
	Tx    TxRunner
	Log   logrus.FieldLogger
}

var _ queue.DealHandler = (*ContractService)(nil)

type ContractInput struct {
	OutreachID uuid.UUID        `json:"outreach_id" validate:"required"`
	Template   string           `json:"template"`
	Amount     *decimal.Decimal `json:"amount"`
}

type SignInput struct {
	SignatureURL string `json:"signature_url" validate:"required,url"`
}

type contractParts struct {
	outreach   *model.Outreach
	campaign   *model.Campaign
	brand      *model.Brand
	influencer *model.Influencer
	template   string
	amount     decimal.Decimal
	body       string
}

// Preview renders the contract body without storing it. Only the two
// parties of the outreach may see it.
func (s *ContractService) Preview(ctx context.Context, sess *auth.Session, in ContractInput) (string, error) {
	parts, err := s.assemble(ctx, s.Repos, in)
	if err != nil {
		return "", err
	}
	if err := authorizeParty(sess, parts.campaign.BrandID, parts.outreach.InfluencerID); err != nil {
		return "", err
	}
	return parts.body, nil
}

// Generate stores a DRAFT contract and links it to the campaign. An outreach
// that already has a contract other than a REJECTED one gets ErrConflict.
func (s *ContractService) Generate(ctx context.Context, brandID uuid.UUID, in ContractInput) (*model.Contract, error) {
	var out *model.Contract
	err := s.Tx.InTx(ctx, func(repos repository.Repos) error {
		parts, err := s.assemble(ctx, repos, in)
		if err != nil {
			return err
		}
		if err := ensureOwner(brandID, parts.campaign); err != nil {
			return err
		}
		existing, err := repos.Contracts.GetByOutreach(ctx, in.OutreachID)
		switch {
		case err == nil && existing.Status != model.ContractRejected:
			return fmt.Errorf("%w: outreach already has contract %s", appErrors.ErrConflict, existing.ID)
		case err != nil && !appErrors.IsNotFound(err):
			return err
		}
		out, err = s.create(ctx, repos, parts)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{
		"contract_id": out.ID,
		"campaign_id": out.CampaignID,
	}).Info("📝 contract generated")
	return out, nil
}

// HandleDealAccepted drafts the contract for an accepted deal. A deal that
// already has a contract is left alone so redelivery is harmless; a
// concurrent delivery that loses the insert race counts as done.
func (s *ContractService) HandleDealAccepted(ctx context.Context, deal model.DealAccepted) error {
	err := s.Tx.InTx(ctx, func(repos repository.Repos) error {
		_, err := repos.Contracts.GetByOutreach(ctx, deal.OutreachID)
		if err == nil {
			return nil
		}
		if !appErrors.IsNotFound(err) {
			return err
		}
		parts, err := s.assemble(ctx, repos, ContractInput{OutreachID: deal.OutreachID})
		if err != nil {
			return err
		}
		_, err = s.create(ctx, repos, parts)
		return err
	})
	if errors.Is(err, appErrors.ErrConflict) {
		s.Log.WithField("outreach_id", deal.OutreachID).Info("contract already drafted")
		return nil
	}
	if err != nil {
		logging.LogError(s.Log, "contract", "HandleDealAccepted",
			"manual contract creation required", deal, err)
		return err
	}
	return nil
}

func (s *ContractService) Get(ctx context.Context, sess *auth.Session, id uuid.UUID) (*model.Contract, error) {
	c, err := s.Repos.Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParty(sess, c.BrandID, c.InfluencerID); err != nil {
		return nil, err
	}
	return c, nil
}

// Send moves a draft to PENDING_SIGNATURE.
func (s *ContractService) Send(ctx context.Context, brandID, id uuid.UUID) (*model.Contract, error) {
	c, err := s.Repos.Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.BrandID != brandID {
		return nil, fmt.Errorf("%w: contract belongs to another brand", appErrors.ErrForbidden)
	}
	return s.transition(ctx, c, model.ContractPendingSignature, "")
}

// Sign and Reject are the contracted influencer's answer to a sent contract.
func (s *ContractService) Sign(ctx context.Context, sess *auth.Session, id uuid.UUID, in SignInput) (*model.Contract, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	c, err := s.Repos.Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeInfluencer(sess, c.InfluencerID); err != nil {
		return nil, err
	}
	return s.transition(ctx, c, model.ContractSigned, in.SignatureURL)
}

func (s *ContractService) Reject(ctx context.Context, sess *auth.Session, id uuid.UUID) (*model.Contract, error) {
	c, err := s.Repos.Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeInfluencer(sess, c.InfluencerID); err != nil {
		return nil, err
	}
	return s.transition(ctx, c, model.ContractRejected, "")
}

func (s *ContractService) transition(ctx context.Context, c *model.Contract, to, signatureURL string) (*model.Contract, error) {
	if !status.ContractTransitionAllowed(c.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", appErrors.ErrInvalidTransition, c.Status, to)
	}
	if err := s.Repos.Contracts.Transition(ctx, c.ID, c.Status, to, signatureURL); err != nil {
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{
		"contract_id": c.ID,
		"from":        c.Status,
		"to":          to,
	}).Info("contract status changed")
	c.Status = to
	if signatureURL != "" {
		c.SignatureURL = signatureURL
	}
	return c, nil
}

func (s *ContractService) assemble(ctx context.Context, repos repository.Repos, in ContractInput) (*contractParts, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Template)
	if name == "" {
		name = defaultContractTemplate
	}
	tpl, ok := ContractTemplates[name]
	if !ok {
		return nil, appErrors.BadRequest("unknown contract template %q", name)
	}

	o, err := repos.Outreach.GetByID(ctx, in.OutreachID)
	if err != nil {
		return nil, err
	}
	campaign, err := repos.Campaigns.GetByID(ctx, o.CampaignID)
	if err != nil {
		return nil, err
	}
	brand, err := repos.Brands.GetByID(ctx, campaign.BrandID)
	if err != nil {
		return nil, err
	}
	influencer, err := repos.Influencers.GetByID(ctx, o.InfluencerID)
	if err != nil {
		return nil, err
	}

	var amount decimal.Decimal
	switch {
	case in.Amount != nil:
		amount = *in.Amount
	case o.AgreedPrice.Valid:
		amount = o.AgreedPrice.Decimal
	case campaign.FinalPrice.Valid:
		amount = campaign.FinalPrice.Decimal
	default:
		amount = campaign.Budget
	}
	if !amount.IsPositive() {
		return nil, appErrors.BadRequest("contract amount must be positive")
	}

	body := RenderTemplate(tpl, map[string]string{
		"brand_name":      brand.Name,
		"influencer_name": influencer.Name,
		"campaign_name":   campaign.Name,
		"campaign_type":   campaign.CampaignType,
		"duration":        campaign.Duration,
		"amount":          amount.StringFixed(2),
	})

	return &contractParts{
		outreach:   o,
		campaign:   campaign,
		brand:      brand,
		influencer: influencer,
		template:   name,
		amount:     amount,
		body:       body,
	}, nil
}

func (s *ContractService) create(ctx context.Context, repos repository.Repos, p *contractParts) (*model.Contract, error) {
	c := &model.Contract{
		CampaignID:    p.campaign.ID,
		OutreachID:    p.outreach.ID,
		InfluencerID:  p.influencer.ID,
		BrandID:       p.brand.ID,
		Template:      p.template,
		Body:          p.body,
		Amount:        p.amount,
		Status:        model.ContractDraft,
		PaymentStatus: model.PaymentPending,
	}
	if err := repos.Contracts.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	if err := repos.Campaigns.AttachContract(ctx, p.campaign.ID, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}
