// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/repository"
	"github.com/ampplex/influencerflow/internal/status"
)

type CampaignService struct {
	Repos repository.Repos
}

type CreateCampaignInput struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Description   string          `json:"description" validate:"max=4000"`
	CampaignType  string          `json:"campaign_type" validate:"required,oneof=instagram_post instagram_reel instagram_story youtube_video youtube_short tiktok_video"`
	Duration      string          `json:"duration" validate:"required,oneof=1_week 2_weeks 1_month 3_months 6_months"`
	Budget        decimal.Decimal `json:"budget"`
	EmailTemplate string          `json:"email_template"`
}

type CampaignDetails struct {
	ID            uuid.UUID           `json:"id"`
	BrandID       uuid.UUID           `json:"brand_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	CampaignType  string              `json:"campaign_type"`
	Duration      string              `json:"duration"`
	Budget        decimal.Decimal     `json:"budget"`
	Status        string              `json:"status"`
	FinalPrice    decimal.NullDecimal `json:"final_price"`
	ContractID    uuid.NullUUID       `json:"contract_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     *time.Time          `json:"updated_at"`
	OutreachStats map[string]int      `json:"outreach_stats"`
}

func (s *CampaignService) CreateCampaign(ctx context.Context, brandID uuid.UUID, in CreateCampaignInput) (*model.Campaign, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !in.Budget.IsPositive() {
		return nil, appErrors.BadRequest("budget must be positive")
	}

	c := &model.Campaign{
		BrandID:       brandID,
		Name:          in.Name,
		Description:   in.Description,
		CampaignType:  in.CampaignType,
		Duration:      in.Duration,
		Budget:        in.Budget,
		EmailTemplate: in.EmailTemplate,
		Status:        model.CampaignDraft,
	}
	if err := s.Repos.Campaigns.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return c, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, page, pageSize int, campaignType, campaignStatus string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.Repos.Campaigns.ListCampaigns(ctx, offset, pageSize, campaignType, campaignStatus)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(ctx context.Context, campaignID uuid.UUID) (*CampaignDetails, error) {
	campaign, err := s.Repos.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.Repos.Outreach.StatsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("outreach stats: %w", err)
	}

	return &CampaignDetails{
		ID:            campaign.ID,
		BrandID:       campaign.BrandID,
		Name:          campaign.Name,
		Description:   campaign.Description,
		CampaignType:  campaign.CampaignType,
		Duration:      campaign.Duration,
		Budget:        campaign.Budget,
		Status:        campaign.Status,
		FinalPrice:    campaign.FinalPrice,
		ContractID:    campaign.ContractID,
		CreatedAt:     campaign.CreatedAt,
		UpdatedAt:     campaign.UpdatedAt,
		OutreachStats: stats,
	}, nil
}

// UpdateStatus lets the owning brand move a campaign by hand.
func (s *CampaignService) UpdateStatus(ctx context.Context, brandID, campaignID uuid.UUID, next string) error {
	if !status.ValidCampaignStatus(next) {
		return appErrors.BadRequest("unknown campaign status %q", next)
	}
	campaign, err := s.Repos.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if err := ensureOwner(brandID, campaign); err != nil {
		return err
	}
	return s.Repos.Campaigns.UpdateStatus(ctx, campaignID, next)
}

func ensureOwner(brandID uuid.UUID, c *model.Campaign) error {
	if brandID == uuid.Nil || c.BrandID != brandID {
		return fmt.Errorf("%w: campaign belongs to another brand", appErrors.ErrForbidden)
	}
	return nil
}
