package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/service"
)

func TestCreateCampaign(t *testing.T) {
	f := newFixture(t)
	svc := &service.CampaignService{Repos: f.store.Repos()}

	in := service.CreateCampaignInput{
		Name:         "Festive Drop",
		CampaignType: "youtube_video",
		Duration:     "2_weeks",
		Budget:       decimal.RequireFromString("2500.50"),
	}
	c, err := svc.CreateCampaign(context.Background(), f.brand.ID, in)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignDraft, c.Status)
	assert.Equal(t, f.brand.ID, c.BrandID)
	assert.NotEqual(t, uuid.Nil, c.ID)
}

func TestCreateCampaignValidation(t *testing.T) {
	f := newFixture(t)
	svc := &service.CampaignService{Repos: f.store.Repos()}
	valid := service.CreateCampaignInput{Name: "x", CampaignType: "youtube_video", Duration: "1_week", Budget: decimal.NewFromInt(1)}

	cases := map[string]func(in *service.CreateCampaignInput){
		"missing name":     func(in *service.CreateCampaignInput) { in.Name = "" },
		"unknown type":     func(in *service.CreateCampaignInput) { in.CampaignType = "billboard" },
		"unknown duration": func(in *service.CreateCampaignInput) { in.Duration = "forever" },
		"zero budget":      func(in *service.CreateCampaignInput) { in.Budget = decimal.Zero },
		"negative budget":  func(in *service.CreateCampaignInput) { in.Budget = decimal.NewFromInt(-5) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := svc.CreateCampaign(context.Background(), f.brand.ID, in)
			assert.ErrorIs(t, err, appErrors.ErrBadRequest)
		})
	}
}

func TestListCampaignsPagination(t *testing.T) {
	f := newFixture(t)
	svc := &service.CampaignService{Repos: f.store.Repos()}
	ctx := context.Background()

	for i := 0; i < 24; i++ {
		_, err := svc.CreateCampaign(ctx, f.brand.ID, service.CreateCampaignInput{
			Name: "c", CampaignType: "instagram_post", Duration: "1_week", Budget: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
	}

	campaigns, pagination, err := svc.ListCampaigns(ctx, 0, 0, "instagram_post", "")
	require.NoError(t, err)
	assert.Len(t, campaigns, 20)
	assert.Equal(t, map[string]int{"page": 1, "page_size": 20, "total_count": 24, "total_pages": 2}, pagination)

	campaigns, pagination, err = svc.ListCampaigns(ctx, 2, 20, "instagram_post", "")
	require.NoError(t, err)
	assert.Len(t, campaigns, 4)
	assert.Equal(t, 2, pagination["page"])

	_, pagination, err = svc.ListCampaigns(ctx, 1, 500, "", "")
	require.NoError(t, err)
	assert.Equal(t, 100, pagination["page_size"])
	assert.Equal(t, 25, pagination["total_count"])
}

func TestGetCampaignDetailsWithStats(t *testing.T) {
	f := newFixture(t)
	f.outreach(t)
	svc := &service.CampaignService{Repos: f.store.Repos()}

	details, err := svc.GetCampaignDetailsWithStats(context.Background(), f.campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, f.campaign.Name, details.Name)
	assert.Equal(t, 1, details.OutreachStats["total"])
	assert.Equal(t, 1, details.OutreachStats[model.OutreachSent])
	assert.Equal(t, 0, details.OutreachStats[model.OutreachReplied])

	_, err = svc.GetCampaignDetailsWithStats(context.Background(), uuid.New())
	assert.True(t, appErrors.IsNotFound(err))
}

func TestUpdateCampaignStatus(t *testing.T) {
	f := newFixture(t)
	svc := &service.CampaignService{Repos: f.store.Repos()}
	ctx := context.Background()

	require.NoError(t, svc.UpdateStatus(ctx, f.brand.ID, f.campaign.ID, model.CampaignActive))
	assert.Equal(t, model.CampaignActive, f.reloadCampaign(t).Status)

	err := svc.UpdateStatus(ctx, f.brand.ID, f.campaign.ID, "archived")
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)

	err = svc.UpdateStatus(ctx, uuid.New(), f.campaign.ID, model.CampaignCompleted)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
