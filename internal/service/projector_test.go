package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/negotiation"
	"github.com/ampplex/influencerflow/internal/service"
)

func uuidNull(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

func TestApplyHeuristic(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"I accept your offer", model.OutreachReplied},
		{"Sorry, I must DECLINE", model.OutreachDeclined},
		{"Let me consider it", model.OutreachPending},
		{"what is the timeline?", ""},
		{"I accept, I won't decline", model.OutreachReplied},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			f := newFixture(t)
			o := f.outreach(t)
			p := &service.Projector{Repos: f.store.Repos(), Tx: f.store, Log: f.log}

			got, err := p.ApplyHeuristic(context.Background(), o, tc.message)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			want := tc.want
			if want == "" {
				want = model.OutreachSent
			}
			assert.Equal(t, want, f.reloadOutreach(t, o.ID).Status)
			assert.Len(t, f.transcript(t), 1)
		})
	}
}

func TestApplyHeuristicNeverOverwritesCompleted(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	ctx := context.Background()
	require.NoError(t, f.store.Repos().Outreach.UpdateStatus(ctx, o.ID, model.OutreachCompleted))
	o = f.reloadOutreach(t, o.ID)

	p := &service.Projector{Repos: f.store.Repos(), Tx: f.store, Log: f.log}
	got, err := p.ApplyHeuristic(ctx, o, "actually I decline")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, model.OutreachCompleted, f.reloadOutreach(t, o.ID).Status)
}

func TestApplyHeuristicKeepsAgreedDeal(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	ctx := context.Background()
	p := &service.Projector{Repos: f.store.Repos(), Tx: f.store, Log: f.log}

	require.NoError(t, p.ApplyCompletion(ctx, o, &negotiation.Completion{
		Message:     "Deal at 700",
		IsComplete:  true,
		AgreedPrice: decimal.NewNullDecimal(decimal.NewFromInt(700)),
	}))

	// A later turn is projected from a freshly loaded row.
	got, err := p.ApplyHeuristic(ctx, f.reloadOutreach(t, o.ID), "hmm, on reflection I decline")
	require.NoError(t, err)
	assert.Empty(t, got)

	stored := f.reloadOutreach(t, o.ID)
	assert.Equal(t, model.OutreachReplied, stored.Status)
	assert.True(t, decimal.NewFromInt(700).Equal(stored.AgreedPrice.Decimal))
	assert.Equal(t, model.CampaignInReview, f.reloadCampaign(t).Status)
	assert.Len(t, f.transcript(t), 3)
}

func TestApplyCompletionIsAtomic(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	f.store.Fail("Campaigns.SetFinalPrice", errors.New("lock timeout"))

	p := &service.Projector{Repos: f.store.Repos(), Tx: f.store, Log: f.log}
	err := p.ApplyCompletion(context.Background(), o, &negotiation.Completion{
		Message:     "Deal!",
		IsComplete:  true,
		AgreedPrice: decimal.NewNullDecimal(decimal.NewFromInt(700)),
	})
	require.Error(t, err)

	got := f.reloadOutreach(t, o.ID)
	assert.Equal(t, model.OutreachSent, got.Status)
	assert.False(t, got.AgreedPrice.Valid)
	assert.Empty(t, f.transcript(t))
}

func TestApplyCompletionNeedsPriceForDeal(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	p := &service.Projector{Repos: f.store.Repos(), Tx: f.store, Log: f.log}

	err := p.ApplyCompletion(context.Background(), o, &negotiation.Completion{Message: "Thanks!", IsComplete: true})
	require.NoError(t, err)
	assert.Equal(t, model.OutreachSent, f.reloadOutreach(t, o.ID).Status)
	assert.Len(t, f.transcript(t), 1)
}
