package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/ampplex/influencerflow/internal/auth"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/negotiation"
	"github.com/ampplex/influencerflow/internal/repository/memory"
)

// --- Fixtures ---

type fixture struct {
	store      *memory.Store
	log        *logrus.Logger
	hook       *test.Hook
	brand      model.Brand
	influencer model.Influencer
	campaign   *model.Campaign
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	store := memory.NewStore()

	f := &fixture{
		store: store,
		log:   log,
		hook:  hook,
		brand: store.AddBrand(model.Brand{Name: "Glow Co", Email: "team@glow.co"}),
		influencer: store.AddInfluencer(model.Influencer{
			Name: "Asha Rao", Email: "asha@example.com", Handle: "asha.makes", Platform: "instagram",
		}),
	}
	f.campaign = &model.Campaign{
		BrandID:      f.brand.ID,
		Name:         "Monsoon Glow",
		CampaignType: "instagram_reel",
		Duration:     "1_month",
		Budget:       decimal.NewFromInt(1500),
		Status:       model.CampaignDraft,
	}
	require.NoError(t, store.Repos().Campaigns.Create(context.Background(), f.campaign))
	return f
}

// outreach creates a sent outreach row for the fixture influencer.
func (f *fixture) outreach(t *testing.T) *model.Outreach {
	t.Helper()
	o, _, err := f.store.Repos().Outreach.CreateIfAbsent(context.Background(), &model.Outreach{
		CampaignID:     f.campaign.ID,
		InfluencerID:   f.influencer.ID,
		InfluencerName: f.influencer.Name,
		Status:         model.OutreachSent,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) reloadOutreach(t *testing.T, id uuid.UUID) *model.Outreach {
	t.Helper()
	o, err := f.store.Repos().Outreach.GetByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (f *fixture) reloadCampaign(t *testing.T) *model.Campaign {
	t.Helper()
	c, err := f.store.Repos().Campaigns.GetByID(context.Background(), f.campaign.ID)
	require.NoError(t, err)
	return c
}

func (f *fixture) transcript(t *testing.T) []model.CRMMessage {
	t.Helper()
	l, err := f.store.Repos().CRMLogs.Get(context.Background(), f.campaign.ID, f.influencer.ID)
	require.NoError(t, err)
	return l.Messages
}

// --- Callers ---

func (f *fixture) asBrand() *auth.Session {
	return &auth.Session{UserID: "glow-admin", UserType: auth.UserBrand, BrandID: uuid.NullUUID{UUID: f.brand.ID, Valid: true}}
}

func (f *fixture) asInfluencer() *auth.Session {
	return &auth.Session{UserID: f.influencer.ID.String(), UserType: auth.UserInfluencer}
}

// asOtherInfluencer is signed in but has no part in the fixture's deal.
func asOtherInfluencer() *auth.Session {
	return &auth.Session{UserID: uuid.NewString(), UserType: auth.UserInfluencer}
}

func asOtherBrand() *auth.Session {
	return &auth.Session{UserID: "rival-admin", UserType: auth.UserBrand, BrandID: uuid.NullUUID{UUID: uuid.New(), Valid: true}}
}

// --- Mock negotiation agent ---

type turnFunc func(ctx context.Context, onChunk func(string)) (*negotiation.Completion, error)

type fakeNegotiator struct {
	mu        sync.Mutex
	turns     []turnFunc
	calls     int
	startReq  negotiation.StartRequest
	startResp *negotiation.StartResponse
	startErr  error
	sessions  json.RawMessage
}

func (f *fakeNegotiator) Start(ctx context.Context, req negotiation.StartRequest) (*negotiation.StartResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startReq = req
	return f.startResp, f.startErr
}

// RespondStream replays the scripted turns; the last one repeats.
func (f *fakeNegotiator) RespondStream(ctx context.Context, sessionID, message string, onChunk func(string)) (*negotiation.Completion, error) {
	f.mu.Lock()
	if len(f.turns) == 0 {
		f.mu.Unlock()
		return nil, errors.New("no scripted turn")
	}
	turn := f.turns[min(f.calls, len(f.turns)-1)]
	f.calls++
	f.mu.Unlock()
	return turn(ctx, onChunk)
}

func (f *fakeNegotiator) ListSessions(ctx context.Context) (json.RawMessage, error) {
	return f.sessions, nil
}

func (f *fakeNegotiator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// streamed emits chunks and then completes with the joined text.
func streamed(price string, chunks ...string) turnFunc {
	return func(ctx context.Context, onChunk func(string)) (*negotiation.Completion, error) {
		msg := ""
		for _, c := range chunks {
			onChunk(c)
			msg += c
		}
		c := &negotiation.Completion{Message: msg}
		if price != "" {
			c.IsComplete = true
			c.AgreedPrice = decimal.NewNullDecimal(decimal.RequireFromString(price))
		}
		return c, nil
	}
}

func failing(err error, chunks ...string) turnFunc {
	return func(ctx context.Context, onChunk func(string)) (*negotiation.Completion, error) {
		for _, c := range chunks {
			onChunk(c)
		}
		return nil, err
	}
}
