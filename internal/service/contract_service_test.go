package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampplex/influencerflow/internal/auth"
	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/service"
)

func newContractService(f *fixture) *service.ContractService {
	return &service.ContractService{Repos: f.store.Repos(), Tx: f.store, Log: f.log}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)

	body, err := newContractService(f).Preview(context.Background(), f.asInfluencer(), service.ContractInput{OutreachID: o.ID, Template: "ugc"})
	require.NoError(t, err)
	assert.Contains(t, body, "Asha Rao grants Glow Co")
	assert.Contains(t, body, "1500.00")

	_, err = f.store.Repos().Contracts.GetByOutreach(context.Background(), o.ID)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestGenerateUsesAgreedPrice(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	ctx := context.Background()
	require.NoError(t, f.store.Repos().Outreach.SetAgreed(ctx, o.ID, decimal.NewFromInt(1100)))

	c, err := newContractService(f).Generate(ctx, f.brand.ID, service.ContractInput{OutreachID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, model.ContractDraft, c.Status)
	assert.Equal(t, model.PaymentPending, c.PaymentStatus)
	assert.Equal(t, "standard", c.Template)
	assert.True(t, decimal.NewFromInt(1100).Equal(c.Amount))
	assert.Contains(t, c.Body, "1100.00")
	assert.Contains(t, c.Body, "1_month")

	campaign := f.reloadCampaign(t)
	assert.Equal(t, model.CampaignContractGenerated, campaign.Status)
	assert.Equal(t, c.ID, campaign.ContractID.UUID)
}

func TestGenerateValidation(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	svc := newContractService(f)
	ctx := context.Background()

	_, err := svc.Generate(ctx, f.brand.ID, service.ContractInput{OutreachID: o.ID, Template: "nda"})
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)

	negative := decimal.NewFromInt(-1)
	_, err = svc.Generate(ctx, f.brand.ID, service.ContractInput{OutreachID: o.ID, Amount: &negative})
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)

	_, err = svc.Generate(ctx, uuid.New(), service.ContractInput{OutreachID: o.ID})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Generate(ctx, f.brand.ID, service.ContractInput{})
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)
}

func TestContractStateMachine(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	svc := newContractService(f)
	ctx := context.Background()

	c, err := svc.Generate(ctx, f.brand.ID, service.ContractInput{OutreachID: o.ID})
	require.NoError(t, err)

	_, err = svc.Sign(ctx, f.asInfluencer(), c.ID, service.SignInput{SignatureURL: "https://files.example.com/sig.png"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	_, err = svc.Send(ctx, uuid.New(), c.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	sent, err := svc.Send(ctx, f.brand.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractPendingSignature, sent.Status)

	_, err = svc.Sign(ctx, f.asInfluencer(), c.ID, service.SignInput{SignatureURL: "not a url"})
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)

	signed, err := svc.Sign(ctx, f.asInfluencer(), c.ID, service.SignInput{SignatureURL: "https://files.example.com/sig.png"})
	require.NoError(t, err)
	assert.Equal(t, model.ContractSigned, signed.Status)

	stored, err := svc.Get(ctx, f.asBrand(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/sig.png", stored.SignatureURL)

	_, err = svc.Reject(ctx, f.asInfluencer(), c.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestRejectPendingContract(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	svc := newContractService(f)
	ctx := context.Background()

	c, err := svc.Generate(ctx, f.brand.ID, service.ContractInput{OutreachID: o.ID})
	require.NoError(t, err)
	_, err = svc.Send(ctx, f.brand.ID, c.ID)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, f.asInfluencer(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractRejected, rejected.Status)
}

func TestHandleDealAcceptedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	svc := newContractService(f)
	ctx := context.Background()
	deal := model.DealAccepted{OutreachID: o.ID, CampaignID: o.CampaignID, InfluencerID: o.InfluencerID}

	require.NoError(t, svc.HandleDealAccepted(ctx, deal))
	first, err := f.store.Repos().Contracts.GetByOutreach(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, svc.HandleDealAccepted(ctx, deal))
	second, err := f.store.Repos().Contracts.GetByOutreach(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestContractActionsRequireParty(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	svc := newContractService(f)
	ctx := context.Background()

	c, err := svc.Generate(ctx, f.brand.ID, service.ContractInput{OutreachID: o.ID})
	require.NoError(t, err)
	_, err = svc.Send(ctx, f.brand.ID, c.ID)
	require.NoError(t, err)

	sig := service.SignInput{SignatureURL: "https://files.example.com/forged.png"}
	for _, caller := range []*auth.Session{asOtherInfluencer(), asOtherBrand(), f.asBrand()} {
		_, err = svc.Sign(ctx, caller, c.ID, sig)
		assert.ErrorIs(t, err, appErrors.ErrForbidden)
		_, err = svc.Reject(ctx, caller, c.ID)
		assert.ErrorIs(t, err, appErrors.ErrForbidden)
	}
	_, err = svc.Sign(ctx, nil, c.ID, sig)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Get(ctx, asOtherBrand(), c.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.Preview(ctx, asOtherInfluencer(), service.ContractInput{OutreachID: o.ID})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	stored, err := svc.Get(ctx, f.asInfluencer(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractPendingSignature, stored.Status)
	assert.Empty(t, stored.SignatureURL)
}

func TestGenerateRefusesSecondOpenContract(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	svc := newContractService(f)
	ctx := context.Background()

	require.NoError(t, svc.HandleDealAccepted(ctx, model.DealAccepted{OutreachID: o.ID}))
	drafted, err := f.store.Repos().Contracts.GetByOutreach(ctx, o.ID)
	require.NoError(t, err)

	_, err = svc.Generate(ctx, f.brand.ID, service.ContractInput{OutreachID: o.ID, Amount: ptr(decimal.NewFromInt(900))})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, drafted.ID, f.reloadCampaign(t).ContractID.UUID)

	// A rejected contract can be replaced.
	_, err = svc.Send(ctx, f.brand.ID, drafted.ID)
	require.NoError(t, err)
	_, err = svc.Reject(ctx, f.asInfluencer(), drafted.ID)
	require.NoError(t, err)

	replacement, err := svc.Generate(ctx, f.brand.ID, service.ContractInput{OutreachID: o.ID, Amount: ptr(decimal.NewFromInt(900))})
	require.NoError(t, err)
	assert.NotEqual(t, drafted.ID, replacement.ID)
	assert.Equal(t, replacement.ID, f.reloadCampaign(t).ContractID.UUID)
}

func TestHandleDealAcceptedLosingInsertRaceIsDone(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	svc := newContractService(f)
	ctx := context.Background()

	require.NoError(t, svc.HandleDealAccepted(ctx, model.DealAccepted{OutreachID: o.ID}))
	first, err := f.store.Repos().Contracts.GetByOutreach(ctx, o.ID)
	require.NoError(t, err)

	// The existence check misses the row a concurrent delivery just wrote.
	f.store.Fail("Contracts.GetByOutreach", appErrors.NewNotFound("contract for outreach", o.ID))
	require.NoError(t, svc.HandleDealAccepted(ctx, model.DealAccepted{OutreachID: o.ID}))
	f.store.Fail("Contracts.GetByOutreach", nil)

	latest, err := f.store.Repos().Contracts.GetByOutreach(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
	assert.Equal(t, first.ID, f.reloadCampaign(t).ContractID.UUID)
}

func ptr[T any](v T) *T { return &v }

func TestHandleDealAcceptedFailureKeepsDeal(t *testing.T) {
	f := newFixture(t)
	o := f.outreach(t)
	ctx := context.Background()
	_, err := newOutreachService(f).Accept(ctx, f.brand.ID, o.ID)
	require.NoError(t, err)

	f.store.Fail("Contracts.Create", errors.New("constraint violation"))
	err = newContractService(f).HandleDealAccepted(ctx, model.DealAccepted{OutreachID: o.ID})
	require.Error(t, err)

	assert.Equal(t, model.OutreachCompleted, f.reloadOutreach(t, o.ID).Status)
	assert.Equal(t, model.CampaignCompleted, f.reloadCampaign(t).Status)

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "manual contract creation required", entry.Data["context"])
}
