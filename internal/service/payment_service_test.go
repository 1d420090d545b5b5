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

const testSecret = "rzp_test_secret"

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := &model.Contract{Status: model.ContractSigned, PaymentStatus: model.PaymentPending, Amount: decimal.NewFromInt(900)}
	require.NoError(t, f.store.Repos().Contracts.Create(ctx, contract))

	svc := &service.PaymentService{Secret: testSecret, Contracts: f.store.Repos().Contracts, Log: f.log}
	valid := service.VerifyPaymentInput{
		OrderID:    "order_Lx1",
		PaymentID:  "pay_Qz9",
		Signature:  service.PaymentSignature(testSecret, "order_Lx1", "pay_Qz9"),
		ContractID: contract.ID,
	}

	t.Run("mutated order id", func(t *testing.T) {
		in := valid
		in.OrderID = "order_Lx2"
		assert.ErrorIs(t, svc.Verify(ctx, in), appErrors.ErrInvalidSignature)
	})
	t.Run("mutated payment id", func(t *testing.T) {
		in := valid
		in.PaymentID = "pay_Qz8"
		assert.ErrorIs(t, svc.Verify(ctx, in), appErrors.ErrInvalidSignature)
	})
	t.Run("missing fields", func(t *testing.T) {
		assert.ErrorIs(t, svc.Verify(ctx, service.VerifyPaymentInput{OrderID: "order_Lx1"}), appErrors.ErrBadRequest)
	})
	t.Run("unknown contract", func(t *testing.T) {
		in := valid
		in.ContractID = uuid.New()
		assert.True(t, appErrors.IsNotFound(svc.Verify(ctx, in)))
	})

	require.NoError(t, svc.Verify(ctx, valid))
	stored, err := f.store.Repos().Contracts.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, stored.PaymentStatus)
	assert.Equal(t, "order_Lx1", stored.RazorpayOrderID)
	assert.Equal(t, "pay_Qz9", stored.RazorpayPaymentID)
}

func TestVerifyPaymentWithoutSecretFailsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := &model.Contract{Status: model.ContractSigned, PaymentStatus: model.PaymentPending, Amount: decimal.NewFromInt(900)}
	require.NoError(t, f.store.Repos().Contracts.Create(ctx, contract))

	svc := &service.PaymentService{Contracts: f.store.Repos().Contracts, Log: f.log}
	err := svc.Verify(ctx, service.VerifyPaymentInput{
		OrderID:    "order_Lx1",
		PaymentID:  "pay_Qz9",
		Signature:  service.PaymentSignature("", "order_Lx1", "pay_Qz9"),
		ContractID: contract.ID,
	})
	assert.ErrorIs(t, err, appErrors.ErrUpstream)

	stored, err := f.store.Repos().Contracts.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, stored.PaymentStatus)
}

func TestPaymentSignatureKnownValue(t *testing.T) {
	// echo -n "order_1|pay_1" | openssl dgst -sha256 -hmac secret
	assert.Equal(t,
		"52115a0d3400de9e86aade1f1b6eba9e8974604f4e267a9e9a16633a4c8dd2cb",
		service.PaymentSignature("secret", "order_1", "pay_1"))
}
