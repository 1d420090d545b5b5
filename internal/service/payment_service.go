package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/repository"
)

type PaymentService struct {
	Secret    string
	Contracts repository.ContractRepositoryInterface
	Log       logrus.FieldLogger
}

type VerifyPaymentInput struct {
	OrderID    string    `json:"razorpay_order_id" validate:"required"`
	PaymentID  string    `json:"razorpay_payment_id" validate:"required"`
	Signature  string    `json:"razorpay_signature" validate:"required"`
	ContractID uuid.UUID `json:"contract_id" validate:"required"`
}

// PaymentSignature is the hex HMAC-SHA256 of "orderID|paymentID".
func PaymentSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the gateway signature and marks the contract paid. Without a
// key secret every signature is refused.
func (s *PaymentService) Verify(ctx context.Context, in VerifyPaymentInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if s.Secret == "" {
		return appErrors.Upstream("payment", errors.New("not configured"))
	}

	expected := PaymentSignature(s.Secret, in.OrderID, in.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(in.Signature)) {
		s.Log.WithFields(logrus.Fields{
			"order_id":    in.OrderID,
			"contract_id": in.ContractID,
		}).Warn("⚠️ payment signature mismatch")
		return appErrors.ErrInvalidSignature
	}

	if err := s.Contracts.MarkPaid(ctx, in.ContractID, in.OrderID, in.PaymentID); err != nil {
		return err
	}

	s.Log.WithFields(logrus.Fields{
		"order_id":    in.OrderID,
		"payment_id":  in.PaymentID,
		"contract_id": in.ContractID,
	}).Info("💰 payment verified")
	return nil
}
