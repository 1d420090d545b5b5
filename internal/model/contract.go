package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ContractDraft            = "DRAFT"
	ContractPendingSignature = "PENDING_SIGNATURE"
	ContractSigned           = "SIGNED"
	ContractRejected         = "REJECTED"

	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
)

type Contract struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	CampaignID        uuid.UUID       `db:"campaign_id" json:"campaign_id"`
	OutreachID        uuid.UUID       `db:"outreach_id" json:"outreach_id"`
	InfluencerID      uuid.UUID       `db:"influencer_id" json:"influencer_id"`
	BrandID           uuid.UUID       `db:"brand_id" json:"brand_id"`
	Template          string          `db:"template" json:"template"`
	Body              string          `db:"body" json:"body"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Status            string          `db:"status" json:"status"`
	SignatureURL      string          `db:"signature_url" json:"signature_url,omitempty"`
	PaymentStatus     string          `db:"payment_status" json:"payment_status"`
	RazorpayOrderID   string          `db:"razorpay_order_id" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string          `db:"razorpay_payment_id" json:"razorpay_payment_id,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}
