// internal/model/outreach.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OutreachSent      = "sent"
	OutreachPending   = "pending"
	OutreachReplied   = "replied"
	OutreachDeclined  = "declined"
	OutreachCompleted = "completed"
)

type Outreach struct {
	ID              uuid.UUID           `db:"id" json:"id"`
	CampaignID      uuid.UUID           `db:"campaign_id" json:"campaign_id"`
	InfluencerID    uuid.UUID           `db:"influencer_id" json:"influencer_id"`
	InfluencerName  string              `db:"influencer_name" json:"influencer_name"`
	InfluencerEmail string              `db:"influencer_email" json:"influencer_email"`
	EmailSubject    string              `db:"email_subject" json:"email_subject"`
	EmailBody       string              `db:"email_body" json:"email_body"`
	Status          string              `db:"status" json:"status"` // sent, pending, replied, declined, completed
	AgreedPrice     decimal.NullDecimal `db:"agreed_price" json:"agreed_price"`
	SessionID       *string             `db:"session_id" json:"session_id,omitempty"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}
