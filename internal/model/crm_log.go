package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageUser   = "user"
	MessageBot    = "bot"
	MessageSystem = "system"
)

// CRMMessage is one entry of a CRM transcript.
type CRMMessage struct {
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type CRMLog struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	CampaignID   uuid.UUID    `db:"campaign_id" json:"campaign_id"`
	InfluencerID uuid.UUID    `db:"influencer_id" json:"influencer_id"`
	Messages     []CRMMessage `db:"messages" json:"messages"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}
