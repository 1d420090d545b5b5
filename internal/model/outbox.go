package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const TopicDealAccepted = "deal.accepted"

// OutboxEvent is written in the same transaction as the state change it announces.
type OutboxEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Topic       string          `db:"topic" json:"topic"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	PublishedAt *time.Time      `db:"published_at" json:"published_at,omitempty"`
}

// DealAccepted is the payload of TopicDealAccepted.
type DealAccepted struct {
	OutreachID   uuid.UUID `json:"outreach_id"`
	CampaignID   uuid.UUID `json:"campaign_id"`
	InfluencerID uuid.UUID `json:"influencer_id"`
}
