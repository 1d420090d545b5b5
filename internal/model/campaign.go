// internal/model/campaign.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CampaignDraft             = "draft"
	CampaignActive            = "active"
	CampaignInReview          = "in_review"
	CampaignCompleted         = "completed"
	CampaignDeclined          = "declined"
	CampaignContractGenerated = "contract_generated"
)

// CampaignStatuses lists every status a campaign row may hold.
var CampaignStatuses = []string{
	CampaignDraft, CampaignActive, CampaignInReview,
	CampaignCompleted, CampaignDeclined, CampaignContractGenerated,
}

type Campaign struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	BrandID       uuid.UUID           `db:"brand_id" json:"brand_id"`
	Name          string              `db:"name" json:"name"`
	Description   string              `db:"description" json:"description"`
	CampaignType  string              `db:"campaign_type" json:"campaign_type"`
	Duration      string              `db:"duration" json:"duration"`
	Budget        decimal.Decimal     `db:"budget" json:"budget"`
	EmailTemplate string              `db:"email_template" json:"email_template"`
	Status        string              `db:"status" json:"status"`
	FinalPrice    decimal.NullDecimal `db:"final_price" json:"final_price"`
	ContractID    uuid.NullUUID       `db:"contract_id" json:"contract_id"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time          `db:"updated_at" json:"updated_at,omitempty"`
}

type Brand struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
