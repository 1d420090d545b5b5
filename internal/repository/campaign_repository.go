package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, offset, limit int, campaignType, status string) ([]*model.Campaign, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetFinalPrice(ctx context.Context, id uuid.UUID, status string, price decimal.Decimal) error
	AttachContract(ctx context.Context, id, contractID uuid.UUID) error
}

type CampaignRepository struct {
	DB DBTX
}

const campaignColumns = `id, brand_id, name, description, campaign_type, duration, budget, email_template,
        status, final_price, contract_id, created_at, updated_at`

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	query := `
        INSERT INTO campaigns (id, brand_id, name, description, campaign_type, duration, budget, email_template, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.BrandID, c.Name, c.Description, c.CampaignType,
		c.Duration, c.Budget, c.EmailTemplate, c.Status, c.CreatedAt)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("campaign", id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(ctx context.Context, offset, limit int, campaignType, status string) ([]*model.Campaign, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argPos := 1

	if campaignType != "" {
		where += fmt.Sprintf(" AND campaign_type=$%d", argPos)
		args = append(args, campaignType)
		argPos++
	}
	if status != "" {
		where += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, total, rows.Err()
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	return expectOne(r.DB.ExecContext(ctx, query, status, time.Now(), id))("campaign", id)
}

func (r *CampaignRepository) SetFinalPrice(ctx context.Context, id uuid.UUID, status string, price decimal.Decimal) error {
	query := `UPDATE campaigns SET status=$1, final_price=$2, updated_at=NOW() WHERE id=$3`
	return expectOne(r.DB.ExecContext(ctx, query, status, price, id))("campaign", id)
}

func (r *CampaignRepository) AttachContract(ctx context.Context, id, contractID uuid.UUID) error {
	query := `UPDATE campaigns SET status=$1, contract_id=$2, updated_at=NOW() WHERE id=$3`
	return expectOne(r.DB.ExecContext(ctx, query, model.CampaignContractGenerated, contractID, id))("campaign", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(&c.ID, &c.BrandID, &c.Name, &c.Description, &c.CampaignType, &c.Duration, &c.Budget,
		&c.EmailTemplate, &c.Status, &c.FinalPrice, &c.ContractID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// expectOne turns a zero-row update into a NotFoundError.
func expectOne(res sql.Result, err error) func(entity string, id uuid.UUID) error {
	return func(entity string, id uuid.UUID) error {
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return appErrors.NewNotFound(entity, id)
		}
		return nil
	}
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
