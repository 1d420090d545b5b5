package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
)

// ContractRepositoryInterface stores contracts. An outreach has at most one
// contract that is not REJECTED; Create returns appErrors.ErrConflict otherwise.
type ContractRepositoryInterface interface {
	Create(ctx context.Context, c *model.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	GetByOutreach(ctx context.Context, outreachID uuid.UUID) (*model.Contract, error)
	Transition(ctx context.Context, id uuid.UUID, from, to, signatureURL string) error
	MarkPaid(ctx context.Context, id uuid.UUID, orderID, paymentID string) error
}

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

type ContractRepository struct {
	DB DBTX
}

const contractColumns = `id, campaign_id, outreach_id, influencer_id, brand_id, template, body, amount, status,
        signature_url, payment_status, razorpay_order_id, razorpay_payment_id, created_at, updated_at`

func (r *ContractRepository) Create(ctx context.Context, c *model.Contract) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = model.ContractDraft
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = model.PaymentPending
	}
	query := `
        INSERT INTO contracts (id, campaign_id, outreach_id, influencer_id, brand_id, template, body, amount, status, payment_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at, updated_at
    `
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.CampaignID, c.OutreachID, c.InfluencerID, c.BrandID,
		c.Template, c.Body, c.Amount, c.Status, c.PaymentStatus).Scan(&c.CreatedAt, &c.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: outreach %s already has an open contract", appErrors.ErrConflict, c.OutreachID)
	}
	return err
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	c, err := scanContract(r.DB.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("contract", id)
	}
	return c, err
}

// GetByOutreach returns the newest contract for an outreach row.
func (r *ContractRepository) GetByOutreach(ctx context.Context, outreachID uuid.UUID) (*model.Contract, error) {
	c, err := scanContract(r.DB.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE outreach_id=$1 ORDER BY created_at DESC LIMIT 1`, outreachID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("contract for outreach", outreachID)
	}
	return c, err
}

// Transition moves the contract from one status to another only if it is
// still in the expected status.
func (r *ContractRepository) Transition(ctx context.Context, id uuid.UUID, from, to, signatureURL string) error {
	query := `
        UPDATE contracts
        SET status=$1, signature_url=COALESCE(NULLIF($2, ''), signature_url), updated_at=NOW()
        WHERE id=$3 AND status=$4
    `
	res, err := r.DB.ExecContext(ctx, query, to, signatureURL, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: contract %s is no longer %s", appErrors.ErrInvalidTransition, id, from)
	}
	return nil
}

func (r *ContractRepository) MarkPaid(ctx context.Context, id uuid.UUID, orderID, paymentID string) error {
	query := `
        UPDATE contracts
        SET payment_status=$1, razorpay_order_id=$2, razorpay_payment_id=$3, updated_at=NOW()
        WHERE id=$4
    `
	return expectOne(r.DB.ExecContext(ctx, query, model.PaymentCompleted, orderID, paymentID, id))("contract", id)
}

func scanContract(row rowScanner) (*model.Contract, error) {
	var c model.Contract
	err := row.Scan(&c.ID, &c.CampaignID, &c.OutreachID, &c.InfluencerID, &c.BrandID, &c.Template, &c.Body,
		&c.Amount, &c.Status, &c.SignatureURL, &c.PaymentStatus, &c.RazorpayOrderID, &c.RazorpayPaymentID,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ ContractRepositoryInterface = (*ContractRepository)(nil)
