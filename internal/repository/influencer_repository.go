package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
)

// InfluencerRepositoryInterface defines methods used by services
type InfluencerRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Influencer, error)
	ListAll(ctx context.Context) ([]model.Influencer, error)
}

type InfluencerRepository struct {
	DB DBTX
}

// GetByID fetches an influencer by ID
func (r *InfluencerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Influencer, error) {
	query := `
        SELECT id, name, email, handle, platform, followers, niche, created_at
        FROM influencers
        WHERE id = $1
    `
	var i model.Influencer
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&i.ID, &i.Name, &i.Email, &i.Handle, &i.Platform, &i.Followers, &i.Niche, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("influencer", id)
		}
		return nil, err
	}
	return &i, nil
}

// ListAll fetches every influencer, largest audience first
func (r *InfluencerRepository) ListAll(ctx context.Context) ([]model.Influencer, error) {
	query := `
        SELECT id, name, email, handle, platform, followers, niche, created_at
        FROM influencers
        ORDER BY followers DESC
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	influencers := []model.Influencer{}
	for rows.Next() {
		var i model.Influencer
		if err := rows.Scan(&i.ID, &i.Name, &i.Email, &i.Handle, &i.Platform, &i.Followers, &i.Niche, &i.CreatedAt); err != nil {
			return nil, err
		}
		influencers = append(influencers, i)
	}
	return influencers, rows.Err()
}

type BrandRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Brand, error)
}

type BrandRepository struct {
	DB DBTX
}

func (r *BrandRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	var b model.Brand
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, email, created_at FROM brands WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.Email, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("brand", id)
		}
		return nil, err
	}
	return &b, nil
}
