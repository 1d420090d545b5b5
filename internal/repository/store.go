package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Brands      BrandRepositoryInterface
	Influencers InfluencerRepositoryInterface
	Campaigns   CampaignRepositoryInterface
	Outreach    OutreachRepositoryInterface
	CRMLogs     CRMLogRepositoryInterface
	Contracts   ContractRepositoryInterface
	Outbox      OutboxRepositoryInterface
}

func NewRepos(db DBTX) Repos {
	return Repos{
		Brands:      &BrandRepository{DB: db},
		Influencers: &InfluencerRepository{DB: db},
		Campaigns:   &CampaignRepository{DB: db},
		Outreach:    &OutreachRepository{DB: db},
		CRMLogs:     &CRMLogRepository{DB: db},
		Contracts:   &ContractRepository{DB: db},
		Outbox:      &OutboxRepository{DB: db},
	}
}

// Store owns the pool and runs multi-table changes in one transaction.
type Store struct {
	DB *sql.DB
}

func (s *Store) Repos() Repos {
	return NewRepos(s.DB)
}

// InTx commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
