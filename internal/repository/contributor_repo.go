package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ContentWarnings/Backend/internal/model"
)

type ContributorRepo struct {
	pool *pgxpool.Pool
}

func NewContributorRepo(pool *pgxpool.Pool) *ContributorRepo {
	return &ContributorRepo{pool: pool}
}

// Get returns a contributor by id.
func (r *ContributorRepo) Get(ctx context.Context, contributorID string) (*model.Contributor, error) {
	var c model.Contributor
	err := r.pool.QueryRow(ctx, `
		SELECT contributor_id, owned_warning_ids, first_seen, last_active
		FROM contributors
		WHERE contributor_id = $1`, contributorID,
	).Scan(&c.ContributorID, &c.OwnedWarningIDs, &c.FirstSeen, &c.LastActive)
	if err != nil {
		return nil, WrapError(err, "get contributor")
	}
	c.OwnedWarningIDs = nonNil(c.OwnedWarningIDs)
	return &c, nil
}

// Put writes the contributor and bumps last_active.
func (r *ContributorRepo) Put(ctx context.Context, c *model.Contributor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contributors (contributor_id, owned_warning_ids)
		VALUES ($1, $2)
		ON CONFLICT (contributor_id) DO UPDATE
		SET owned_warning_ids = EXCLUDED.owned_warning_ids, last_active = NOW()`,
		c.ContributorID, nonNil(c.OwnedWarningIDs))
	return WrapError(err, "put contributor")
}

type LedgerRepo struct {
	pool *pgxpool.Pool
}

func NewLedgerRepo(pool *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Get returns a contributor's ledger.
func (r *LedgerRepo) Get(ctx context.Context, contributorID string) (*model.ContributionLedger, error) {
	var l model.ContributionLedger
	err := r.pool.QueryRow(ctx, `
		SELECT contributor_id, good_contributions, deleted_contributions, is_low_trust, updated_at
		FROM contribution_ledgers
		WHERE contributor_id = $1`, contributorID,
	).Scan(&l.ContributorID, &l.GoodContributions, &l.DeletedContributions, &l.IsLowTrust, &l.UpdatedAt)
	if err != nil {
		return nil, WrapError(err, "get ledger")
	}
	return &l, nil
}

// Put writes the ledger. is_low_trust is OR-ed with the stored value so a
// concurrent writer can never clear a demotion.
func (r *LedgerRepo) Put(ctx context.Context, l *model.ContributionLedger) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contribution_ledgers (contributor_id, good_contributions, deleted_contributions, is_low_trust)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (contributor_id) DO UPDATE
		SET good_contributions    = EXCLUDED.good_contributions,
		    deleted_contributions = EXCLUDED.deleted_contributions,
		    is_low_trust          = contribution_ledgers.is_low_trust OR EXCLUDED.is_low_trust,
		    updated_at            = NOW()`,
		l.ContributorID, l.GoodContributions, l.DeletedContributions, l.IsLowTrust)
	return WrapError(err, "put ledger")
}
