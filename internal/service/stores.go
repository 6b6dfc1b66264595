package service

import (
	"context"

	"github.com/ContentWarnings/Backend/internal/model"
)

// The store interfaces are satisfied by the pgx repositories. Missing
// records are reported with repository.ErrNotFound.

type WarningStore interface {
	Get(ctx context.Context, id string) (*model.Warning, error)
	Create(ctx context.Context, w *model.Warning) error
	Put(ctx context.Context, w *model.Warning) error
	Delete(ctx context.Context, id string) (bool, error)
	Existing(ctx context.Context, ids []string) (map[string]bool, error)
}

type MovieIndexStore interface {
	Get(ctx context.Context, movieID int64) (*model.MovieIndex, error)
	Put(ctx context.Context, idx *model.MovieIndex) error
}

type ContributorStore interface {
	Get(ctx context.Context, contributorID string) (*model.Contributor, error)
	Put(ctx context.Context, c *model.Contributor) error
}

type LedgerStore interface {
	Get(ctx context.Context, contributorID string) (*model.ContributionLedger, error)
	Put(ctx context.Context, l *model.ContributionLedger) error
}
