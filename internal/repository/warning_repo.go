package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ContentWarnings/Backend/internal/model"
)

type WarningRepo struct {
	pool *pgxpool.Pool
}

func NewWarningRepo(pool *pgxpool.Pool) *WarningRepo {
	return &WarningRepo{pool: pool}
}

// Get returns a single warning by id.
func (r *WarningRepo) Get(ctx context.Context, id string) (*model.Warning, error) {
	query := `
		SELECT id, classification, movie_id, intervals, description, trust, upvoters, downvoters
		FROM warnings
		WHERE id = $1`

	var (
		w          model.Warning
		intervals  []byte
		upvoters   []string
		downvoters []string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Classification, &w.MovieID, &intervals, &w.Description, &w.Trust,
		&upvoters, &downvoters,
	)
	if err != nil {
		return nil, WrapError(err, "get warning")
	}

	if err := json.Unmarshal(intervals, &w.Intervals); err != nil {
		return nil, fmt.Errorf("get warning: decode intervals: %w", err)
	}
	if w.Intervals == nil {
		w.Intervals = []model.Interval{}
	}
	w.Upvoters = model.NewVoterSet(upvoters...)
	w.Downvoters = model.NewVoterSet(downvoters...)
	return &w, nil
}

// Create inserts a new warning. It fails with ErrDuplicateKey if the id is taken.
func (r *WarningRepo) Create(ctx context.Context, w *model.Warning) error {
	intervals, err := json.Marshal(w.Intervals)
	if err != nil {
		return fmt.Errorf("create warning: encode intervals: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO warnings (id, classification, movie_id, intervals, description, trust, upvoters, downvoters)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, string(w.Classification), w.MovieID, intervals, w.Description, w.Trust,
		w.Upvoters.Slice(), w.Downvoters.Slice())
	return WrapError(err, "create warning")
}

// Put writes the warning, replacing any existing record with the same id.
// Last writer wins; there is no version check.
func (r *WarningRepo) Put(ctx context.Context, w *model.Warning) error {
	intervals, err := json.Marshal(w.Intervals)
	if err != nil {
		return fmt.Errorf("put warning: encode intervals: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO warnings (id, classification, movie_id, intervals, description, trust, upvoters, downvoters)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET classification = EXCLUDED.classification,
		    movie_id       = EXCLUDED.movie_id,
		    intervals      = EXCLUDED.intervals,
		    description    = EXCLUDED.description,
		    trust          = EXCLUDED.trust,
		    upvoters       = EXCLUDED.upvoters,
		    downvoters     = EXCLUDED.downvoters,
		    updated_at     = NOW()`,
		w.ID, string(w.Classification), w.MovieID, intervals, w.Description, w.Trust,
		w.Upvoters.Slice(), w.Downvoters.Slice())
	return WrapError(err, "put warning")
}

// Delete removes the warning. It reports whether a record was actually removed.
func (r *WarningRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM warnings WHERE id = $1`, id)
	if err != nil {
		return false, WrapError(err, "delete warning")
	}
	return tag.RowsAffected() > 0, nil
}

// Existing returns the subset of ids that still have a warning record.
func (r *WarningRepo) Existing(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id FROM warnings WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, WrapError(err, "find existing warnings")
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, WrapError(err, "find existing warnings")
		}
		found[id] = true
	}
	return found, WrapError(rows.Err(), "find existing warnings")
}
