package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ContentWarnings/Backend/internal/model"
)

type MovieIndexRepo struct {
	pool *pgxpool.Pool
}

func NewMovieIndexRepo(pool *pgxpool.Pool) *MovieIndexRepo {
	return &MovieIndexRepo{pool: pool}
}

// Get returns the warning index of a movie.
func (r *MovieIndexRepo) Get(ctx context.Context, movieID int64) (*model.MovieIndex, error) {
	idx := model.MovieIndex{MovieID: movieID}
	err := r.pool.QueryRow(ctx,
		`SELECT warning_ids FROM movie_warnings WHERE movie_id = $1`, movieID,
	).Scan(&idx.WarningIDs)
	if err != nil {
		return nil, WrapError(err, "get movie index")
	}
	idx.WarningIDs = nonNil(idx.WarningIDs)
	return &idx, nil
}

// Put writes the movie index, replacing any existing record.
func (r *MovieIndexRepo) Put(ctx context.Context, idx *model.MovieIndex) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO movie_warnings (movie_id, warning_ids)
		VALUES ($1, $2)
		ON CONFLICT (movie_id) DO UPDATE
		SET warning_ids = EXCLUDED.warning_ids, updated_at = NOW()`,
		idx.MovieID, nonNil(idx.WarningIDs))
	return WrapError(err, "put movie index")
}

// Delete removes a movie's index entirely.
func (r *MovieIndexRepo) Delete(ctx context.Context, movieID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM movie_warnings WHERE movie_id = $1`, movieID)
	return WrapError(err, "delete movie index")
}
