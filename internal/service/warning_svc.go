package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ContentWarnings/Backend/internal/metrics"
	"github.com/ContentWarnings/Backend/internal/model"
	"github.com/ContentWarnings/Backend/internal/repository"
)

const (
	MaxIntervals      = 100
	MaxDescriptionLen = 1000
)

// WarningService handles submission, lookup, editing and owner deletion of warnings.
type WarningService struct {
	warnings WarningStore
	movies   MovieIndexStore
	ledger   *LedgerService
	cascade  *CascadeService
	screen   ContentScreen
	cache    *CacheService
	log      zerolog.Logger
	newID    func() string
}

func NewWarningService(
	warnings WarningStore,
	movies MovieIndexStore,
	ledger *LedgerService,
	cascade *CascadeService,
	screen ContentScreen,
	cache *CacheService,
	log zerolog.Logger,
) *WarningService {
	if screen == nil {
		screen = AllowAll{}
	}
	return &WarningService{
		warnings: warnings,
		movies:   movies,
		ledger:   ledger,
		cascade:  cascade,
		screen:   screen,
		cache:    cache,
		log:      log,
		newID:    uuid.NewString,
	}
}

// Get returns the public view of a warning.
func (s *WarningService) Get(ctx context.Context, id string) (*model.WarningView, error) {
	if cached, err := s.cache.GetWarning(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("warning_id", id).Msg("cache: get warning error")
	} else if cached != nil {
		return cached, nil
	}

	w, err := s.warnings.Get(ctx, id)
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: warning %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	v := w.View()
	if err := s.cache.SetWarning(ctx, &v); err != nil {
		s.log.Warn().Err(err).Str("warning_id", id).Msg("cache: set warning error")
	}
	return &v, nil
}

// ListForMovie returns every warning indexed under movieID. Index entries
// whose warning no longer exists are skipped.
func (s *WarningService) ListForMovie(ctx context.Context, movieID int64) ([]model.WarningView, error) {
	if cached, err := s.cache.GetMovieWarnings(ctx, movieID); err != nil {
		s.log.Warn().Err(err).Int64("movie_id", movieID).Msg("cache: get movie error")
	} else if cached != nil {
		return cached, nil
	}

	views, err := s.loadMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetMovieWarnings(ctx, movieID, views); err != nil {
		s.log.Warn().Err(err).Int64("movie_id", movieID).Msg("cache: set movie error")
	}
	return views, nil
}

func (s *WarningService) loadMovie(ctx context.Context, movieID int64) ([]model.WarningView, error) {
	views := []model.WarningView{}

	idx, err := s.movies.Get(ctx, movieID)
	if repository.IsNotFound(err) {
		return views, nil
	}
	if err != nil {
		return nil, err
	}

	for _, id := range idx.WarningIDs {
		w, err := s.warnings.Get(ctx, id)
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, w.View())
	}
	return views, nil
}

// Submit creates a warning owned by submitterID and indexes it under its
// movie. Submissions from low-trust contributors are dropped without an
// error: the result has no warning and an empty movie list.
func (s *WarningService) Submit(ctx context.Context, content model.WarningContent, submitterID string) (*model.SubmitResult, error) {
	content.Description = strings.TrimSpace(content.Description)
	if err := validateContent(content, false); err != nil {
		return nil, err
	}

	lowTrust, err := s.ledger.IsLowTrust(ctx, submitterID)
	if err != nil {
		return nil, err
	}
	if lowTrust {
		metrics.SubmissionDiscarded()
		s.log.Debug().Str("contributor_id", submitterID).Int64("movie_id", content.MovieID).Msg("discarding submission from low-trust contributor")
		return &model.SubmitResult{MovieWarnings: []model.WarningView{}}, nil
	}

	if err := s.screen.Check(content.Description); err != nil {
		return nil, err
	}

	id := s.newID()

	w := model.NewWarning(id, content.Classification, content.MovieID, content.Intervals, content.Description)
	if err := s.warnings.Create(ctx, w); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: warning %s already exists", ErrConflict, id)
		}
		return nil, err
	}

	if err := s.index(ctx, w); err != nil {
		return nil, err
	}

	contributor, err := s.ledger.EnsureContributor(ctx, submitterID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.RecordSubmission(ctx, contributor, id); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id, w.MovieID)

	views, err := s.loadMovie(ctx, w.MovieID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("warning_id", id).Int64("movie_id", w.MovieID).Str("classification", string(w.Classification)).Msg("warning submitted")

	v := w.View()
	return &model.SubmitResult{Warning: &v, MovieWarnings: views}, nil
}

func (s *WarningService) index(ctx context.Context, w *model.Warning) error {
	idx, err := s.movies.Get(ctx, w.MovieID)
	if repository.IsNotFound(err) {
		idx = &model.MovieIndex{MovieID: w.MovieID}
	} else if err != nil {
		return err
	}
	if !idx.Add(w.ID) {
		return nil
	}
	return s.movies.Put(ctx, idx)
}

// Edit replaces a warning's content on behalf of its owner and clears its
// votes. Setting the classification to "none" deletes the warning instead.
func (s *WarningService) Edit(ctx context.Context, id string, content model.WarningContent, callerID string) (*model.EditResult, error) {
	w, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if content.Classification == model.ClassificationNone {
		report, err := s.deleteOwned(ctx, w, callerID)
		if err != nil {
			return nil, err
		}
		return &model.EditResult{Deletion: report}, nil
	}

	content.Description = strings.TrimSpace(content.Description)
	if err := validateContent(content, true); err != nil {
		return nil, err
	}
	if content.MovieID != w.MovieID {
		return nil, fmt.Errorf("%w: warning %s belongs to movie %d", ErrConflict, id, w.MovieID)
	}
	if err := s.screen.Check(content.Description); err != nil {
		return nil, err
	}

	w.Classification = content.Classification
	w.Intervals = content.Intervals
	if w.Intervals == nil {
		w.Intervals = []model.Interval{}
	}
	w.Description = content.Description
	w.ResetVotes()

	if err := s.warnings.Put(ctx, w); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, w.ID, w.MovieID)

	if _, err := s.ledger.Reconcile(ctx, callerID); err != nil {
		s.log.Warn().Err(err).Str("contributor_id", callerID).Msg("reconcile after edit failed")
	}

	s.log.Info().Str("warning_id", id).Str("contributor_id", callerID).Msg("warning edited, votes reset")

	v := w.View()
	return &model.EditResult{Warning: &v}, nil
}

// Delete removes a warning on behalf of its owner.
func (s *WarningService) Delete(ctx context.Context, id, callerID string) (*model.DeletionReport, error) {
	w, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	return s.deleteOwned(ctx, w, callerID)
}

func (s *WarningService) deleteOwned(ctx context.Context, w *model.Warning, ownerID string) (*model.DeletionReport, error) {
	report := s.cascade.Delete(ctx, w, ownerID)

	if report.Step(model.StepContributor).Status == model.StepApplied {
		if err := s.ledger.ReleaseContribution(ctx, ownerID); err != nil {
			s.log.Warn().Err(err).Str("contributor_id", ownerID).Msg("release contribution failed")
		}
	}
	if _, err := s.ledger.Reconcile(ctx, ownerID); err != nil {
		s.log.Warn().Err(err).Str("contributor_id", ownerID).Msg("reconcile after delete failed")
	}
	return report, nil
}

// authorize loads the warning and checks that callerID owns it.
func (s *WarningService) authorize(ctx context.Context, id, callerID string) (*model.Warning, error) {
	w, err := s.warnings.Get(ctx, id)
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: warning %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	c, err := s.ledger.Contributor(ctx, callerID)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s does not own warning %s", ErrForbidden, callerID, id)
	}
	if err != nil {
		return nil, err
	}
	if !c.Owns(id) {
		return nil, fmt.Errorf("%w: %s does not own warning %s", ErrForbidden, callerID, id)
	}
	return w, nil
}

// validateContent checks the caller-supplied fields of a warning.
func validateContent(content model.WarningContent, editing bool) error {
	if !content.Classification.Valid() {
		if content.Classification == model.ClassificationNone && !editing {
			return invalidf("classification %q is only allowed when editing", content.Classification)
		}
		return invalidf("unknown classification %q", content.Classification)
	}
	if content.MovieID <= 0 {
		return invalidf("movieId must be positive")
	}
	if len(content.Intervals) > MaxIntervals {
		return invalidf("at most %d intervals allowed", MaxIntervals)
	}
	for i, iv := range content.Intervals {
		if iv.Start < 0 {
			return invalidf("interval %d starts before 0", i)
		}
		if iv.End < iv.Start {
			return invalidf("interval %d ends before it starts", i)
		}
	}
	if utf8.RuneCountInString(content.Description) > MaxDescriptionLen {
		return invalidf("description must be at most %d characters", MaxDescriptionLen)
	}
	return nil
}
