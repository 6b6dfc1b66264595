package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ContentWarnings/Backend/internal/metrics"
	"github.com/ContentWarnings/Backend/internal/model"
	"github.com/ContentWarnings/Backend/internal/repository"
)

// VoteService applies up/down votes to warnings and triggers auto-deletion.
//
// Votes are a read-modify-write of the warning record with no
// compare-and-swap, so two concurrent votes on the same warning can lose one
// of the updates.
type VoteService struct {
	warnings WarningStore
	trust    *TrustService
	cascade  *CascadeService
	cache    *CacheService
	log      zerolog.Logger
}

func NewVoteService(warnings WarningStore, trust *TrustService, cascade *CascadeService, cache *CacheService, log zerolog.Logger) *VoteService {
	return &VoteService{
		warnings: warnings,
		trust:    trust,
		cascade:  cascade,
		cache:    cache,
		log:      log,
	}
}

// Cast records voterToken's vote on a warning. Voting in the opposite
// direction switches the vote; voting twice in the same direction fails with
// ErrInvalidVote. A downvote that pushes the warning over the deletion
// threshold runs the deletion cascade and reports it in the outcome.
func (s *VoteService) Cast(ctx context.Context, warningID, voterToken string, dir model.Direction) (*model.VoteOutcome, error) {
	if dir != model.Upvote && dir != model.Downvote {
		return nil, invalidf("unknown vote direction %d", int(dir))
	}
	if voterToken == "" {
		return nil, invalidf("missing voter identity")
	}

	w, err := s.warnings.Get(ctx, warningID)
	if repository.IsNotFound(err) {
		metrics.VoteRecorded(dir.String(), "not_found")
		return nil, fmt.Errorf("%w: warning %s", ErrNotFound, warningID)
	}
	if err != nil {
		return nil, err
	}

	target, opposite := &w.Upvoters, &w.Downvoters
	if dir == model.Downvote {
		target, opposite = &w.Downvoters, &w.Upvoters
	}

	if target.Has(voterToken) {
		metrics.VoteRecorded(dir.String(), "duplicate")
		return nil, fmt.Errorf("%w: already %sd warning %s", ErrInvalidVote, dir, warningID)
	}

	switched := opposite.Remove(voterToken)
	target.Add(voterToken)
	s.trust.Recompute(w)

	if err := s.warnings.Put(ctx, w); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, w.ID, w.MovieID)

	result := "applied"
	if switched {
		result = "switched"
	}
	metrics.VoteRecorded(dir.String(), result)

	outcome := &model.VoteOutcome{
		WarningID: w.ID,
		Upvoted:   w.Upvoters.Has(voterToken),
		Downvoted: w.Downvoters.Has(voterToken),
		Upvotes:   w.Upvoters.Len(),
		Downvotes: w.Downvoters.Len(),
		Trust:     w.Trust,
	}

	if dir == model.Downvote && s.trust.ShouldAutoDelete(w) {
		s.log.Info().
			Str("warning_id", w.ID).
			Float64("trust", w.Trust).
			Int("downvotes", w.Downvoters.Len()).
			Msg("trust below threshold, deleting warning")

		report := s.cascade.Delete(ctx, w, "")
		metrics.AutoDeletion()
		outcome.Deletion = report
		outcome.Deleted = report.Step(model.StepWarning).Status != model.StepFailed
	}

	return outcome, nil
}

// Status returns voterToken's current vote on a warning.
func (s *VoteService) Status(ctx context.Context, warningID, voterToken string) (model.VoteStatus, error) {
	w, err := s.warnings.Get(ctx, warningID)
	if repository.IsNotFound(err) {
		return "", fmt.Errorf("%w: warning %s", ErrNotFound, warningID)
	}
	if err != nil {
		return "", err
	}

	switch {
	case w.Upvoters.Has(voterToken):
		return model.StatusUpvoted, nil
	case w.Downvoters.Has(voterToken):
		return model.StatusDownvoted, nil
	default:
		return model.StatusNoVote, nil
	}
}
