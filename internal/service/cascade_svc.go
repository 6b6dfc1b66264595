package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ContentWarnings/Backend/internal/event"
	"github.com/ContentWarnings/Backend/internal/metrics"
	"github.com/ContentWarnings/Backend/internal/model"
	"github.com/ContentWarnings/Backend/internal/repository"
)

// CascadeService removes a warning from every place that references it.
// The steps are not atomic: each one runs even if an earlier one failed, and
// failures are recorded in the report for reconciliation to pick up later.
type CascadeService struct {
	warnings     WarningStore
	movies       MovieIndexStore
	contributors ContributorStore
	cache        *CacheService
	events       event.Publisher
	log          zerolog.Logger
}

func NewCascadeService(
	warnings WarningStore,
	movies MovieIndexStore,
	contributors ContributorStore,
	cache *CacheService,
	events event.Publisher,
	log zerolog.Logger,
) *CascadeService {
	if events == nil {
		events = event.Nop{}
	}
	return &CascadeService{
		warnings:     warnings,
		movies:       movies,
		contributors: contributors,
		cache:        cache,
		events:       events,
		log:          log,
	}
}

// Delete runs the cascade for w in order: movie index, warning record,
// owning contributor. ownerID is the contributor who asked for the deletion;
// when it is empty (vote-triggered) the contributor step is skipped and left
// to ledger reconciliation. Running Delete again on the same warning is safe:
// every step reports noop.
func (s *CascadeService) Delete(ctx context.Context, w *model.Warning, ownerID string) *model.DeletionReport {
	trigger := model.TriggerOwner
	if ownerID == "" {
		trigger = model.TriggerVotes
	}

	report := &model.DeletionReport{
		WarningID: w.ID,
		MovieID:   w.MovieID,
		Trigger:   trigger,
	}

	status, err := s.removeFromMovie(ctx, w)
	report.Steps = append(report.Steps, s.record(w.ID, model.StepMovieIndex, status, err))

	status, err = s.removeWarning(ctx, w.ID)
	report.Steps = append(report.Steps, s.record(w.ID, model.StepWarning, status, err))

	if ownerID == "" {
		report.Steps = append(report.Steps, model.CascadeStep{Name: model.StepContributor, Status: model.StepSkipped})
	} else {
		status, err = s.removeFromContributor(ctx, ownerID, w.ID)
		report.Steps = append(report.Steps, s.record(w.ID, model.StepContributor, status, err))
	}

	s.cache.Invalidate(ctx, w.ID, w.MovieID)

	if report.Step(model.StepWarning).Status == model.StepApplied {
		typ := event.TypeWarningDeleted
		if trigger == model.TriggerVotes {
			typ = event.TypeWarningAutoDeleted
		}
		evt := event.New(typ)
		evt.WarningID = w.ID
		evt.MovieID = w.MovieID
		evt.ContributorID = ownerID
		if err := s.events.Publish(ctx, evt); err != nil {
			s.log.Warn().Err(err).Str("warning_id", w.ID).Str("type", typ).Msg("cascade: publish event failed")
		}
	}

	s.log.Info().
		Str("warning_id", w.ID).
		Int64("movie_id", w.MovieID).
		Str("trigger", string(trigger)).
		Bool("partial", report.Failed()).
		Msg("warning deleted")

	return report
}

func (s *CascadeService) record(warningID, step string, status model.StepStatus, err error) model.CascadeStep {
	cs := model.CascadeStep{Name: step, Status: status}
	if err != nil {
		stepErr := &CascadeStepError{Step: step, WarningID: warningID, Err: err}
		cs.Status = model.StepFailed
		cs.Error = stepErr.Error()
		metrics.CascadeStepFailed(step)
		s.log.Error().Err(stepErr).Str("warning_id", warningID).Str("step", step).Msg("cascade step failed")
	}
	return cs
}

func (s *CascadeService) removeFromMovie(ctx context.Context, w *model.Warning) (model.StepStatus, error) {
	idx, err := s.movies.Get(ctx, w.MovieID)
	if repository.IsNotFound(err) {
		return model.StepNoop, nil
	}
	if err != nil {
		return model.StepFailed, err
	}
	if !idx.Remove(w.ID) {
		return model.StepNoop, nil
	}
	if err := s.movies.Put(ctx, idx); err != nil {
		return model.StepFailed, err
	}
	return model.StepApplied, nil
}

func (s *CascadeService) removeWarning(ctx context.Context, id string) (model.StepStatus, error) {
	removed, err := s.warnings.Delete(ctx, id)
	if err != nil {
		return model.StepFailed, err
	}
	if !removed {
		return model.StepNoop, nil
	}
	return model.StepApplied, nil
}

func (s *CascadeService) removeFromContributor(ctx context.Context, ownerID, warningID string) (model.StepStatus, error) {
	c, err := s.contributors.Get(ctx, ownerID)
	if repository.IsNotFound(err) {
		return model.StepNoop, nil
	}
	if err != nil {
		return model.StepFailed, err
	}
	if !c.RemoveWarning(warningID) {
		return model.StepNoop, nil
	}
	if err := s.contributors.Put(ctx, c); err != nil {
		return model.StepFailed, fmt.Errorf("update owned list: %w", err)
	}
	return model.StepApplied, nil
}
