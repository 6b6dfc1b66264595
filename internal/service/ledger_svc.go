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

// LedgerService keeps each contributor's contribution counts and low-trust
// flag in line with which of their warnings still exist.
type LedgerService struct {
	warnings     WarningStore
	contributors ContributorStore
	ledgers      LedgerStore
	trust        *TrustService
	events       event.Publisher
	log          zerolog.Logger
}

func NewLedgerService(
	warnings WarningStore,
	contributors ContributorStore,
	ledgers LedgerStore,
	trust *TrustService,
	events event.Publisher,
	log zerolog.Logger,
) *LedgerService {
	if events == nil {
		events = event.Nop{}
	}
	return &LedgerService{
		warnings:     warnings,
		contributors: contributors,
		ledgers:      ledgers,
		trust:        trust,
		events:       events,
		log:          log,
	}
}

// Contributor returns the stored contributor record.
func (s *LedgerService) Contributor(ctx context.Context, contributorID string) (*model.Contributor, error) {
	c, err := s.contributors.Get(ctx, contributorID)
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: contributor %s", ErrNotFound, contributorID)
	}
	return c, err
}

// EnsureContributor returns the contributor record, creating an empty one on first touch.
func (s *LedgerService) EnsureContributor(ctx context.Context, contributorID string) (*model.Contributor, error) {
	c, err := s.contributors.Get(ctx, contributorID)
	if err == nil {
		return c, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	c = &model.Contributor{ContributorID: contributorID, OwnedWarningIDs: []string{}}
	if err := s.contributors.Put(ctx, c); err != nil {
		return nil, err
	}
	s.log.Debug().Str("contributor_id", contributorID).Msg("contributor created")
	return c, nil
}

// Ledger returns the contributor's ledger, or a fresh one if none is stored.
func (s *LedgerService) Ledger(ctx context.Context, contributorID string) (*model.ContributionLedger, error) {
	l, err := s.ledgers.Get(ctx, contributorID)
	if repository.IsNotFound(err) {
		return &model.ContributionLedger{ContributorID: contributorID}, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Reconcile finds the contributor's owned warning ids that no longer exist,
// counts them as deleted contributions, drops them from the owned list and
// re-evaluates low-trust status. Once a contributor is low trust they stay
// that way.
func (s *LedgerService) Reconcile(ctx context.Context, contributorID string) (*model.LowTrustUpdate, error) {
	c, err := s.Contributor(ctx, contributorID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.Ledger(ctx, contributorID)
	if err != nil {
		return nil, err
	}

	update := &model.LowTrustUpdate{
		ContributorID:        contributorID,
		Dangling:             []string{},
		GoodContributions:    ledger.GoodContributions,
		DeletedContributions: ledger.DeletedContributions,
		IsLowTrust:           ledger.IsLowTrust,
	}

	if len(c.OwnedWarningIDs) == 0 {
		return update, nil
	}

	existing, err := s.warnings.Existing(ctx, c.OwnedWarningIDs)
	if err != nil {
		return nil, err
	}

	still := make([]string, 0, len(c.OwnedWarningIDs))
	for _, id := range c.OwnedWarningIDs {
		if existing[id] {
			still = append(still, id)
		} else {
			update.Dangling = append(update.Dangling, id)
		}
	}

	if len(update.Dangling) == 0 {
		return update, nil
	}

	ledger.DeletedContributions += len(update.Dangling)
	ledger.GoodContributions = len(still)
	if !ledger.IsLowTrust && s.trust.IsLowTrust(ledger.GoodContributions, ledger.DeletedContributions) {
		ledger.IsLowTrust = true
		update.Demoted = true
	}

	// Contributor first, so a dangling id is never counted twice.
	c.OwnedWarningIDs = still
	if err := s.contributors.Put(ctx, c); err != nil {
		return nil, err
	}
	if err := s.ledgers.Put(ctx, ledger); err != nil {
		return nil, err
	}

	update.GoodContributions = ledger.GoodContributions
	update.DeletedContributions = ledger.DeletedContributions
	update.IsLowTrust = ledger.IsLowTrust
	update.Changed = true

	s.log.Info().
		Str("contributor_id", contributorID).
		Int("dangling", len(update.Dangling)).
		Int("good", ledger.GoodContributions).
		Int("deleted", ledger.DeletedContributions).
		Msg("contribution ledger reconciled")

	if update.Demoted {
		metrics.Demotion()
		s.log.Warn().Str("contributor_id", contributorID).Msg("contributor demoted to low trust")
		evt := event.New(event.TypeContributorDemoted)
		evt.ContributorID = contributorID
		if err := s.events.Publish(ctx, evt); err != nil {
			s.log.Warn().Err(err).Str("contributor_id", contributorID).Msg("ledger: publish event failed")
		}
	}

	return update, nil
}

// RecordSubmission adds warningID to the contributor's owned list and counts
// it as a good contribution.
func (s *LedgerService) RecordSubmission(ctx context.Context, c *model.Contributor, warningID string) error {
	if c.Owns(warningID) {
		return nil
	}
	c.OwnedWarningIDs = append(c.OwnedWarningIDs, warningID)
	if err := s.contributors.Put(ctx, c); err != nil {
		return err
	}

	ledger, err := s.Ledger(ctx, c.ContributorID)
	if err != nil {
		return err
	}
	ledger.GoodContributions++
	return s.ledgers.Put(ctx, ledger)
}

// ReleaseContribution uncounts a warning its owner deleted. Owner deletions
// are neither good nor deleted contributions.
func (s *LedgerService) ReleaseContribution(ctx context.Context, contributorID string) error {
	ledger, err := s.Ledger(ctx, contributorID)
	if err != nil {
		return err
	}
	if ledger.GoodContributions == 0 {
		return nil
	}
	ledger.GoodContributions--
	return s.ledgers.Put(ctx, ledger)
}

// IsLowTrust reconciles the contributor and reports their current status.
// A contributor with no record is not low trust.
func (s *LedgerService) IsLowTrust(ctx context.Context, contributorID string) (bool, error) {
	update, err := s.Reconcile(ctx, contributorID)
	if err == nil {
		return update.IsLowTrust, nil
	}
	if !isNotFound(err) {
		s.log.Warn().Err(err).Str("contributor_id", contributorID).Msg("ledger: reconcile failed, using stored status")
	}

	ledger, lerr := s.Ledger(ctx, contributorID)
	if lerr != nil {
		return false, lerr
	}
	return ledger.IsLowTrust, nil
}
