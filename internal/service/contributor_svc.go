package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ContentWarnings/Backend/internal/model"
	"github.com/ContentWarnings/Backend/internal/repository"
)

// ContributorService serves the authenticated contributor's own view.
type ContributorService struct {
	warnings WarningStore
	ledger   *LedgerService
	log      zerolog.Logger
}

func NewContributorService(warnings WarningStore, ledger *LedgerService, log zerolog.Logger) *ContributorService {
	return &ContributorService{warnings: warnings, ledger: ledger, log: log}
}

// Profile reconciles the contributor's ledger and lists the warnings they
// still own. A contributor with no record gets an empty profile.
func (s *ContributorService) Profile(ctx context.Context, contributorID string) (*model.ContributorProfile, error) {
	profile := &model.ContributorProfile{
		ContributorID: contributorID,
		Contributions: []model.WarningView{},
	}

	if _, err := s.ledger.Reconcile(ctx, contributorID); err != nil {
		if isNotFound(err) {
			return profile, nil
		}
		s.log.Warn().Err(err).Str("contributor_id", contributorID).Msg("reconcile for profile failed")
	}

	c, err := s.ledger.Contributor(ctx, contributorID)
	if isNotFound(err) {
		return profile, nil
	}
	if err != nil {
		return nil, err
	}

	for _, id := range c.OwnedWarningIDs {
		w, err := s.warnings.Get(ctx, id)
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		profile.Contributions = append(profile.Contributions, w.View())
	}
	return profile, nil
}
