package service

import "github.com/ContentWarnings/Backend/internal/model"

const (
	// A warning is auto-deleted when its trust drops below this value...
	DeleteTrustThreshold = 0.3
	// ...and it has collected at least this many downvotes.
	MinDownvotesForDelete = 5

	// Contributors are not judged until they have this many contributions.
	MinContributionsForEvaluation = 10
	// Share of deleted contributions at which a contributor becomes low trust.
	BadContributionRatio = 0.3

	noVotesTrust   = 0.0
	unanimousTrust = 1.0
)

// TrustService holds the pure scoring rules for warnings and contributors.
type TrustService struct{}

func NewTrustService() *TrustService {
	return &TrustService{}
}

// WarningTrust computes a warning's trust from its vote counts:
//
//	no votes        -> 0
//	no downvotes    -> 1
//	otherwise       -> up / (up + down)
func (s *TrustService) WarningTrust(upvotes, downvotes int) float64 {
	if upvotes+downvotes == 0 {
		return noVotesTrust
	}
	if downvotes == 0 {
		return unanimousTrust
	}
	return float64(upvotes) / float64(upvotes+downvotes)
}

// Recompute sets w.Trust from its current vote sets.
func (s *TrustService) Recompute(w *model.Warning) {
	w.Trust = s.WarningTrust(w.Upvoters.Len(), w.Downvoters.Len())
}

// ShouldAutoDelete reports whether w has crossed the deletion threshold.
// Only evaluated after a downvote.
func (s *TrustService) ShouldAutoDelete(w *model.Warning) bool {
	return w.Trust < DeleteTrustThreshold && w.Downvoters.Len() >= MinDownvotesForDelete
}

// IsLowTrust evaluates a contributor's record. It does not know about
// prior demotion; callers keep the flag sticky.
func (s *TrustService) IsLowTrust(good, deleted int) bool {
	total := good + deleted
	if total == 0 || total < MinContributionsForEvaluation {
		return false
	}
	return float64(deleted)/float64(total) >= BadContributionRatio
}
