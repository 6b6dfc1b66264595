package model

import "time"

// Contributor is an account that submits warnings.
type Contributor struct {
	ContributorID   string    `json:"contributorId"`
	OwnedWarningIDs []string  `json:"-"`
	FirstSeen       time.Time `json:"-"`
	LastActive      time.Time `json:"-"`
}

// Owns reports whether warningID is in the contributor's owned list.
func (c *Contributor) Owns(warningID string) bool {
	for _, id := range c.OwnedWarningIDs {
		if id == warningID {
			return true
		}
	}
	return false
}

// RemoveWarning drops warningID from the owned list. It reports whether the list changed.
func (c *Contributor) RemoveWarning(warningID string) bool {
	for i, id := range c.OwnedWarningIDs {
		if id == warningID {
			c.OwnedWarningIDs = append(c.OwnedWarningIDs[:i], c.OwnedWarningIDs[i+1:]...)
			return true
		}
	}
	return false
}

// ContributionLedger tracks how a contributor's submissions fared.
// IsLowTrust never goes back to false once set.
type ContributionLedger struct {
	ContributorID        string
	GoodContributions    int
	DeletedContributions int
	IsLowTrust           bool
	UpdatedAt            time.Time
}

// LowTrustUpdate describes the outcome of a ledger reconciliation.
type LowTrustUpdate struct {
	ContributorID        string   `json:"contributorId"`
	Dangling             []string `json:"dangling"`
	GoodContributions    int      `json:"goodContributions"`
	DeletedContributions int      `json:"deletedContributions"`
	IsLowTrust           bool     `json:"-"`
	Demoted              bool     `json:"-"`
	Changed              bool     `json:"changed"`
}

// ContributorProfile is the API response for the authenticated contributor.
// Low-trust state is never exposed.
type ContributorProfile struct {
	ContributorID string        `json:"id"`
	Contributions []WarningView `json:"contributions"`
}
