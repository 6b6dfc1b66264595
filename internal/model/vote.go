package model

import "fmt"

// Direction is the polarity of a vote.
type Direction int

const (
	Upvote Direction = iota + 1
	Downvote
)

func (d Direction) String() string {
	switch d {
	case Upvote:
		return "upvote"
	case Downvote:
		return "downvote"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// VoteStatus is a voter's current position on a warning.
type VoteStatus string

const (
	StatusUpvoted   VoteStatus = "upvoted"
	StatusDownvoted VoteStatus = "downvoted"
	StatusNoVote    VoteStatus = "nothing"
)

// VoteOutcome is the API response after a vote is applied.
type VoteOutcome struct {
	WarningID string          `json:"warningId"`
	Upvoted   bool            `json:"upvoted"`
	Downvoted bool            `json:"downvoted"`
	Upvotes   int             `json:"upvotes"`
	Downvotes int             `json:"downvotes"`
	Trust     float64         `json:"trust"`
	Deleted   bool            `json:"deleted"`
	Deletion  *DeletionReport `json:"deletion,omitempty"`
}

// DeletionTrigger says who started a cascade.
type DeletionTrigger string

const (
	TriggerOwner DeletionTrigger = "owner"
	TriggerVotes DeletionTrigger = "votes"
)

// Cascade step names, in execution order.
const (
	StepMovieIndex  = "movie_index"
	StepWarning     = "warning"
	StepContributor = "contributor"
)

// StepStatus is the result of one cascade step.
type StepStatus string

const (
	StepApplied StepStatus = "applied"
	StepNoop    StepStatus = "noop"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// CascadeStep records what happened to one entity during a deletion.
type CascadeStep struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// DeletionReport summarises a deletion cascade. Steps are attempted even
// when an earlier one fails.
type DeletionReport struct {
	WarningID string          `json:"warningId"`
	MovieID   int64           `json:"movieId"`
	Trigger   DeletionTrigger `json:"trigger"`
	Steps     []CascadeStep   `json:"steps"`
}

// Failed reports whether any step failed.
func (r *DeletionReport) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return true
		}
	}
	return false
}

// Step returns the named step, or a zero value if it was not recorded.
func (r *DeletionReport) Step(name string) CascadeStep {
	for _, s := range r.Steps {
		if s.Name == name {
			return s
		}
	}
	return CascadeStep{}
}
