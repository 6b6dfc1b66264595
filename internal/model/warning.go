package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Interval is a [start, end] range in seconds inside a movie.
// It is encoded on the wire and in storage as a two-element JSON array.
type Interval struct {
	Start int
	End   int
}

func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{iv.Start, iv.End})
}

func (iv *Interval) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("interval must be a [start, end] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("interval must have exactly 2 values, got %d", len(pair))
	}
	iv.Start, iv.End = pair[0], pair[1]
	return nil
}

// VoterSet is a set of opaque voter tokens. The zero value is an empty set
// ready for reads; use NewVoterSet or Add to populate it.
type VoterSet map[string]struct{}

// NewVoterSet builds a set from tokens, dropping empty strings.
func NewVoterSet(tokens ...string) VoterSet {
	s := make(VoterSet, len(tokens))
	for _, t := range tokens {
		if t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

func (s VoterSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

func (s VoterSet) Len() int {
	return len(s)
}

// Add inserts token, allocating the set if needed. It reports whether the set changed.
func (s *VoterSet) Add(token string) bool {
	if *s == nil {
		*s = VoterSet{}
	}
	if _, ok := (*s)[token]; ok {
		return false
	}
	(*s)[token] = struct{}{}
	return true
}

// Remove deletes token. It reports whether the set changed.
func (s VoterSet) Remove(token string) bool {
	if _, ok := s[token]; !ok {
		return false
	}
	delete(s, token)
	return true
}

// Slice returns the tokens in sorted order.
func (s VoterSet) Slice() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Warning is a content warning attached to a movie.
type Warning struct {
	ID             string
	Classification Classification
	MovieID        int64
	Intervals      []Interval
	Description    string

	// Derived from the vote sets, never set by callers.
	Trust      float64
	Upvoters   VoterSet
	Downvoters VoterSet
}

// NewWarning creates a warning with empty vote sets and zero trust.
func NewWarning(id string, c Classification, movieID int64, intervals []Interval, desc string) *Warning {
	if intervals == nil {
		intervals = []Interval{}
	}
	return &Warning{
		ID:             id,
		Classification: c,
		MovieID:        movieID,
		Intervals:      intervals,
		Description:    desc,
		Upvoters:       VoterSet{},
		Downvoters:     VoterSet{},
	}
}

// ResetVotes clears both vote sets and the trust score. Edits forfeit accumulated trust.
func (w *Warning) ResetVotes() {
	w.Upvoters = VoterSet{}
	w.Downvoters = VoterSet{}
	w.Trust = 0
}

// View returns the public representation of the warning.
func (w *Warning) View() WarningView {
	return WarningView{
		ID:             w.ID,
		Classification: w.Classification,
		MovieID:        w.MovieID,
		Intervals:      w.Intervals,
		Description:    w.Description,
	}
}

// WarningView is what the API exposes: no vote sets, no trust.
type WarningView struct {
	ID             string         `json:"id"`
	Classification Classification `json:"classification"`
	MovieID        int64          `json:"movieId"`
	Intervals      []Interval     `json:"intervals"`
	Description    string         `json:"description"`
}

// WarningContent is the caller-editable part of a warning, used for
// submissions and edits. Warning ids are always assigned by the server.
type WarningContent struct {
	Classification Classification `json:"classification"`
	MovieID        int64          `json:"movieId"`
	Intervals      []Interval     `json:"intervals"`
	Description    string         `json:"description"`
}

// SubmitResult is returned after a submission. Warning is nil when the
// submission was silently discarded.
type SubmitResult struct {
	Warning       *WarningView  `json:"warning,omitempty"`
	MovieWarnings []WarningView `json:"movieWarnings"`
}

// EditResult is returned after an edit. Exactly one of Warning and Deletion is set.
type EditResult struct {
	Warning  *WarningView    `json:"warning,omitempty"`
	Deletion *DeletionReport `json:"deletion,omitempty"`
}
