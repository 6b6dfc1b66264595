package service

import (
	"fmt"

	goaway "github.com/TwiN/go-away"
)

// ContentScreen rejects text that must not be stored.
type ContentScreen interface {
	Check(text string) error
}

// ProfanityScreen rejects descriptions containing profanity.
type ProfanityScreen struct {
	detector *goaway.ProfanityDetector
}

// NewProfanityScreen builds a screen from the default dictionary plus extra words.
func NewProfanityScreen(extra []string) *ProfanityScreen {
	profanities := make([]string, 0, len(goaway.DefaultProfanities)+len(extra))
	profanities = append(profanities, goaway.DefaultProfanities...)
	for _, w := range extra {
		if w != "" {
			profanities = append(profanities, w)
		}
	}
	return &ProfanityScreen{
		detector: goaway.NewProfanityDetector().WithCustomDictionary(
			profanities,
			goaway.DefaultFalsePositives,
			goaway.DefaultFalseNegatives,
		),
	}
}

func (p *ProfanityScreen) Check(text string) error {
	if text == "" {
		return nil
	}
	if p.detector.IsProfane(text) {
		return fmt.Errorf("%w: description contains profanity", ErrContentRejected)
	}
	return nil
}

// AllowAll accepts everything.
type AllowAll struct{}

func (AllowAll) Check(string) error { return nil }
