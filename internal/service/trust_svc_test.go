package service

import (
	"fmt"
	"math"
	"testing"

	"github.com/ContentWarnings/Backend/internal/model"
)

func TestWarningTrust(t *testing.T) {
	svc := NewTrustService()

	tests := []struct {
		name      string
		upvotes   int
		downvotes int
		want      float64
	}{
		{"no votes", 0, 0, 0.0},
		{"only upvotes", 3, 0, 1.0},
		{"single upvote", 1, 0, 1.0},
		{"only downvotes", 0, 4, 0.0},
		{"even split", 2, 2, 0.5},
		{"one up four down", 1, 4, 0.2},
		{"three up one down", 3, 1, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.WarningTrust(tt.upvotes, tt.downvotes)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("WarningTrust(%d, %d) = %.4f, want %.4f", tt.upvotes, tt.downvotes, got, tt.want)
			}
		})
	}
}

func TestWarningTrustBounds(t *testing.T) {
	svc := NewTrustService()

	for u := 0; u <= 20; u++ {
		for d := 0; d <= 20; d++ {
			got := svc.WarningTrust(u, d)
			if got < 0 || got > 1 {
				t.Fatalf("WarningTrust(%d, %d) = %.4f, outside [0, 1]", u, d, got)
			}
		}
	}
}

func warningWithVotes(up, down int) *model.Warning {
	w := model.NewWarning("w", "Gore", 1, nil, "")
	for i := 0; i < up; i++ {
		w.Upvoters.Add(fmt.Sprintf("up-%d", i))
	}
	for i := 0; i < down; i++ {
		w.Downvoters.Add(fmt.Sprintf("down-%d", i))
	}
	NewTrustService().Recompute(w)
	return w
}

func TestShouldAutoDelete(t *testing.T) {
	svc := NewTrustService()

	tests := []struct {
		name      string
		upvotes   int
		downvotes int
		want      bool
	}{
		{"no votes", 0, 0, false},
		{"four downvotes only", 0, 4, false},
		{"five downvotes only", 0, 5, true},
		{"one up five down", 1, 5, true},
		{"two up five down (trust 0.286)", 2, 5, true},
		{"three up five down (trust 0.375)", 3, 5, false},
		{"many up many down", 20, 10, false},
		{"four downvotes at trust 0.2", 1, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := warningWithVotes(tt.upvotes, tt.downvotes)
			if got := svc.ShouldAutoDelete(w); got != tt.want {
				t.Errorf("ShouldAutoDelete(up=%d, down=%d, trust=%.3f) = %v, want %v",
					tt.upvotes, tt.downvotes, w.Trust, got, tt.want)
			}
		})
	}
}

func TestIsLowTrust(t *testing.T) {
	svc := NewTrustService()

	tests := []struct {
		name    string
		good    int
		deleted int
		want    bool
	}{
		{"no contributions", 0, 0, false},
		{"below minimum, all deleted", 0, 9, false},
		{"three contributions, all deleted", 0, 3, false},
		{"ten contributions, 40 percent deleted", 6, 4, true},
		{"exactly minimum, all good", 10, 0, false},
		{"exactly minimum, ratio at threshold", 7, 3, true},
		{"exactly minimum, just under threshold", 8, 2, false},
		{"large record, 29 percent deleted", 71, 29, false},
		{"large record, 30 percent deleted", 70, 30, true},
		{"large record, mostly deleted", 5, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsLowTrust(tt.good, tt.deleted); got != tt.want {
				t.Errorf("IsLowTrust(%d, %d) = %v, want %v", tt.good, tt.deleted, got, tt.want)
			}
		})
	}
}
