// Package tracking gives hands a persistent slot across frames by matching
// each observation to the nearest previously seen wrist.
package tracking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/ayusman/mudra/internal/detector"
)

// ErrInvalidConfig is returned for a non-positive slot count or negative
// distances.
var ErrInvalidConfig = errors.New("invalid tracking config")

// Config controls slot matching. Distances are normalized image units.
type Config struct {
	Slots int
	// MaxJump is the largest wrist movement between frames still treated as
	// the same hand.
	MaxJump float64
	// HandednessPenalty is added to the match cost when handedness differs.
	HandednessPenalty float64
	// Patience is how many consecutive frames a slot keeps its last position
	// after its hand disappears.
	Patience int
}

// DefaultConfig returns two slots, a 0.25 jump limit, a 0.15 handedness
// penalty and 5 frames of patience.
func DefaultConfig() Config {
	return Config{Slots: 2, MaxJump: 0.25, HandednessPenalty: 0.15, Patience: 5}
}

func (c Config) Validate() error {
	switch {
	case c.Slots <= 0:
		return fmt.Errorf("%w: slots must be positive", ErrInvalidConfig)
	case c.MaxJump <= 0:
		return fmt.Errorf("%w: max jump must be positive", ErrInvalidConfig)
	case c.HandednessPenalty < 0 || c.Patience < 0:
		return fmt.Errorf("%w: penalty and patience must not be negative", ErrInvalidConfig)
	}
	return nil
}

type track struct {
	wrist      detector.Point3D
	handedness string
	known      bool
	missed     int
}

type candidate struct {
	obs, slot int
	cost      float64
}

// Assigner reorders observation batches into stable slots. It is driven
// from the frame tick and is not safe for concurrent use.
type Assigner struct {
	cfg    Config
	tracks []track
	active int
}

// NewAssigner creates an Assigner with every slot free.
func NewAssigner(cfg Config) (*Assigner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Assigner{cfg: cfg, tracks: make([]track, cfg.Slots), active: cfg.Slots}, nil
}

// Limit restricts assignment to the first n slots and frees the tracks
// above them, so a lowered hand cap never strands a hand in a slot the
// pipeline no longer reads.
func (a *Assigner) Limit(n int) {
	n = min(max(n, 0), len(a.tracks))
	for j := n; j < len(a.tracks); j++ {
		a.tracks[j] = track{}
	}
	a.active = n
}

// Assign returns a batch of length Slots where index i is the hand tracked
// in slot i. Only the first Limit slots are filled; the rest hold an absent
// observation, as do slots with no matching hand. Hands that match no slot
// and find no free one are dropped.
func (a *Assigner) Assign(batch []detector.Observation) []detector.Observation {
	out := make([]detector.Observation, len(a.tracks))
	assignedObs := make([]bool, len(batch))
	assignedSlot := make([]bool, len(a.tracks))
	live := a.tracks[:a.active]

	var cands []candidate
	for i, obs := range batch {
		if !obs.Present() {
			assignedObs[i] = true
			continue
		}
		for j, t := range live {
			if !t.known {
				continue
			}
			d := detector.Distance2D(obs.Landmarks[detector.Wrist], t.wrist)
			if d > a.cfg.MaxJump {
				continue
			}
			if obs.Handedness != "" && t.handedness != "" && obs.Handedness != t.handedness {
				d += a.cfg.HandednessPenalty
			}
			cands = append(cands, candidate{obs: i, slot: j, cost: d})
		}
	}
	slices.SortStableFunc(cands, func(x, y candidate) int { return cmp.Compare(x.cost, y.cost) })

	for _, c := range cands {
		if assignedObs[c.obs] || assignedSlot[c.slot] {
			continue
		}
		a.place(out, batch[c.obs], c.slot)
		assignedObs[c.obs], assignedSlot[c.slot] = true, true
	}

	// New hands take the lowest free slot.
	for i, obs := range batch {
		if assignedObs[i] {
			continue
		}
		for j := range live {
			if !assignedSlot[j] && !a.tracks[j].known {
				a.place(out, obs, j)
				assignedSlot[j] = true
				break
			}
		}
	}

	for j := range live {
		if assignedSlot[j] || !a.tracks[j].known {
			continue
		}
		a.tracks[j].missed++
		if a.tracks[j].missed > a.cfg.Patience {
			a.tracks[j] = track{}
		}
	}
	return out
}

// Reset frees every slot.
func (a *Assigner) Reset() {
	for i := range a.tracks {
		a.tracks[i] = track{}
	}
}

// Slots returns the number of slots.
func (a *Assigner) Slots() int { return len(a.tracks) }

func (a *Assigner) place(out []detector.Observation, obs detector.Observation, slot int) {
	out[slot] = obs
	a.tracks[slot] = track{
		wrist:      obs.Landmarks[detector.Wrist],
		handedness: obs.Handedness,
		known:      true,
	}
}
