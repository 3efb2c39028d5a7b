package gesture

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/mudra/internal/clock"
)

type frame struct {
	label Label
	score float64
}

func hand(l Label) frame { return frame{label: l, score: 0.9} }

var absent = frame{}

func newTestStabilizer(t *testing.T, cfg Config, clk clock.Clock) (*Stabilizer, *[]string) {
	t.Helper()
	s, err := New(cfg, clk)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var edges []string
	s.OnStart = func(l Label) { edges = append(edges, "start:"+l.String()) }
	s.OnEnd = func(l Label) { edges = append(edges, "end:"+l.String()) }
	return s, &edges
}

func noDebounce() Config {
	cfg := DefaultConfig()
	cfg.Debounce = 0
	return cfg
}

func feed(s *Stabilizer, frames []frame) []Label {
	out := make([]Label, len(frames))
	for i, f := range frames {
		out[i] = s.Update(f.label, f.score)
	}
	return out
}

func TestStabilizer_Onset(t *testing.T) {
	s, edges := newTestStabilizer(t, noDebounce(), nil)

	got := feed(s, []frame{hand(ThumbUp), hand(ThumbUp), hand(ThumbUp), hand(ThumbUp), hand(ThumbUp)})
	want := []Label{None, None, None, None, ThumbUp}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"start:Thumb_Up"}, *edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestStabilizer_OnsetWithInterleavedNulls(t *testing.T) {
	s, _ := newTestStabilizer(t, noDebounce(), nil)

	frames := []frame{
		hand(Victory), absent, hand(Victory), absent,
		hand(Victory), absent, hand(Victory), hand(Victory),
	}
	got := feed(s, frames)

	if got[len(got)-1] != Victory {
		t.Fatalf("expected Victory to be stable within 8 updates, got %v", got)
	}
	for i, l := range got[:len(got)-1] {
		if l != None {
			t.Errorf("update %d: expected None before the fifth vote, got %s", i, l)
		}
	}
}

func TestStabilizer_SurvivesThreeNulls(t *testing.T) {
	s, edges := newTestStabilizer(t, noDebounce(), nil)

	feed(s, []frame{hand(ThumbUp), hand(ThumbUp), hand(ThumbUp), hand(ThumbUp), hand(ThumbUp)})
	got := feed(s, []frame{absent, absent, absent})
	if diff := cmp.Diff([]Label{ThumbUp, ThumbUp, ThumbUp}, got); diff != "" {
		t.Errorf("label lost during nulls (-want +got):\n%s", diff)
	}

	if l := s.Update(None, 0); l != None {
		t.Errorf("expected fourth null to end the gesture, got %s", l)
	}
	if diff := cmp.Diff([]string{"start:Thumb_Up", "end:Thumb_Up"}, *edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestStabilizer_LowScoreIsNone(t *testing.T) {
	s, _ := newTestStabilizer(t, noDebounce(), nil)

	for i := 0; i < 8; i++ {
		if l := s.Update(ThumbUp, 0.69); l != None {
			t.Fatalf("update %d: expected None for score below threshold, got %s", i, l)
		}
	}
}

func TestStabilizer_EdgeOrderOnLabelSwitch(t *testing.T) {
	cfg := Config{WindowSize: 4, MinCount: 2, MinScore: 0.5, Hysteresis: 0.1}
	s, edges := newTestStabilizer(t, cfg, nil)

	got := feed(s, []frame{hand(ThumbUp), hand(ThumbUp), hand(Victory), hand(Victory), hand(Victory)})
	want := []Label{None, ThumbUp, ThumbUp, ThumbUp, Victory}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}
	wantEdges := []string{"start:Thumb_Up", "end:Thumb_Up", "start:Victory"}
	if diff := cmp.Diff(wantEdges, *edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestStabilizer_HysteresisHoldsAgainstLeadingRival(t *testing.T) {
	cfg := noDebounce()
	cfg.MinCount = 3
	s, _ := newTestStabilizer(t, cfg, nil)

	feed(s, []frame{hand(ThumbUp), hand(ThumbUp), hand(ThumbUp)})
	got := feed(s, []frame{hand(Victory), hand(Victory), hand(Victory), hand(Victory)})

	// Victory leads 4 to 3 but ThumbUp still clears MinCount - Hysteresis.
	for i, l := range got {
		if l != ThumbUp {
			t.Errorf("update %d: expected ThumbUp to be held, got %s", i, l)
		}
	}

	got = feed(s, []frame{hand(Victory), hand(Victory)})
	if diff := cmp.Diff([]Label{ThumbUp, Victory}, got); diff != "" {
		t.Errorf("expected Victory once ThumbUp is evicted below the band (-want +got):\n%s", diff)
	}
}

func TestStabilizer_TieBreaksByFirstOccurrence(t *testing.T) {
	cfg := Config{WindowSize: 4, MinCount: 2, MinScore: 0.5}
	s, _ := newTestStabilizer(t, cfg, nil)

	got := feed(s, []frame{hand(OK), hand(Victory), hand(Victory), hand(OK)})
	if got[2] != Victory {
		t.Fatalf("expected Victory at third frame, got %s", got[2])
	}
	// OK and Victory tie at two votes; OK came first.
	if got[3] != OK {
		t.Errorf("expected OK to win the tie, got %s", got[3])
	}

	s.Reset()
	got = feed(s, []frame{hand(OK), hand(Victory), absent, hand(Victory)})
	if got[3] != Victory {
		t.Errorf("expected Victory, got %s", got[3])
	}

	s.Reset()
	got = feed(s, []frame{hand(Victory), hand(OK), hand(OK), hand(Victory)})
	if got[2] != OK {
		t.Errorf("expected OK at third frame, got %s", got[2])
	}
}

func TestStabilizer_Debounce(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	s, edges := newTestStabilizer(t, DefaultConfig(), clk)

	feed(s, []frame{hand(ThumbUp), hand(ThumbUp), hand(ThumbUp), hand(ThumbUp), hand(ThumbUp)})
	if s.Current() != ThumbUp {
		t.Fatalf("expected ThumbUp, got %s", s.Current())
	}
	if clk.Pending() != 1 {
		t.Fatalf("expected one debounce timer, got %d", clk.Pending())
	}

	// History still accumulates but the output is frozen.
	got := feed(s, []frame{absent, absent, absent, absent, absent, absent, absent, absent})
	for i, l := range got {
		if l != ThumbUp {
			t.Errorf("update %d during debounce: expected ThumbUp, got %s", i, l)
		}
	}

	clk.Advance(100 * time.Millisecond)
	if l := s.Update(None, 0); l != None {
		t.Errorf("expected None after debounce elapsed, got %s", l)
	}
	if diff := cmp.Diff([]string{"start:Thumb_Up", "end:Thumb_Up"}, *edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if !s.LastChange().Equal(time.Unix(0, 0).Add(100 * time.Millisecond)) {
		t.Errorf("LastChange() = %v", s.LastChange())
	}
}

func TestStabilizer_ResetIsIdempotent(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	s, _ := newTestStabilizer(t, DefaultConfig(), clk)

	frames := []frame{
		hand(ThumbUp), hand(ThumbUp), {ThumbUp, 0.2}, hand(ThumbUp), hand(ThumbUp),
		hand(ThumbUp), absent, hand(Victory), hand(Victory), hand(Victory),
		hand(Victory), hand(Victory), hand(Victory), absent, absent,
		absent, absent, absent, absent, absent,
	}
	run := func() []Label {
		out := make([]Label, len(frames))
		for i, f := range frames {
			out[i] = s.Update(f.label, f.score)
			clk.Advance(33 * time.Millisecond)
		}
		return out
	}

	first := run()
	s.Reset()
	s.Reset()
	second := run()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("replay after Reset differs (-first +second):\n%s", diff)
	}
}

func TestStabilizer_ResetCancelsDebounce(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	s, edges := newTestStabilizer(t, DefaultConfig(), clk)

	feed(s, []frame{hand(OK), hand(OK), hand(OK), hand(OK), hand(OK)})
	s.Reset()

	if clk.Pending() != 0 {
		t.Errorf("expected Reset to cancel the debounce timer, %d pending", clk.Pending())
	}
	if s.Current() != None {
		t.Errorf("expected None after Reset, got %s", s.Current())
	}
	clk.Advance(time.Second)

	// Evaluation is not frozen after Reset.
	got := feed(s, []frame{hand(Victory), hand(Victory), hand(Victory), hand(Victory), hand(Victory)})
	if got[4] != Victory {
		t.Errorf("expected Victory after Reset, got %v", got)
	}
	if diff := cmp.Diff([]string{"start:OK", "start:Victory"}, *edges); diff != "" {
		t.Errorf("Reset must not fire end edges (-want +got):\n%s", diff)
	}
}

func TestStabilizer_Close(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	s, _ := newTestStabilizer(t, DefaultConfig(), clk)

	feed(s, []frame{hand(OK), hand(OK), hand(OK), hand(OK), hand(OK)})
	s.Close()

	if clk.Pending() != 0 {
		t.Errorf("expected Close to cancel timers, %d pending", clk.Pending())
	}
	if l := s.Update(OK, 1); l != None {
		t.Errorf("expected None after Close, got %s", l)
	}
}

func TestStabilizer_CallbackMayReenter(t *testing.T) {
	s, err := New(noDebounce(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var seen Label
	s.OnStart = func(Label) { seen = s.Current() }

	feed(s, []frame{hand(ThumbUp), hand(ThumbUp), hand(ThumbUp), hand(ThumbUp), hand(ThumbUp)})
	if seen != ThumbUp {
		t.Errorf("Current() inside OnStart = %s, want Thumb_Up", seen)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.WindowSize = 0 }},
		{"negative window", func(c *Config) { c.WindowSize = -1 }},
		{"zero min count", func(c *Config) { c.MinCount = 0 }},
		{"min count above window", func(c *Config) { c.MinCount = 9 }},
		{"min score above one", func(c *Config) { c.MinScore = 1.5 }},
		{"negative min score", func(c *Config) { c.MinScore = -0.1 }},
		{"negative hysteresis", func(c *Config) { c.Hysteresis = -1 }},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := New(DefaultConfig(), nil); err != nil {
		t.Errorf("New(DefaultConfig()) error = %v", err)
	}
}
