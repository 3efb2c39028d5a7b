package gesture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/clock"
)

// ErrInvalidConfig is returned when a Stabilizer is constructed with
// parameters that cannot produce a stable label.
var ErrInvalidConfig = errors.New("invalid stabilizer config")

// Config holds the stabilizer tuning parameters.
type Config struct {
	WindowSize int           // Number of recent frames considered
	MinCount   int           // Votes needed for a label to become stable
	MinScore   float64       // Classifier scores below this count as None
	Hysteresis float64       // Slack subtracted from MinCount while a label is active
	Debounce   time.Duration // Evaluation freeze after every change
}

// DefaultConfig returns the default stabilizer parameters.
func DefaultConfig() Config {
	return Config{
		WindowSize: 8,
		MinCount:   5,
		MinScore:   0.7,
		Hysteresis: 0.1,
		Debounce:   100 * time.Millisecond,
	}
}

// Validate checks the config for values that make stabilization impossible.
func (c Config) Validate() error {
	switch {
	case c.WindowSize <= 0:
		return fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidConfig, c.WindowSize)
	case c.MinCount <= 0 || c.MinCount > c.WindowSize:
		return fmt.Errorf("%w: min count must be in 1..%d, got %d", ErrInvalidConfig, c.WindowSize, c.MinCount)
	case c.MinScore < 0 || c.MinScore > 1:
		return fmt.Errorf("%w: min score must be in [0,1], got %v", ErrInvalidConfig, c.MinScore)
	case c.Hysteresis < 0:
		return fmt.Errorf("%w: hysteresis must not be negative, got %v", ErrInvalidConfig, c.Hysteresis)
	case c.Debounce < 0:
		return fmt.Errorf("%w: debounce must not be negative, got %v", ErrInvalidConfig, c.Debounce)
	}
	return nil
}

// Stabilizer filters one hand slot's raw labels into a stable label using a
// windowed plurality vote, a hysteresis band and a debounce freeze.
//
// Update is called from the frame tick while the debounce timer fires on the
// clock's goroutine, so all state is guarded by mu. Edge callbacks run after
// mu is released and may call back into the Stabilizer.
type Stabilizer struct {
	cfg   Config
	clock clock.Clock

	// OnStart is called when a label becomes stable.
	OnStart func(Label)
	// OnEnd is called when a stable label is lost.
	OnEnd func(Label)

	mu         sync.Mutex
	history    []Label
	head       int
	size       int
	current    Label
	lastChange time.Time
	frozen     bool
	timer      clock.Timer
	generation uint64
	closed     bool
}

// New creates a Stabilizer. A nil clock uses the real clock.
func New(cfg Config, clk clock.Clock) (*Stabilizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Stabilizer{
		cfg:     cfg,
		clock:   clk,
		history: make([]Label, cfg.WindowSize),
	}, nil
}

type edge struct {
	start bool
	label Label
}

// Update records one frame's raw label and returns the stable label.
// Pass None with a zero score when the hand is absent so history decays.
func (s *Stabilizer) Update(label Label, score float64) Label {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return None
	}
	if score < s.cfg.MinScore {
		label = None
	}
	s.push(label)

	if s.frozen {
		current := s.current
		s.mu.Unlock()
		return current
	}

	next := s.evaluate()
	var edges []edge
	if next != s.current {
		if s.current != None {
			edges = append(edges, edge{start: false, label: s.current})
		}
		if next != None {
			edges = append(edges, edge{start: true, label: next})
		}
		s.current = next
		s.lastChange = s.clock.Now()
		s.freeze()
	}
	current := s.current
	onStart, onEnd := s.OnStart, s.OnEnd
	s.mu.Unlock()

	for _, e := range edges {
		if e.start {
			if onStart != nil {
				onStart(e.label)
			}
		} else if onEnd != nil {
			onEnd(e.label)
		}
	}
	return current
}

// Current returns the stable label without recording a frame.
func (s *Stabilizer) Current() Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LastChange returns when the stable label last changed.
func (s *Stabilizer) LastChange() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChange
}

// Reset clears history and the stable label and cancels any debounce.
// No end edge is fired.
func (s *Stabilizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

// Close cancels pending timers. Updates after Close return None.
func (s *Stabilizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.closed = true
}

func (s *Stabilizer) clear() {
	for i := range s.history {
		s.history[i] = None
	}
	s.head, s.size = 0, 0
	s.current = None
	s.lastChange = time.Time{}
	s.cancelTimer()
}

func (s *Stabilizer) push(label Label) {
	s.history[s.head] = label
	s.head = (s.head + 1) % len(s.history)
	if s.size < len(s.history) {
		s.size++
	}
}

// evaluate returns the label the window supports. Caller holds mu.
func (s *Stabilizer) evaluate() Label {
	winner, count, counts := s.plurality()

	if s.current != None {
		if float64(counts[s.current]) > float64(s.cfg.MinCount)-s.cfg.Hysteresis {
			return s.current
		}
	}
	if winner == None || count < s.cfg.MinCount {
		return None
	}
	return winner
}

// plurality counts votes oldest first. None is a candidate; ties go to the
// label that appeared first.
func (s *Stabilizer) plurality() (Label, int, map[Label]int) {
	counts := make(map[Label]int, 4)
	order := make([]Label, 0, 4)
	start := (s.head - s.size + len(s.history)) % len(s.history)
	for i := 0; i < s.size; i++ {
		l := s.history[(start+i)%len(s.history)]
		if _, seen := counts[l]; !seen {
			order = append(order, l)
		}
		counts[l]++
	}

	winner, best := None, 0
	for _, l := range order {
		if counts[l] > best {
			winner, best = l, counts[l]
		}
	}
	return winner, best, counts
}

// freeze suspends evaluation for the debounce interval. Caller holds mu.
func (s *Stabilizer) freeze() {
	if s.cfg.Debounce <= 0 {
		return
	}
	s.cancelTimer()
	s.frozen = true
	gen := s.generation
	s.timer = s.clock.AfterFunc(s.cfg.Debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			return
		}
		s.frozen = false
		s.timer = nil
	})
}

func (s *Stabilizer) cancelTimer() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.frozen = false
}
