package quality

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/clock"
)

// MonitorConfig holds the performance targets a Monitor reports against.
type MonitorConfig struct {
	TargetFPS      float64
	MainBudgetMs   float64
	WorkerBudgetMs float64
	Window         int
}

// DefaultMonitorConfig targets 30fps with a 5ms frame-tick budget and a
// 25ms detection budget, over the last 60 frames.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{TargetFPS: 30, MainBudgetMs: 5, WorkerBudgetMs: 25, Window: 60}
}

func (c MonitorConfig) Validate() error {
	if c.TargetFPS <= 0 || c.MainBudgetMs <= 0 || c.WorkerBudgetMs <= 0 || c.Window <= 0 {
		return fmt.Errorf("%w: performance targets must be positive", ErrInvalidConfig)
	}
	return nil
}

// Report is a snapshot of frame performance.
type Report struct {
	FPS            float64 `json:"fps"`
	AvgFrameMs     float64 `json:"avgFrameMs"`
	MinFrameMs     float64 `json:"minFrameMs"`
	MaxFrameMs     float64 `json:"maxFrameMs"`
	MeetingTarget  bool    `json:"meetingTarget"`
	ShouldReduce   bool    `json:"shouldReduce"`
	CanIncrease    bool    `json:"canIncrease"`
	WorkerBudgetMs float64 `json:"workerBudgetMs"`
}

func (r Report) String() string {
	return fmt.Sprintf("FPS: %.1f, Avg: %.2fms, Min: %.2fms, Max: %.2fms", r.FPS, r.AvgFrameMs, r.MinFrameMs, r.MaxFrameMs)
}

// Monitor measures frames per second and per-frame processing time.
type Monitor struct {
	cfg   MonitorConfig
	clock clock.Clock

	mu         sync.Mutex
	timings    []float64
	frameCount int
	windowFrom time.Time
	fps        float64
}

// NewMonitor creates a Monitor. A nil clock uses the real clock.
func NewMonitor(cfg MonitorConfig, clk clock.Clock) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Monitor{cfg: cfg, clock: clk, windowFrom: clk.Now()}, nil
}

// Record adds one frame's processing time. FPS is recomputed once per
// elapsed second from the frames recorded in it.
func (m *Monitor) Record(frameTimeMs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timings = append(m.timings, frameTimeMs)
	if len(m.timings) > m.cfg.Window {
		m.timings = m.timings[len(m.timings)-m.cfg.Window:]
	}

	m.frameCount++
	now := m.clock.Now()
	if elapsed := now.Sub(m.windowFrom); elapsed >= time.Second {
		m.fps = float64(m.frameCount) / elapsed.Seconds()
		m.frameCount = 0
		m.windowFrom = now
	}
}

// FPS returns the frame rate measured over the last full second.
func (m *Monitor) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

// OverWorkerBudget reports whether a detection took longer than the worker
// budget.
func (m *Monitor) OverWorkerBudget(detectMs float64) bool {
	return detectMs > m.cfg.WorkerBudgetMs
}

// Report returns the current performance snapshot.
func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := Report{FPS: m.fps, WorkerBudgetMs: m.cfg.WorkerBudgetMs}
	if len(m.timings) > 0 {
		r.AvgFrameMs = stat.Mean(m.timings, nil)
		r.MinFrameMs = floats.Min(m.timings)
		r.MaxFrameMs = floats.Max(m.timings)
	}
	r.MeetingTarget = r.FPS >= m.cfg.TargetFPS && r.AvgFrameMs <= m.cfg.MainBudgetMs
	r.ShouldReduce = r.AvgFrameMs > m.cfg.MainBudgetMs*1.5 || r.FPS < m.cfg.TargetFPS*0.8
	r.CanIncrease = r.AvgFrameMs < m.cfg.MainBudgetMs*0.7 && r.FPS > m.cfg.TargetFPS*1.1
	return r
}
