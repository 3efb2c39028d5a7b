package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/quality"
)

var (
	// ErrClosed is returned when starting an App after Close.
	ErrClosed = errors.New("app is closed")
	// ErrNoCamera is returned by Start when the App has no capture device.
	ErrNoCamera = errors.New("app has no camera")
)

// ProcessFrame runs one frame's observations through slot tracking, the
// stabilizers and the plugins. A batch shorter than the slot count leaves
// the remaining slots absent; observations beyond it are dropped.
//
// Plugins see every slot's hand update before any of the frame's gesture
// edges, so edge handlers read the current cursor.
func (a *App) ProcessFrame(batch []detector.Observation) {
	a.tick.Lock()
	defer a.tick.Unlock()

	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return
	}

	n := min(a.quality.Current().MaxHands, len(a.stabilizers))
	a.shrink(n)

	if a.assigner != nil {
		a.assigner.Limit(n)
		batch = a.assigner.Assign(batch)
	}

	hands := make([]plugin.HandData, n)
	for slot := range n {
		var obs detector.Observation
		if slot < len(batch) {
			obs = batch[slot]
		}
		hands[slot] = a.stabilize(slot, obs)
	}
	edges := a.pending
	a.pending = nil

	a.mu.Lock()
	a.hands = hands
	a.frames++
	a.mu.Unlock()

	a.registry.UpdateHands(hands)
	for _, e := range edges {
		data := hands[e.slot]
		if e.start {
			a.logger.Debug("gesture start", "slot", e.slot, "label", e.label)
			a.bus.Publish(event.GestureStart{HandIndex: e.slot, Gesture: string(e.label)})
			a.registry.NotifyGestureStart(e.label, data, e.slot)
		} else {
			a.logger.Debug("gesture end", "slot", e.slot, "label", e.label)
			a.bus.Publish(event.GestureEnd{HandIndex: e.slot, Gesture: string(e.label)})
			a.registry.NotifyGestureEnd(e.label, data, e.slot)
		}
	}
}

// stabilize feeds one slot's observation to its stabilizer. Caller holds tick.
func (a *App) stabilize(slot int, obs detector.Observation) plugin.HandData {
	raw, score := obs.LabelScore()
	label := gesture.None
	if obs.Present() {
		label = gesture.NormalizeLabel(raw)
	} else {
		raw, score = "", 0
	}
	stable := a.stabilizers[slot].Update(label, score)
	return plugin.HandData{
		Landmarks:  obs.Landmarks,
		Gesture:    stable,
		RawLabel:   raw,
		Score:      score,
		Handedness: obs.Handedness,
	}
}

// shrink drops the state of slots at or above n after the hand cap was
// lowered. Caller holds tick.
func (a *App) shrink(n int) {
	for slot := n; slot < a.active; slot++ {
		a.stabilizers[slot].Reset()
		a.registry.ResetSlot(slot)
		a.logger.Debug("hand slot released", "slot", slot)
	}
	a.active = n
}

// resetSlots discards every slot's in-flight state and pending timers
// without emitting end events.
func (a *App) resetSlots() {
	a.tick.Lock()
	defer a.tick.Unlock()

	for slot, st := range a.stabilizers {
		st.Reset()
		a.registry.ResetSlot(slot)
	}
	a.pending = nil
	if a.assigner != nil {
		a.assigner.Reset()
	}
	if a.change != nil {
		a.change.Reset()
	}
	if a.synth != nil {
		a.synth.ReleaseAll()
	}

	a.mu.Lock()
	a.hands = nil
	a.lastBatch = nil
	a.mu.Unlock()
}

// RecordTiming feeds one frame's processing time to the performance monitor
// and, when adaptive quality is on, to the quality controller. Samples are
// held back until the monitor has measured a full second.
func (a *App) RecordTiming(frameMs float64) {
	a.monitor.Record(frameMs)
	if !a.cfg.Quality.Adaptive {
		return
	}
	fps := a.monitor.FPS()
	if fps == 0 {
		return
	}
	a.quality.Record(fps, frameMs)
}

// applySettings pushes changed quality settings to the capture device, the
// detector and the frame ticker, then persists them. Capture keeps running.
func (a *App) applySettings(s quality.Settings) {
	if a.camera != nil {
		a.camera.SetResolution(s.Width, s.Height)
		a.camera.SetFPS(s.MaxFrameRate)
	}
	a.reconfigureDetector(s)
	a.setRate(s.MaxFrameRate)

	if a.store != nil {
		if err := a.store.Settings().SetJSON(SettingsKey, s); err != nil {
			a.logger.Warn("could not persist quality settings", "error", err)
		}
	}
	a.logger.Info("quality settings applied", "settings", s.String())
}

func (a *App) reconfigureDetector(s quality.Settings) {
	r, ok := a.detector.(detector.Reconfigurer)
	if !ok {
		return
	}
	if err := r.Reconfigure(a.cfg.DetectorConfig(s)); err != nil {
		a.logger.Warn("detector reconfiguration failed", "error", err)
	}
}

// setRate hands the new frame rate to the pipeline, replacing any rate it
// has not picked up yet.
func (a *App) setRate(fps int) {
	select {
	case <-a.rate:
	default:
	}
	select {
	case a.rate <- fps:
	default:
	}
}

// Start opens the camera at the current quality settings and starts the
// pipeline goroutine. Starting a running App is a no-op.
func (a *App) Start(ctx context.Context) error {
	if a.camera == nil {
		return ErrNoCamera
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if a.cancel != nil {
		return nil
	}

	s := a.quality.Current()
	a.camera.SetResolution(s.Width, s.Height)
	a.camera.SetFPS(s.MaxFrameRate)
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	a.reconfigureDetector(s)

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.runPipeline(ctx, s.MaxFrameRate, a.done)

	a.logger.Info("detection pipeline started", "settings", s.String())
	return nil
}

// Running reports whether the pipeline goroutine is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cancel != nil
}

// Stop halts the pipeline, cancels every pending timer and drops in-flight
// gesture state without emitting end events. The App can be started again.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	a.resetSlots()

	if a.camera != nil && a.camera.IsOpen() {
		if err := a.camera.Close(); err != nil {
			a.logger.Warn("error closing camera", "error", err)
		}
	}
	if cancel != nil {
		a.logger.Info("detection pipeline stopped")
	}
}

// Close stops the pipeline and releases plugins, stabilizers and the
// detector. It is safe to call more than once.
func (a *App) Close() error {
	a.Stop()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	var errs []error
	if err := a.registry.Close(); err != nil {
		errs = append(errs, err)
	}
	a.tick.Lock()
	for _, st := range a.stabilizers {
		st.Close()
	}
	a.tick.Unlock()
	if a.change != nil {
		a.change.Close()
	}
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	return errors.Join(errs...)
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

// runPipeline reads, detects and processes one frame per tick until ctx is
// cancelled. The tick follows the quality frame-rate cap.
func (a *App) runPipeline(ctx context.Context, fps int, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fps := <-a.rate:
			ticker.Reset(frameInterval(fps))
			a.logger.Debug("frame rate changed", "fps", fps)
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			a.step()
		}
	}
}

// step processes a single camera frame.
func (a *App) step() {
	start := a.clock.Now()

	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.logger.Warn("frame read failed", "error", err)
		return
	}
	batch, err := a.detect(frame)
	frame.Close()
	if err != nil {
		// Treated as signal loss: every slot decays as if its hand left.
		a.logger.Warn("hand detection failed", "error", err)
	}

	a.ProcessFrame(batch)
	a.RecordTiming(float64(a.clock.Now().Sub(start)) / float64(time.Millisecond))
}

// detect runs the detector, or reuses the previous result when the frame is
// unchanged.
func (a *App) detect(frame *gocv.Mat) ([]detector.Observation, error) {
	if a.change != nil {
		changed, _ := a.change.Changed(frame)
		a.mu.RLock()
		last := a.lastBatch
		a.mu.RUnlock()
		if !changed && last != nil {
			return last, nil
		}
	}

	start := a.clock.Now()
	batch, err := a.detector.Detect(frame)
	if ms := float64(a.clock.Now().Sub(start)) / float64(time.Millisecond); a.monitor.OverWorkerBudget(ms) {
		a.logger.Debug("detection over budget", "ms", ms)
	}
	if batch == nil {
		batch = []detector.Observation{}
	}
	if err != nil {
		batch = nil
	}

	a.mu.Lock()
	a.lastBatch = batch
	a.mu.Unlock()
	return batch, err
}
