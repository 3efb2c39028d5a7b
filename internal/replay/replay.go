// Package replay records detector output as JSON lines and plays recorded
// sessions back through a frame sink on a manual clock.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/detector"
)

// ErrOutOfOrder is returned when a recorded frame's offset is earlier than
// the previous frame's.
var ErrOutOfOrder = errors.New("frame offset out of order")

// maxLine bounds one recorded frame. Two hands of landmarks fit easily.
const maxLine = 1 << 20

// Frame is one recorded detection batch.
type Frame struct {
	// Offset is the time since the first recorded frame.
	Offset time.Duration
	Hands  []detector.Observation
}

type frameJSON struct {
	OffsetMs float64                `json:"t"`
	Hands    []detector.Observation `json:"hands"`
}

// MarshalJSON encodes the offset in milliseconds.
func (f Frame) MarshalJSON() ([]byte, error) {
	hands := f.Hands
	if hands == nil {
		hands = []detector.Observation{}
	}
	return json.Marshal(frameJSON{OffsetMs: float64(f.Offset) / float64(time.Millisecond), Hands: hands})
}

// UnmarshalJSON decodes a millisecond offset.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var raw frameJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.OffsetMs < 0 {
		return fmt.Errorf("negative offset %v", raw.OffsetMs)
	}
	f.Offset = time.Duration(raw.OffsetMs * float64(time.Millisecond))
	f.Hands = raw.Hands
	return nil
}

// Reader reads recorded frames one line at a time. Blank lines and lines
// starting with '#' are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	last    time.Duration
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLine)
	return &Reader{scanner: s}
}

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() (Frame, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var f Frame
		if err := json.Unmarshal([]byte(text), &f); err != nil {
			return Frame{}, fmt.Errorf("line %d: decode frame: %w", r.line, err)
		}
		if f.Offset < r.last {
			return Frame{}, fmt.Errorf("line %d: %w: %s after %s", r.line, ErrOutOfOrder, f.Offset, r.last)
		}
		r.last = f.Offset
		return f, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Frame{}, fmt.Errorf("read session: %w", err)
	}
	return Frame{}, io.EOF
}

// Writer appends frames stamped relative to the first write.
type Writer struct {
	mu    sync.Mutex
	enc   *json.Encoder
	clock clock.Clock
	start time.Time
	count int
}

// NewWriter creates a Writer on w. A nil clock uses the real clock.
func NewWriter(w io.Writer, clk clock.Clock) *Writer {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Writer{enc: json.NewEncoder(w), clock: clk}
}

// Write records one batch.
func (w *Writer) Write(hands []detector.Observation) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	if w.count == 0 {
		w.start = now
	}
	if err := w.enc.Encode(Frame{Offset: now.Sub(w.start), Hands: hands}); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of frames written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// RecordingDetector records every successful detection of the wrapped
// detector. A failing writer never costs the pipeline its observations.
type RecordingDetector struct {
	detector.Detector
	w      *Writer
	logger *slog.Logger

	mu      sync.Mutex
	failing bool
}

// Record wraps d so that its batches are written to w. Write failures are
// logged to logger; a nil logger uses slog.Default().
func Record(d detector.Detector, w *Writer, logger *slog.Logger) *RecordingDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordingDetector{Detector: d, w: w, logger: logger}
}

// Detect delegates to the wrapped detector and records the result. Only
// detection errors are returned; the first write failure of a run is
// logged as a warning and the observations are passed through.
func (r *RecordingDetector) Detect(frame *gocv.Mat) ([]detector.Observation, error) {
	hands, err := r.Detector.Detect(frame)
	if err != nil {
		return nil, err
	}

	werr := r.w.Write(hands)
	r.mu.Lock()
	switch {
	case werr != nil && !r.failing:
		r.logger.Warn("session recording failed", "error", werr)
	case werr != nil:
		r.logger.Debug("session recording failed", "error", werr)
	case r.failing:
		r.logger.Info("session recording resumed")
	}
	r.failing = werr != nil
	r.mu.Unlock()
	return hands, nil
}

// Reconfigure forwards to the wrapped detector when it supports it.
func (r *RecordingDetector) Reconfigure(cfg detector.Config) error {
	if rc, ok := r.Detector.(detector.Reconfigurer); ok {
		return rc.Reconfigure(cfg)
	}
	return nil
}

// Play feeds every frame from r to sink, advancing clk to each frame's
// offset first so that timers scheduled by earlier frames fire in order.
// It returns the number of frames played.
func Play(ctx context.Context, r *Reader, clk *clock.Mock, sink func([]detector.Observation)) (int, error) {
	var (
		n       int
		elapsed time.Duration
	)
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}

		if d := f.Offset - elapsed; d > 0 {
			clk.Advance(d)
			elapsed = f.Offset
		}
		sink(f.Hands)
		n++
	}
}
