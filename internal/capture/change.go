package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	BlurKernel    = 21
	DiffThreshold = 25
)

// ChangeDetector reports whether a frame differs enough from the previous
// one to be worth running hand detection on again. It compares blurred
// grayscale frames and counts pixels whose difference passes DiffThreshold.
type ChangeDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewChangeDetector creates a detector that treats a frame as changed when
// more than threshold percent of its pixels differ.
func NewChangeDetector(threshold float64) *ChangeDetector {
	return &ChangeDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Changed compares frame with the previous frame and stores it as the new
// baseline. The first frame, and any frame whose size differs from the
// baseline, count as changed.
func (d *ChangeDetector) Changed(frame *gocv.Mat) (bool, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: BlurKernel, Y: BlurKernel}, 0, 0, gocv.BorderDefault)

	if !d.primed || blurred.Rows() != d.prev.Rows() || blurred.Cols() != d.prev.Cols() {
		d.swap(blurred)
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, d.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, DiffThreshold, 255, gocv.ThresholdBinary)

	percent := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100
	d.swap(blurred)
	return percent > d.threshold, percent
}

// swap replaces the baseline with next, taking ownership of it.
func (d *ChangeDetector) swap(next gocv.Mat) {
	d.prev.Close()
	d.prev = next
	d.primed = true
}

// Reset drops the baseline so the next frame counts as changed.
func (d *ChangeDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prev.Close()
	d.prev = gocv.NewMat()
	d.primed = false
}

// Close releases the baseline frame. The detector stays usable.
func (d *ChangeDetector) Close() {
	d.Reset()
}

// Threshold returns the change percentage threshold.
func (d *ChangeDetector) Threshold() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.threshold
}

// SetThreshold ignores values less than or equal to 0.
func (d *ChangeDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = threshold
}
