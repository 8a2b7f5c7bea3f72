package probe

import (
	"math"
	"sync"

	"hivehyde/internal/types"
)

const (
	mouseMinSampleIntervalMs = 100
	mouseBufferCap           = 50
	trajectoryMinPoints      = 10
)

// MouseTracker is the single owner of the mouse buffer and click
// counter. Append, Drain, and IncrementClick are its only mutators;
// event-listener closures hold a reference to a *MouseTracker rather
// than reaching into module globals.
type MouseTracker struct {
	mu sync.Mutex

	x, y       float64
	lastT      int64
	hasLast    bool
	clickCount int
	buffer     []types.MouseSample
}

// NewMouseTracker returns an empty tracker.
func NewMouseTracker() *MouseTracker {
	return &MouseTracker{}
}

// OnMouseMove is the passive mousemove handler: it updates the
// current position and appends a sample to the buffer iff at least
// 100ms have elapsed since the last accepted sample and the buffer is
// under its 50-sample cap.
func (t *MouseTracker) OnMouseMove(x, y float64, nowMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.x, t.y, t.lastT = x, y, nowMs

	if t.hasLast && nowMs-t.lastAcceptedT() < mouseMinSampleIntervalMs {
		return
	}
	if len(t.buffer) >= mouseBufferCap {
		return
	}
	t.buffer = append(t.buffer, types.MouseSample{X: x, Y: y, T: nowMs})
	t.hasLast = true
}

func (t *MouseTracker) lastAcceptedT() int64 {
	if len(t.buffer) == 0 {
		return math.MinInt64
	}
	return t.buffer[len(t.buffer)-1].T
}

// OnClick increments the monotonic click counter.
func (t *MouseTracker) OnClick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clickCount++
}

// ClickCount returns the current click count without draining
// anything.
func (t *MouseTracker) ClickCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clickCount
}

// Drain snapshots and empties the trajectory buffer in one atomic
// step so a concurrent OnMouseMove never observes a torn read. The
// click counter is not reset — it is monotonic for the life of the
// page.
func (t *MouseTracker) Drain() []types.MouseSample {
	t.mu.Lock()
	defer t.mu.Unlock()
	points := t.buffer
	t.buffer = nil
	t.hasLast = false
	return points
}

// Trajectory drains the buffer and returns the points plus their
// analysis. It never errors: an empty or small buffer degrades to the
// floor analysis.
func (rt *Runtime) Trajectory() types.ProbeResult {
	points := rt.tracker.Drain()
	return types.Ok(types.TrajectoryResult{
		Points:   points,
		Analysis: AnalyzeTrajectory(points),
	})
}

// AnalyzeTrajectory scores a drained sample buffer for inter-sample
// timing regularity and straight-line movement.
func AnalyzeTrajectory(points []types.MouseSample) types.TrajectoryAnalysis {
	if len(points) < trajectoryMinPoints {
		return types.TrajectoryAnalysis{RegularityScore: 0, IsStraightLine: false}
	}

	score := 0.0

	// Inter-sample interval regularity.
	intervals := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		intervals = append(intervals, float64(points[i].T-points[i-1].T))
	}
	mean := meanOf(intervals)
	sigma := stddevOf(intervals, mean)
	if sigma < 10 {
		score += 0.8
	}

	// Per-segment slope consistency, skipping stationary segments and
	// treating vertical segments as +Inf slope.
	var slopes []float64
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y
		if dx == 0 && dy == 0 {
			continue
		}
		if dx == 0 {
			slopes = append(slopes, math.Inf(1))
			continue
		}
		slopes = append(slopes, dy/dx)
	}

	isStraight := false
	if len(slopes) >= 2 {
		consistent := 0
		for i := 1; i < len(slopes); i++ {
			if slopeDiff(slopes[i-1], slopes[i]) < 0.1 {
				consistent++
			}
		}
		ratio := float64(consistent) / float64(len(slopes)-1)
		if ratio > 0.8 {
			isStraight = true
			score += 1.0
		}
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return types.TrajectoryAnalysis{RegularityScore: score, IsStraightLine: isStraight}
}

func slopeDiff(a, b float64) float64 {
	if math.IsInf(a, 1) && math.IsInf(b, 1) {
		return 0
	}
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return math.Inf(1)
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddevOf(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}
