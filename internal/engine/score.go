package engine

import (
	"math"

	"hivehyde/internal/config"
	"hivehyde/internal/types"
)

// ScoreInput bundles everything the risk scorer needs out of one
// signing attempt's gathered probe results.
type ScoreInput struct {
	Anomaly       types.AnomalyResult
	Trajectory    types.TrajectoryResult
	TouchPoints   int
	ClickCount    int
	Performance   *types.PerformanceResult // nil when the probe sentineled
	SentinelCount int
}

// Score accumulates every weighted risk term and rounds and clamps the
// final value to [0, 100] in a single pass.
func Score(in ScoreInput, cfg *config.Config) int {
	w := cfg.Weight("anomaly_scan", 50)
	t := cfg.Weight("mouse_trajectory", 25)

	score := 0.0

	a := in.Anomaly
	if a.Webdriver {
		score += w
	}
	if a.WebdriverTampered {
		score += 1.2 * w
	}
	if a.ToStringTampered {
		score += 1.1 * w
	}
	if a.TruthyStackAnomaly() {
		score += 0.7 * w
	}
	if a.PermissionsDenied == "denied" {
		score += 5
	}

	points := in.Trajectory.Points
	analysis := in.Trajectory.Analysis
	switch {
	case len(points) == 0:
		score += 3
	case len(points) < 5:
		score += 2
	case analysis.IsStraightLine:
		if in.TouchPoints > 0 {
			score += t * 0.1
		} else {
			score += t * 0.7
		}
	case analysis.RegularityScore > 0.5:
		score += t * 0.5
	}

	switch {
	case in.ClickCount == 0:
		score += 1
	case in.ClickCount > 5 && len(points) > 20:
		score -= 5
	}

	if in.Performance != nil && in.Performance.TransferSize == 0 && in.Performance.Type == "navigate" {
		score -= 5
	}

	if in.SentinelCount > 2 {
		score += 2 * float64(in.SentinelCount)
	}

	rounded := math.Round(score)
	if rounded < 0 {
		rounded = 0
	}
	if rounded > 100 {
		rounded = 100
	}
	return int(rounded)
}
