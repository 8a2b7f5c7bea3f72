package engine

import "hivehyde/internal/types"

// stringField pulls a named string field off a probe's success value
// via a small per-probe accessor map, falling back to na when the
// probe sentineled or the field can't be read. Kept generic over the
// two callers (platform.platform, webgl.renderer) that need it.
func stringField(results map[string]types.ProbeResult, probeName, field, na string) string {
	r, ok := results[probeName]
	if !ok || r.IsError() {
		return na
	}
	switch probeName {
	case "platform":
		if p, ok := r.Value.(types.PlatformResult); ok && field == "platform" {
			return p.Platform
		}
	case "webgl":
		if w, ok := r.Value.(types.WebGLResult); ok && field == "renderer" {
			return w.Renderer
		}
	}
	return na
}

// audioField returns the audio probe's raw value verbatim — either its
// decimal-string sum or its sentinel string.
func audioField(results map[string]types.ProbeResult) string {
	res, ok := results["audio"]
	if !ok {
		return "N/A"
	}
	if res.IsError() {
		return res.Err
	}
	if s, ok := res.Value.(string); ok {
		return s
	}
	return "N/A"
}

func countSentinels(results map[string]types.ProbeResult) int {
	n := 0
	for _, r := range results {
		if r.IsError() {
			n++
		}
	}
	return n
}

func trajectoryOf(results map[string]types.ProbeResult) types.TrajectoryResult {
	r, ok := results["mouse_trajectory"]
	if !ok || r.IsError() {
		return types.TrajectoryResult{}
	}
	if t, ok := r.Value.(types.TrajectoryResult); ok {
		return t
	}
	return types.TrajectoryResult{}
}

func clickCountOf(results map[string]types.ProbeResult) int {
	r, ok := results["platform"]
	if !ok || r.IsError() {
		return 0
	}
	if p, ok := r.Value.(types.PlatformResult); ok {
		return p.ClickCount
	}
	return 0
}

func performanceOf(results map[string]types.ProbeResult) *types.PerformanceResult {
	r, ok := results["performance"]
	if !ok || r.IsError() {
		return nil
	}
	if p, ok := r.Value.(types.PerformanceResult); ok {
		return &p
	}
	return nil
}

func anomalyOf(results map[string]types.ProbeResult) types.AnomalyResult {
	r, ok := results["anomaly_scan"]
	if !ok || r.IsError() {
		return types.AnomalyResult{}
	}
	if a, ok := r.Value.(types.AnomalyResult); ok {
		return a
	}
	return types.AnomalyResult{}
}
