package probe

import "hivehyde/internal/types"

// Performance prefers the modern navigation-entry timing API and
// falls back to the legacy timing object when it is unavailable.
func (rt *Runtime) Performance() types.ProbeResult {
	p := rt.profile
	if !p.HasPerfTimingAPI {
		return types.Sentinel(types.ErrNoPerfAPI)
	}
	if p.PerfEntryReadFails {
		return types.Sentinel(types.ErrPerf)
	}

	if p.NavigationType != "" {
		return types.Ok(types.PerformanceResult{
			Type:         p.NavigationType,
			TransferSize: p.TransferSize,
			LoadTime:     p.LoadTimeMs,
		})
	}

	if p.HasLegacyTiming {
		return types.Ok(types.PerformanceResult{
			Type:         "legacy",
			TransferSize: -1,
			LoadTime:     float64(p.LegacyLoadEventEnd - p.LegacyNavigationStart),
		})
	}

	return types.Sentinel(types.ErrNoTiming)
}
