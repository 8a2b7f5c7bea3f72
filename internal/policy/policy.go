// Package policy implements the Capability & Policy Scheduler: a
// deterministic, pure function from a capability snapshot to the probe
// collector list and weight map, run once at Initialize.
package policy

import (
	"hivehyde/internal/config"
	"hivehyde/internal/types"
)

// alwaysOn are the probes included regardless of capability.
var alwaysOn = []string{"platform", "screen", "language", "plugins", "mouse_trajectory", "anomaly_scan"}

// Build constructs the Policy from a capability snapshot and the
// deployment's weight overrides. Equal snapshots and equal configs
// always yield an equal Policy (Testable Property 1) — Build reads no
// state beyond its two arguments.
func Build(snap types.CapabilitySnapshot, cfg *config.Config) types.Policy {
	collectors := append([]string{}, alwaysOn...)
	weights := map[string]float64{
		"plugins":          cfg.Weight("plugins", 5),
		"mouse_trajectory": cfg.Weight("mouse_trajectory", 25),
		"anomaly_scan":     cfg.Weight("anomaly_scan", 50),
	}

	if snap.HasCanvas2D {
		collectors = append(collectors, "canvas")
		weights["canvas"] = cfg.Weight("canvas", 15)
	}
	if snap.HasWebGL {
		collectors = append(collectors, "webgl")
		weights["webgl"] = cfg.Weight("webgl", 15)
	}
	if snap.HasOfflineAudio && !snap.IsIOSFamily {
		collectors = append(collectors, "audio")
		weights["audio"] = cfg.Weight("audio", 20)
	}
	if snap.HasPerfTimingAPI {
		collectors = append(collectors, "performance")
		weights["performance"] = cfg.Weight("performance", 5)
	}

	return types.Policy{Collectors: collectors, Weights: weights}
}
