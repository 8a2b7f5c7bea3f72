package policy

import (
	"reflect"
	"sort"
	"testing"

	"hivehyde/internal/config"
	"hivehyde/internal/types"
)

func TestBuildIsPureFunctionOfSnapshot(t *testing.T) {
	cfg := config.DefaultConfig()
	snap := types.CapabilitySnapshot{HasCanvas2D: true, HasWebGL: true, HasOfflineAudio: true, HasPerfTimingAPI: true}

	p1 := Build(snap, cfg)
	p2 := Build(snap, cfg)
	if !reflect.DeepEqual(p1, p2) {
		t.Fatal("equal snapshots produced unequal policies")
	}
}

func TestBuildConditionalCollectors(t *testing.T) {
	cfg := config.DefaultConfig()

	bare := Build(types.CapabilitySnapshot{}, cfg)
	wantBare := []string{"anomaly_scan", "language", "mouse_trajectory", "platform", "plugins", "screen"}
	if got := sortedCopy(bare.Collectors); !reflect.DeepEqual(got, wantBare) {
		t.Fatalf("bare collectors = %v, want %v", got, wantBare)
	}

	full := Build(types.CapabilitySnapshot{
		HasCanvas2D: true, HasWebGL: true, HasOfflineAudio: true, HasPerfTimingAPI: true,
	}, cfg)
	for _, name := range []string{"canvas", "webgl", "audio", "performance"} {
		if !contains(full.Collectors, name) {
			t.Fatalf("expected %q in full-capability collector list %v", name, full.Collectors)
		}
	}
}

func TestBuildExcludesAudioOnIOS(t *testing.T) {
	cfg := config.DefaultConfig()
	snap := types.CapabilitySnapshot{HasOfflineAudio: true, IsIOSFamily: true}
	p := Build(snap, cfg)
	if contains(p.Collectors, "audio") {
		t.Fatal("expected audio to be excluded for an iOS-family host")
	}
}

func TestBuildWeightsUseConfigOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Weights["canvas"] = 99
	p := Build(types.CapabilitySnapshot{HasCanvas2D: true}, cfg)
	if p.Weights["canvas"] != 99 {
		t.Fatalf("canvas weight = %v, want 99", p.Weights["canvas"])
	}
}

func sortedCopy(xs []string) []string {
	out := append([]string{}, xs...)
	sort.Strings(out)
	return out
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
