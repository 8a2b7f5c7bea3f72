package probe

import (
	"testing"

	"hivehyde/internal/types"
)

func TestCapabilitiesDerivedFromProfile(t *testing.T) {
	profile := HostProfile{
		Platform: "Win32", ScreenWidth: 800, ScreenHeight: 600,
		HasCanvas2D: true, HasWebGL: true, HasOfflineAudio: true, HasPerfTimingAPI: true,
	}
	rt, err := New(profile, NewMouseTracker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	got := rt.Capabilities()
	want := types.CapabilitySnapshot{
		HasScreen: true, HasNavigator: true, HasCanvas2D: true,
		HasOfflineAudio: true, HasWebGL: true, HasPerfTimingAPI: true,
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCanvasDeterministic(t *testing.T) {
	rt, err := New(HostProfile{HasCanvas2D: true}, NewMouseTracker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r1 := rt.Canvas()
	r2 := rt.Canvas()
	if r1.IsError() || r2.IsError() {
		t.Fatalf("unexpected sentinel: %v / %v", r1.Err, r2.Err)
	}
	if r1.Value != r2.Value {
		t.Fatal("canvas probe is not deterministic across calls")
	}
}

func TestWebGLPrefersUnmasked(t *testing.T) {
	rt, err := New(HostProfile{
		HasWebGL: true, HasUnmaskedRendererExt: true,
		WebGLVendor: "Real Vendor", WebGLRenderer: "Real Renderer",
		WebGLVendorMasked: "Masked", WebGLRendererMasked: "Masked",
	}, NewMouseTracker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := rt.WebGL()
	got := r.Value.(types.WebGLResult)
	if got.Vendor != "Real Vendor" || got.Renderer != "Real Renderer" {
		t.Fatalf("got %+v", got)
	}
}

func TestWebGLSentinelWhenUnavailable(t *testing.T) {
	rt, err := New(HostProfile{HasWebGL: false}, NewMouseTracker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := rt.WebGL(); got.Err != types.ErrNoWebGL {
		t.Fatalf("got %q, want %q", got.Err, types.ErrNoWebGL)
	}
}

func TestAudioSumsWindow(t *testing.T) {
	rt, err := New(HostProfile{
		HasOfflineAudio: true,
		AudioSampleFn: func() []float64 {
			samples := make([]float64, 5000)
			for i := audioSumStart; i < audioSumEnd; i++ {
				samples[i] = 1
			}
			return samples
		},
	}, NewMouseTracker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := rt.Audio()
	if r.IsError() {
		t.Fatalf("unexpected sentinel: %v", r.Err)
	}
	if r.Value.(string) != "500" {
		t.Fatalf("got %v, want 500", r.Value)
	}
}

func TestAudioSentinelWhenContextConstructFails(t *testing.T) {
	rt, err := New(HostProfile{
		HasOfflineAudio: true, AudioContextConstructFails: true,
	}, NewMouseTracker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := rt.Audio(); got.Err != types.ErrAudioContext {
		t.Fatalf("got %q, want %q", got.Err, types.ErrAudioContext)
	}
}

func TestPerformanceSentinelWhenEntryReadFails(t *testing.T) {
	rt, err := New(HostProfile{
		HasPerfTimingAPI: true, PerfEntryReadFails: true,
		NavigationType: "navigate",
	}, NewMouseTracker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := rt.Performance(); got.Err != types.ErrPerf {
		t.Fatalf("got %q, want %q", got.Err, types.ErrPerf)
	}
}

func TestPerformanceLegacyFallback(t *testing.T) {
	rt, err := New(HostProfile{
		HasPerfTimingAPI: true, HasLegacyTiming: true,
		LegacyLoadEventEnd: 1500, LegacyNavigationStart: 1000,
	}, NewMouseTracker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := rt.Performance()
	got := r.Value.(types.PerformanceResult)
	if got.Type != "legacy" || got.TransferSize != -1 || got.LoadTime != 500 {
		t.Fatalf("got %+v", got)
	}
}

func TestTrajectoryStraightLine(t *testing.T) {
	// 20 points on y=x sampled every 100ms exactly.
	points := make([]types.MouseSample, 20)
	for i := range points {
		t := int64(i * 100)
		points[i] = types.MouseSample{X: float64(i), Y: float64(i), T: t}
	}
	analysis := AnalyzeTrajectory(points)
	if !analysis.IsStraightLine {
		t.Fatal("expected is_straight_line=true")
	}
	if analysis.RegularityScore != 1.0 {
		t.Fatalf("regularity_score = %v, want 1.0", analysis.RegularityScore)
	}
}

func TestTrajectoryFewPointsFloor(t *testing.T) {
	points := make([]types.MouseSample, 5)
	analysis := AnalyzeTrajectory(points)
	if analysis.IsStraightLine || analysis.RegularityScore != 0 {
		t.Fatalf("got %+v, want the floor analysis", analysis)
	}
}

func TestMouseTrackerRespectsMinInterval(t *testing.T) {
	tr := NewMouseTracker()
	tr.OnMouseMove(0, 0, 0)
	tr.OnMouseMove(1, 1, 50) // too soon, dropped
	tr.OnMouseMove(2, 2, 150)
	points := tr.Drain()
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
}

func TestMouseTrackerBufferCap(t *testing.T) {
	tr := NewMouseTracker()
	for i := 0; i < 100; i++ {
		tr.OnMouseMove(float64(i), float64(i), int64(i*100))
	}
	points := tr.Drain()
	if len(points) != mouseBufferCap {
		t.Fatalf("got %d points, want %d", len(points), mouseBufferCap)
	}
}
