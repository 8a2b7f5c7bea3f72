package engine

import (
	"strings"
	"testing"

	"hivehyde/internal/config"
	"hivehyde/internal/types"
)

func TestCanonicalGETParams(t *testing.T) {
	cases := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"empty", nil, ""},
		{"single", map[string]string{"a": "1"}, "a=1"},
		{"sorted", map[string]string{"b": "2", "a": "1"}, "a=1&b=2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanonicalGETParams(tc.params); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCanonicalGETParamsStableUnderPermutation(t *testing.T) {
	a := map[string]string{"z": "1", "a": "2", "m": "3"}
	b := map[string]string{"m": "3", "z": "1", "a": "2"}
	if CanonicalGETParams(a) != CanonicalGETParams(b) {
		t.Fatal("serialization is not stable under key re-permutation")
	}
}

func TestCanonicalBodyParams(t *testing.T) {
	if got := CanonicalBodyParams(nil); got != "{}" {
		t.Fatalf("empty body: got %q", got)
	}
	got := CanonicalBodyParams(map[string]any{"b": 2, "a": 1})
	if got != `{"a":1,"b":2}` {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalJSONShuffleInvariant(t *testing.T) {
	a := map[string]any{"z": 1, "a": map[string]any{"y": 2, "b": 3}}
	b := map[string]any{"a": map[string]any{"b": 3, "y": 2}, "z": 1}
	if CanonicalJSON(a) != CanonicalJSON(b) {
		t.Fatal("canonical JSON differs under key shuffle")
	}
}

func TestAESRoundTrip(t *testing.T) {
	key := strings.Repeat("ab", 32)
	plaintext := `{"platform":"Win32","renderer":"N/A","audio":"12345.6789"}`

	ciphertext, err := EncryptFingerprint(key, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := DecryptFingerprint(key, ciphertext)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != plaintext {
		t.Fatalf("got %q, want %q", got, plaintext)
	}
}

func TestSignRecordDeterministic(t *testing.T) {
	key := strings.Repeat("cd", 32)
	record := "1700000000000||nonce||GET||/api/ping||||0||{}"

	s1, err := SignRecord(key, record)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := SignRecord(key, record)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatalf("signature not deterministic: %q vs %q", s1, s2)
	}
}

func TestComposeRecordEmptyGET(t *testing.T) {
	rawFp := `{"platform":"N/A","renderer":"N/A","audio":"err_no_offline_context"}`
	got := ComposeRecord(1700000000000, "1700000000000-abcd1234", "get", "/api/ping", "", 0, rawFp)
	want := "1700000000000||1700000000000-abcd1234||GET||/api/ping||||0||" + rawFp
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestScoreClampedAndRounded(t *testing.T) {
	cfg := config.DefaultConfig()
	in := ScoreInput{
		Anomaly: types.AnomalyResult{
			Webdriver:         true,
			WebdriverTampered: true,
			ToStringTampered:  true,
			StackAnomaly:      "contains_keyword",
			PermissionsDenied: "denied",
		},
		SentinelCount: 5,
	}
	got := Score(in, cfg)
	if got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
}

func TestScoreTouchDeviceSoftening(t *testing.T) {
	cfg := config.DefaultConfig()
	straight := types.TrajectoryResult{
		Points:   make([]types.MouseSample, 20),
		Analysis: types.TrajectoryAnalysis{IsStraightLine: true, RegularityScore: 1.0},
	}

	touch := Score(ScoreInput{Trajectory: straight, TouchPoints: 5, ClickCount: 1}, cfg)
	mouse := Score(ScoreInput{Trajectory: straight, TouchPoints: 0, ClickCount: 1}, cfg)

	if touch >= mouse {
		t.Fatalf("touch-device score %d should be less than mouse-device score %d", touch, mouse)
	}
	if touch != 3 { // T*0.1 = 2.5, rounds to 3 (banker's? math.Round(2.5)=3)
		t.Fatalf("touch score = %d, want 3", touch)
	}
}

func TestScoreCachedNavigationDiscount(t *testing.T) {
	cfg := config.DefaultConfig()
	perf := types.PerformanceResult{Type: "navigate", TransferSize: 0}
	got := Score(ScoreInput{ClickCount: 1, Performance: &perf}, cfg)
	if got != 0 {
		t.Fatalf("got %d, want 0 (clamped)", got)
	}
}
