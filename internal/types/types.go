// Package types holds the data model shared by every HiveHyde-Anti
// subsystem: the session, the policy, capability snapshots, probe
// results, mouse state, and the signature package emitted by the engine.
package types

import "time"

// Session is the server-issued secret bound to one signing window.
//
// Invariant: a non-empty Key implies a non-empty Token and a positive
// ExpiresAt. It is mutated only by a successful fetch/refresh and is
// cleared to the zero value on any fetch failure; never persisted
// beyond process memory.
type Session struct {
	Key             string
	Token           string
	AcquiredAt      int64
	ExpiresAt       int64
	LifespanMs      int64
	RefreshBufferMs int64
}

// DefaultLifespanMs is the session lifetime: 30 minutes.
const DefaultLifespanMs = 30 * 60 * 1000

// DefaultRefreshBufferMs is how early a refresh is attempted: 2 minutes.
const DefaultRefreshBufferMs = 2 * 60 * 1000

// Valid reports whether the session currently holds usable material.
func (s Session) Valid() bool {
	return s.Key != "" && s.Token != "" && s.ExpiresAt > 0
}

// NeedsRefresh reports whether now has entered the session's refresh
// window.
func (s Session) NeedsRefresh(nowMs int64) bool {
	return s.Valid() && nowMs >= s.ExpiresAt-s.RefreshBufferMs
}

// Policy is the immutable probe list and weight map chosen once from the
// capability snapshot at init.
type Policy struct {
	Collectors []string
	Weights    map[string]float64
}

// CapabilitySnapshot is the set of boolean host-capability flags the
// policy scheduler derives once at init.
type CapabilitySnapshot struct {
	HasScreen        bool
	HasNavigator     bool
	HasCanvas2D      bool
	HasOfflineAudio  bool
	HasWebGL         bool
	HasPerfTimingAPI bool
	HasDeviceMotion  bool
	IsIOSFamily      bool
}

// Sentinel probe error strings. These are the closed set the risk scorer
// pattern-matches; no probe is allowed to throw out of the fabric, it
// returns one of these instead.
const (
	ErrCanvas           = "err_canvas"
	ErrNoWebGL          = "err_no_webgl"
	ErrWebGL            = "err_webgl"
	ErrNoOfflineContext = "err_no_offline_context"
	ErrAudioRender      = "err_audio_render"
	ErrAudioContext     = "err_audio_context"
	ErrPlatform         = "err_platform"
	ErrScreen           = "err_screen"
	ErrNoPerfAPI        = "err_no_perf_api"
	ErrNoTiming         = "err_no_timing"
	ErrPerf             = "err_perf"
)

// sentinelErrors is the closed set tested by IsSentinel.
var sentinelErrors = map[string]struct{}{
	ErrCanvas:           {},
	ErrNoWebGL:          {},
	ErrWebGL:            {},
	ErrNoOfflineContext: {},
	ErrAudioRender:      {},
	ErrAudioContext:     {},
	ErrPlatform:         {},
	ErrScreen:           {},
	ErrNoPerfAPI:        {},
	ErrNoTiming:         {},
	ErrPerf:             {},
}

// IsSentinel reports whether s is one of the closed-set probe sentinel
// error strings.
func IsSentinel(s string) bool {
	_, ok := sentinelErrors[s]
	return ok
}

// ProbeResult is either a well-formed probe value or a sentinel error
// string. Exactly one of Err or Value is meaningful; IsError reports
// which.
type ProbeResult struct {
	Value any
	Err   string
}

// IsError reports whether this result is a sentinel error.
func (r ProbeResult) IsError() bool { return r.Err != "" }

// Ok wraps a successful probe value.
func Ok(v any) ProbeResult { return ProbeResult{Value: v} }

// Sentinel wraps one of the closed-set sentinel error strings.
func Sentinel(s string) ProbeResult { return ProbeResult{Err: s} }

// MouseSample is one accepted trajectory sample.
type MouseSample struct {
	X, Y float64
	T    int64
}

// MouseState is the single mutable record of current pointer position,
// click count, and a bounded trajectory buffer.
//
// Invariant: samples are appended only when >=100ms have elapsed since
// the last accepted sample; ClickCount is monotonic; the buffer never
// exceeds 50 samples and is drained only by the trajectory probe.
type MouseState struct {
	X, Y       float64
	T          int64
	ClickCount int
}

// TrajectoryAnalysis is the derived shape of one drained trajectory
// buffer.
type TrajectoryAnalysis struct {
	RegularityScore float64 `json:"regularity_score"`
	IsStraightLine  bool    `json:"is_straight_line"`
}

// TrajectoryResult is the probe value for the "mouse_trajectory" probe.
type TrajectoryResult struct {
	Points   []MouseSample       `json:"points"`
	Analysis TrajectoryAnalysis `json:"analysis"`
}

// PlatformResult is the "platform" probe value.
type PlatformResult struct {
	Platform    string `json:"platform"`
	Plugins     string `json:"plugins"`
	TouchPoints int    `json:"touchPoints"`
	ClickCount  int    `json:"clickCount"`
}

// ScreenResult is the "screen" probe value.
type ScreenResult struct {
	Screen   string `json:"screen"`
	Language string `json:"language"`
}

// WebGLResult is the "webgl" probe value.
type WebGLResult struct {
	Vendor   string `json:"vendor"`
	Renderer string `json:"renderer"`
}

// PerformanceResult is the "performance" probe value.
type PerformanceResult struct {
	Type         string  `json:"type"`
	TransferSize int64   `json:"transferSize"`
	LoadTime     float64 `json:"loadTime"`
}

// AnomalyResult is the anomaly scanner's output bundle.
type AnomalyResult struct {
	Webdriver         bool   `json:"webdriver"`
	WebdriverTampered bool   `json:"webdriver_tampered"`
	HeadlessChrome    bool   `json:"headless_chrome"`
	ToStringTampered  bool   `json:"tostring_tampered"`
	StackAnomaly      string `json:"stack_anomaly"`      // "", "no_stack", "contains_keyword", "stack_too_short"
	PermissionsDenied string `json:"permissions_denied"` // "", "denied", "no_permissions_api", "permissions_error"
}

// TruthyStackAnomaly reports whether StackAnomaly holds any non-empty
// (i.e. truthy) value.
func (a AnomalyResult) TruthyStackAnomaly() bool { return a.StackAnomaly != "" }

// SignaturePackage is the engine's output, injected onto the outbound
// request as the transport header bundle.
type SignaturePackage struct {
	Signature              string
	Timestamp              int64
	Nonce                  string
	RiskScore              int
	Token                  string
	FingerprintJSONForSign string // base64 AES ciphertext
}

// Now returns the current time in epoch milliseconds. Centralized so
// callers never hand-roll the conversion differently.
func Now() int64 {
	return time.Now().UnixMilli()
}
