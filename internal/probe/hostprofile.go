package probe

// HostProfile carries the raw environment facts a Go process cannot
// itself observe without a real browser: GPU strings, screen geometry,
// audio hardware behavior, navigator quirks. Production callers fill
// this in from whatever browser-hosting layer they embed HiveHyde-Anti
// behind (e.g. a headless-Chrome harvester); tests construct it by
// hand to exercise every capability combination and every sentinel
// path deterministically.
type HostProfile struct {
	// Navigator / platform.
	Platform    string
	Plugins     []string
	Language    string
	TouchPoints int
	UserAgent   string
	IsIOSFamily bool

	// Screen.
	ScreenWidth, ScreenHeight, ScreenDepth int

	// WebGL.
	HasWebGL              bool
	HasUnmaskedRendererExt bool
	WebGLVendor           string
	WebGLRenderer         string
	WebGLVendorMasked     string
	WebGLRendererMasked   string

	// Canvas 2D.
	HasCanvas2D bool

	// Offline audio.
	HasOfflineAudio bool
	// AudioContextConstructFails simulates the constructor itself
	// throwing (autoplay-policy rejection, exhausted audio worklets)
	// even though the API is present — distinct from HasOfflineAudio
	// false, which means the API was never exposed at all.
	AudioContextConstructFails bool
	// AudioSampleFn renders the 1s/44100Hz/2-channel offline graph and
	// returns channel-0 samples. Nil uses a deterministic synthetic
	// triangle-wave + compressor approximation (renderTriangleCompressed).
	AudioSampleFn func() []float64

	// Performance.
	HasPerfTimingAPI bool
	// PerfEntryReadFails simulates the timing entry itself throwing or
	// returning a malformed record on access, even though the API is
	// present — distinct from HasPerfTimingAPI false (API absent
	// entirely) and from the plain no-entry-found fallthrough to
	// legacy timing.
	PerfEntryReadFails bool
	NavigationType     string // "navigate", "reload", "back_forward", ""
	TransferSize       int64
	LoadTimeMs         float64
	HasLegacyTiming    bool
	LegacyLoadEventEnd     int64
	LegacyNavigationStart  int64

	// Device motion (capability only; no probe reads its values).
	HasDeviceMotion bool

	// Anomaly-scanner surface.
	Webdriver             bool
	WebdriverDescriptor   bool // property descriptor present
	WebdriverConfigurable bool // and configurable, if present
	HasChromeRuntime      bool
	HasChromeCSI          bool
	NativeToStringTampered bool
	UserToStringTampered   bool
	StackFrames            []string // simulated Error().stack frames, top-first
	NotificationsPermission string  // "granted", "denied", "prompt", ""(no API)
	LegacyNotificationPermission string
	HasPermissionsAPI       bool
	HasNotificationAPI      bool
	PermissionsQueryErrors  bool
}
