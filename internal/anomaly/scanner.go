// Package anomaly implements the Anomaly Scanner: the six-probe bundle
// that inspects the navigator/chrome/Notification shim for automation
// tells and feeds a risk-score bonus to the Risk & Signing Engine.
package anomaly

import (
	"hivehyde/internal/probe"
	"hivehyde/internal/types"
)

// Scanner runs the anomaly bundle against a probe.Runtime. It holds no
// state of its own: every check is a pure read of the runtime's
// navigator shim and host profile.
type Scanner struct{}

// New returns a ready Scanner.
func New() *Scanner {
	return &Scanner{}
}

// Scan implements probe.AnomalyScanner, satisfying the Fabric's
// "anomaly_scan" collector.
func (s *Scanner) Scan(rt *probe.Runtime) types.AnomalyResult {
	return types.AnomalyResult{
		Webdriver:         rt.DetectWebdriver(),
		WebdriverTampered: rt.WebdriverTamperedSignal(),
		HeadlessChrome:    rt.HeadlessChromeSignal(),
		ToStringTampered:  rt.ToStringTampered(),
		StackAnomaly:      rt.StackAnomaly(),
		PermissionsDenied: rt.QueryPermissionsState(),
	}
}
