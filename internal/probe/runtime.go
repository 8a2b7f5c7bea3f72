// Package probe implements the Probe Fabric ("Data Loom"):
// canvas/WebGL/audio/platform/screen/performance fingerprints, the
// mouse listener and trajectory analyzer, and capability detection,
// dispatched by probe name.
//
// Production code has no DOM to read, so every probe that needs one
// (canvas, WebGL, audio, the anomaly scanner's navigator/toString/stack
// checks) runs the literal browser JS inside an embedded ECMAScript VM
// (github.com/dop251/goja) bound to a small navigator/canvas/WebGL/
// audio shim built from a HostProfile, rather than a live browser.
package probe

import (
	"fmt"

	"github.com/dop251/goja"

	"hivehyde/internal/hlog"
	"hivehyde/internal/types"
)

// Probe name constants — the closed set the policy scheduler selects
// from and the fabric dispatches by.
const (
	NameCanvas     = "canvas"
	NameWebGL      = "webgl"
	NameAudio      = "audio"
	NamePlatform   = "platform"
	NameScreen     = "screen"
	NameLanguage   = "language"
	NamePlugins    = "plugins"
	NamePerf       = "performance"
	NameTrajectory = "mouse_trajectory"
	NameAnomaly    = "anomaly_scan"
)

// Runtime is the environment every probe collector runs against. One
// Runtime is built once (at Initialize) from the host's capability
// profile and is safe for concurrent use by the fabric's gather.
type Runtime struct {
	profile HostProfile
	tracker *MouseTracker
	log     *hlog.Logger

	vm *goja.Runtime
}

// New builds a Runtime over the given host profile. tracker owns the
// mouse buffer and click counter as a single type rather than loose
// package state; log is the level-gated logger.
func New(profile HostProfile, tracker *MouseTracker, log *hlog.Logger) (*Runtime, error) {
	if log == nil {
		log = hlog.Nop()
	}
	rt := &Runtime{profile: profile, tracker: tracker, log: log, vm: goja.New()}
	if err := rt.bindEnvironment(); err != nil {
		return nil, fmt.Errorf("probe: binding JS environment: %w", err)
	}
	return rt, nil
}

// Capabilities derives the CapabilitySnapshot from the host profile.
// It is a pure read of rt.profile, so equal profiles always yield equal
// snapshots (Testable Property 1, via policy.Build downstream).
func (rt *Runtime) Capabilities() types.CapabilitySnapshot {
	p := rt.profile
	return types.CapabilitySnapshot{
		HasScreen:        p.ScreenWidth > 0 && p.ScreenHeight > 0,
		HasNavigator:     p.Platform != "",
		HasCanvas2D:      p.HasCanvas2D,
		HasOfflineAudio:  p.HasOfflineAudio,
		HasWebGL:         p.HasWebGL,
		HasPerfTimingAPI: p.HasPerfTimingAPI,
		HasDeviceMotion:  p.HasDeviceMotion,
		IsIOSFamily:      p.IsIOSFamily,
	}
}

// bindEnvironment installs the navigator/window/Notification/chrome
// shim the anomaly scanner's JS snippets run against, built once from
// the host profile.
func (rt *Runtime) bindEnvironment() error {
	p := rt.profile
	vm := rt.vm

	navigator := vm.NewObject()
	_ = navigator.Set("platform", p.Platform)
	_ = navigator.Set("language", p.Language)
	_ = navigator.Set("maxTouchPoints", p.TouchPoints)
	_ = navigator.Set("userAgent", p.UserAgent)
	if p.WebdriverDescriptor {
		_ = navigator.DefineAccessorProperty("webdriver",
			vm.ToValue(func() bool { return p.Webdriver }), nil,
			boolToFlag(p.WebdriverConfigurable), goja.FLAG_TRUE)
	}
	_ = vm.Set("navigator", navigator)

	if p.HasChromeRuntime {
		chrome := vm.NewObject()
		if p.HasChromeCSI {
			_ = chrome.Set("csi", func() goja.Value { return vm.ToValue(true) })
		}
		_ = vm.Set("chrome", chrome)
	}

	if p.HasNotificationAPI {
		notification := vm.NewObject()
		_ = notification.Set("permission", p.LegacyNotificationPermission)
		_ = vm.Set("Notification", notification)
	}

	if p.HasPermissionsAPI {
		_ = navigator.Set("permissions", map[string]interface{}{
			// query is modeled synchronously: the anomaly scanner awaits
			// it from Go, not from JS, so there is no need to round-trip
			// through a real Promise here.
			"query": func(call goja.FunctionCall) goja.Value {
				if p.PermissionsQueryErrors {
					panic(vm.NewGoError(fmt.Errorf("permissions query failed")))
				}
				result := vm.NewObject()
				_ = result.Set("state", p.NotificationsPermission)
				return result
			},
		})
	}

	return nil
}

func boolToFlag(b bool) goja.Flag {
	if b {
		return goja.FLAG_TRUE
	}
	return goja.FLAG_FALSE
}
