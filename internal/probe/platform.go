package probe

import (
	"fmt"
	"strings"

	"hivehyde/internal/types"
)

// Platform returns {platform, plugins, touchPoints, clickCount}, with
// clickCount mirroring the mouse tracker's counter at probe time.
func (rt *Runtime) Platform() types.ProbeResult {
	p := rt.profile
	if p.Platform == "" {
		return types.Sentinel(types.ErrPlatform)
	}
	return types.Ok(types.PlatformResult{
		Platform:    p.Platform,
		Plugins:     strings.Join(p.Plugins, ","),
		TouchPoints: p.TouchPoints,
		ClickCount:  rt.tracker.ClickCount(),
	})
}

// Screen returns {screen: "WxHxD", language}.
func (rt *Runtime) Screen() types.ProbeResult {
	p := rt.profile
	if p.ScreenWidth == 0 || p.ScreenHeight == 0 {
		return types.Sentinel(types.ErrScreen)
	}
	return types.Ok(types.ScreenResult{
		Screen:   fmt.Sprintf("%dx%dx%d", p.ScreenWidth, p.ScreenHeight, p.ScreenDepth),
		Language: p.Language,
	})
}

// Language returns the navigator language string alone, for the
// always-on "language" collector.
func (rt *Runtime) Language() types.ProbeResult {
	if rt.profile.Language == "" {
		return types.Sentinel(types.ErrScreen)
	}
	return types.Ok(rt.profile.Language)
}

// Plugins returns the comma-joined plugin name list, for the
// always-on "plugins" collector.
func (rt *Runtime) Plugins() types.ProbeResult {
	return types.Ok(strings.Join(rt.profile.Plugins, ","))
}
