package probe

import (
	"errors"
	"strings"
)

var errPermissionsQuery = errors.New("probe: permissions query panicked")

// DetectWebdriver runs the literal navigator.webdriver truthiness
// check.
func (rt *Runtime) DetectWebdriver() bool {
	v, err := rt.vm.RunString("typeof navigator !== 'undefined' && !!navigator.webdriver")
	if err != nil {
		return false
	}
	return v.ToBoolean()
}

// WebdriverTamperedSignal reports whether navigator.webdriver has a
// property descriptor that is also configurable — a shape most
// genuine browsers never expose.
func (rt *Runtime) WebdriverTamperedSignal() bool {
	v, err := rt.vm.RunString(`(function() {
		if (typeof navigator === 'undefined') return false;
		var d = Object.getOwnPropertyDescriptor(navigator, 'webdriver');
		return !!d && d.configurable === true;
	})()`)
	if err != nil {
		return false
	}
	return v.ToBoolean()
}

// HeadlessChromeSignal reports whether a chrome-runtime shape exists
// but its csi timing function is absent or non-callable.
func (rt *Runtime) HeadlessChromeSignal() bool {
	v, err := rt.vm.RunString(`(function() {
		if (typeof chrome === 'undefined') return false;
		return typeof chrome.csi !== 'function';
	})()`)
	if err != nil {
		return false
	}
	return v.ToBoolean()
}

// ToStringTampered reports whether a native built-in's toString
// dropped its "native code" marker or a user function's toString
// dropped its body text. The host profile carries these as
// pre-computed facts since the VM has no real native functions to
// introspect.
func (rt *Runtime) ToStringTampered() bool {
	return rt.profile.NativeToStringTampered || rt.profile.UserToStringTampered
}

// StackAnomaly classifies a thrown probe error's stack trace: absent,
// containing an automation keyword, or too short to be genuine.
// Returns "" when the stack looks ordinary.
func (rt *Runtime) StackAnomaly() string {
	frames := rt.profile.StackFrames
	if len(frames) == 0 {
		return "no_stack"
	}
	for _, f := range frames {
		lower := strings.ToLower(f)
		for _, kw := range []string{"puppeteer", "webdriver", "phantom"} {
			if strings.Contains(lower, kw) {
				return "contains_keyword"
			}
		}
	}
	if len(frames) < 3 {
		return "stack_too_short"
	}
	return ""
}

// QueryPermissionsState runs navigator.permissions.query for the
// "notifications" descriptor and cross-checks it against the legacy
// Notification.permission string, returning "denied" when both report
// denied, "no_permissions_api" when the permissions API is
// unavailable, or "permissions_error" when the query itself errors.
func (rt *Runtime) QueryPermissionsState() string {
	if !rt.profile.HasPermissionsAPI {
		return "no_permissions_api"
	}

	result, err := rt.callPermissionsQuery()
	if err != nil {
		return "permissions_error"
	}

	legacy := ""
	if rt.profile.HasNotificationAPI {
		legacy = rt.profile.LegacyNotificationPermission
	}
	if result == "denied" && legacy == "denied" {
		return "denied"
	}
	return ""
}

func (rt *Runtime) callPermissionsQuery() (state string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errPermissionsQuery
		}
	}()

	v, runErr := rt.vm.RunString(`navigator.permissions.query({name: 'notifications'})`)
	if runErr != nil {
		return "", runErr
	}
	obj := v.ToObject(rt.vm)
	return obj.Get("state").String(), nil
}
