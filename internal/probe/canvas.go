package probe

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"hivehyde/internal/types"
)

// canvasPayload is the fixed string the canvas probe renders. The
// byte-exact draw sequence below (two renders of this payload plus one
// filled rectangle, at fixed offsets, font, baseline, and colors) is
// part of the fingerprint and must never change shape between
// deployments.
const canvasPayload = "HiveHyde Anti-Crawler <canvas> 1.0 @!#$"

// Canvas runs a fixed canvas draw sequence through the goja VM against
// a native canvas-context shim and returns the resulting data-URL
// representation, or err_canvas if no 2D context is available.
func (rt *Runtime) Canvas() types.ProbeResult {
	if !rt.profile.HasCanvas2D {
		return types.Sentinel(types.ErrCanvas)
	}

	var ops []string
	ctx := map[string]interface{}{
		"fillRect": func(x, y, w, h float64) {
			ops = append(ops, fmt.Sprintf("rect(%g,%g,%g,%g)", x, y, w, h))
		},
		"fillText": func(text string, x, y float64) {
			ops = append(ops, fmt.Sprintf("text(%q,%g,%g)", text, x, y))
		},
		"setFillStyle": func(s string) { ops = append(ops, "fillStyle="+s) },
		"setFont":      func(s string) { ops = append(ops, "font="+s) },
		"setBaseline":  func(s string) { ops = append(ops, "baseline="+s) },
	}

	_ = rt.vm.Set("__ctx", ctx)
	_ = rt.vm.Set("__canvasW", 200)
	_ = rt.vm.Set("__canvasH", 60)

	script := `
	(function() {
		__ctx.setFont("14px Arial");
		__ctx.setBaseline("top");
		__ctx.setFillStyle("#f60");
		__ctx.fillRect(125, 1, 62, 20);
		__ctx.setFillStyle("#069");
		__ctx.fillText("` + canvasPayload + `", 2, 15);
		__ctx.setFillStyle("rgba(102,204,0,0.7)");
		__ctx.fillText("` + canvasPayload + `", 4, 17);
	})();
	`
	if _, err := rt.vm.RunString(script); err != nil {
		return types.Sentinel(types.ErrCanvas)
	}

	return types.Ok(canvasDataURL(ops))
}

// canvasDataURL renders the recorded op log into a stable data-URL.
// Go has no rasterizer to reproduce real pixel output, so the
// fingerprint is a deterministic digest of the exact draw-call
// sequence — identical inputs always produce identical output, and a
// single differing call (offset, color, font) changes the digest, the
// property the real canvas-fingerprint technique relies on.
func canvasDataURL(ops []string) string {
	h := sha256.New()
	for _, op := range ops {
		h.Write([]byte(op))
		h.Write([]byte{0})
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(h.Sum(nil))
}
