package probe

import "hivehyde/internal/types"

// WebGL acquires a WebGL context and prefers the unmasked vendor/
// renderer extension, falling back to the masked pair when the
// extension is unavailable.
func (rt *Runtime) WebGL() types.ProbeResult {
	p := rt.profile
	if !p.HasWebGL {
		return types.Sentinel(types.ErrNoWebGL)
	}

	vendor, renderer := p.WebGLVendorMasked, p.WebGLRendererMasked
	if p.HasUnmaskedRendererExt {
		vendor, renderer = p.WebGLVendor, p.WebGLRenderer
	}
	if vendor == "" && renderer == "" {
		return types.Sentinel(types.ErrWebGL)
	}
	return types.Ok(types.WebGLResult{Vendor: vendor, Renderer: renderer})
}
