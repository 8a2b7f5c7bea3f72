// Package adapter implements the Request-Integration Adapter ("API
// Sentinel"): an http.RoundTripper decorator that signs every outbound
// request flagged protected and injects the resulting header bundle,
// cancelling the request on any signing failure.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"

	"hivehyde/internal/engine"
	"hivehyde/internal/hlog"
	"hivehyde/internal/probe"
	"hivehyde/internal/types"
	"hivehyde/internal/vault"
)

type protectKey struct{}

// Protect marks ctx so Adapter.RoundTrip signs the request carried on
// it. Requests without this marker pass through untouched.
func Protect(ctx context.Context) context.Context {
	return context.WithValue(ctx, protectKey{}, true)
}

func isProtected(ctx context.Context) bool {
	v, _ := ctx.Value(protectKey{}).(bool)
	return v
}

// Vault is the subset of *vault.Vault the adapter needs.
type Vault interface {
	GetCurrentKey(ctx context.Context) (string, error)
	GetCurrentToken() string
}

// Engine is the subset of *engine.Engine the adapter needs.
type Engine interface {
	Sign(gather engine.GatherResult, sessionKey, sessionToken string, nowMs int64) (types.SignaturePackage, error)
}

var _ Vault = (*vault.Vault)(nil)
var _ Engine = (*engine.Engine)(nil)

// Adapter decorates an http.RoundTripper with the signing pipeline.
type Adapter struct {
	next   http.RoundTripper
	fabric *probe.Fabric
	policy types.Policy
	eng    Engine
	vault  Vault
	log    *hlog.Logger

	attached atomic.Bool
}

// New builds an Adapter. next is the transport it wraps; defaults to
// http.DefaultTransport when nil.
func New(next http.RoundTripper, fabric *probe.Fabric, policy types.Policy, eng Engine, v Vault, log *hlog.Logger) *Adapter {
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		log = hlog.Nop()
	}
	return &Adapter{next: next, fabric: fabric, policy: policy, eng: eng, vault: v, log: log}
}

// Attach installs a onto client, replacing its Transport. Repeated
// attachment to the same client is a no-op warning rather than a
// duplicate interceptor.
func (a *Adapter) Attach(client *http.Client) {
	if !a.attached.CompareAndSwap(false, true) {
		a.log.Warn("adapter already attached; ignoring repeat attach")
		return
	}
	client.Transport = a
}

// RoundTrip signs protected requests and passes everything else
// straight through to the wrapped transport.
func (a *Adapter) RoundTrip(req *http.Request) (*http.Response, error) {
	if !isProtected(req.Context()) {
		return a.next.RoundTrip(req)
	}

	path, err := derivePath(req)
	if err != nil {
		return nil, fmt.Errorf("adapter: %w: %v", types.ErrSigningFailed, err)
	}

	getParams, bodyParams, body, err := extractParams(req)
	if err != nil {
		return nil, fmt.Errorf("adapter: %w: %v", types.ErrSigningFailed, err)
	}
	if body != nil {
		req.Body = io.NopCloser(body)
	}

	results, err := a.fabric.Gather(req.Context(), a.policy.Collectors)
	if err != nil {
		return nil, fmt.Errorf("adapter: %w: %v", types.ErrSigningFailed, err)
	}

	key, err := a.vault.GetCurrentKey(req.Context())
	if err != nil {
		return nil, fmt.Errorf("adapter: %w: %v", types.ErrSigningFailed, err)
	}
	token := a.vault.GetCurrentToken()

	pkg, err := a.eng.Sign(engine.GatherResult{
		Results:     results,
		TouchPoints: touchPointsOf(results),
		Method:      req.Method,
		Path:        path,
		GETParams:   getParams,
		BodyParams:  bodyParams,
	}, key, token, types.Now())
	if err != nil {
		return nil, fmt.Errorf("adapter: %w: %v", types.ErrSigningFailed, err)
	}

	injectHeaders(req, pkg)
	return a.next.RoundTrip(req)
}

func injectHeaders(req *http.Request, pkg types.SignaturePackage) {
	req.Header.Set("X-Hive-Timestamp", strconv.FormatInt(pkg.Timestamp, 10))
	req.Header.Set("X-Hive-Nonce", pkg.Nonce)
	req.Header.Set("X-Hive-Signature", pkg.Signature)
	req.Header.Set("X-Hive-Token", pkg.Token)
	req.Header.Set("X-Hive-RiskScore", strconv.Itoa(pkg.RiskScore))
	req.Header.Set("X-Hive-Fingerprint-Json", pkg.FingerprintJSONForSign)
}

// derivePath joins the request's resolved URL and strips everything
// but the path component.
func derivePath(req *http.Request) (string, error) {
	u := req.URL
	if u == nil {
		return "", fmt.Errorf("request has no URL")
	}
	clean, err := url.Parse(u.Path)
	if err != nil {
		return "", err
	}
	if clean.Path == "" {
		return "/", nil
	}
	return clean.Path, nil
}

// extractParams chooses query params for GET and decoded JSON body
// params otherwise, returning a replacement body reader when the
// original body was consumed.
func extractParams(req *http.Request) (getParams map[string]string, bodyParams map[string]any, replacement io.Reader, err error) {
	if req.Method == http.MethodGet {
		q := req.URL.Query()
		getParams = make(map[string]string, len(q))
		for k := range q {
			getParams[k] = q.Get(k)
		}
		return getParams, nil, nil, nil
	}

	if req.Body == nil {
		return nil, map[string]any{}, nil, nil
	}
	raw, readErr := io.ReadAll(req.Body)
	if readErr != nil {
		return nil, nil, nil, readErr
	}
	_ = req.Body.Close()

	if len(raw) == 0 {
		return nil, map[string]any{}, nil, nil
	}
	var params map[string]any
	if jsonErr := json.Unmarshal(raw, &params); jsonErr != nil {
		// Non-JSON bodies sign as an empty object; the caller's bytes
		// are still forwarded unchanged.
		params = map[string]any{}
	}
	return nil, params, bytes.NewReader(raw), nil
}

func touchPointsOf(results map[string]types.ProbeResult) int {
	r, ok := results["platform"]
	if !ok || r.IsError() {
		return 0
	}
	if p, ok := r.Value.(types.PlatformResult); ok {
		return p.TouchPoints
	}
	return 0
}
