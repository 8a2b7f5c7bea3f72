package adapter

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hivehyde/internal/anomaly"
	"hivehyde/internal/engine"
	"hivehyde/internal/probe"
	"hivehyde/internal/types"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type fakeVault struct {
	key, token string
	err        error
}

func (v *fakeVault) GetCurrentKey(ctx context.Context) (string, error) { return v.key, v.err }
func (v *fakeVault) GetCurrentToken() string                           { return v.token }

func newTestRuntime(t *testing.T) *probe.Runtime {
	t.Helper()
	profile := probe.HostProfile{
		Platform:        "Win32",
		Language:        "en-US",
		ScreenWidth:     1920,
		ScreenHeight:    1080,
		ScreenDepth:     24,
		HasOfflineAudio: true,
	}
	rt, err := probe.New(profile, probe.NewMouseTracker(), nil)
	if err != nil {
		t.Fatalf("probe.New: %v", err)
	}
	return rt
}

func TestRoundTripUnprotectedPassesThrough(t *testing.T) {
	rt := newTestRuntime(t)
	fabric := probe.NewFabric(rt, anomaly.New())
	eng := engine.New(nil, nil)

	called := false
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	})

	a := New(next, fabric, types.Policy{Collectors: []string{"platform"}}, eng, &fakeVault{key: strings.Repeat("ab", 32), token: "tok"}, nil)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
	if _, err := a.RoundTrip(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected unprotected request to reach the wrapped transport")
	}
	if req.Header.Get("X-Hive-Signature") != "" {
		t.Fatal("unprotected request should not carry signing headers")
	}
}

func TestRoundTripProtectedInjectsHeaders(t *testing.T) {
	rt := newTestRuntime(t)
	fabric := probe.NewFabric(rt, anomaly.New())
	eng := engine.New(nil, nil)

	var seen *http.Request
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	})

	policy := types.Policy{Collectors: []string{"platform", "screen", "language"}}
	a := New(next, fabric, policy, eng, &fakeVault{key: strings.Repeat("ab", 32), token: "tok-xyz"}, nil)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/api/ping?a=1", nil)
	req = req.WithContext(Protect(req.Context()))

	if _, err := a.RoundTrip(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.Header.Get("X-Hive-Signature") == "" {
		t.Fatal("expected signature header on protected request")
	}
	if seen.Header.Get("X-Hive-Token") != "tok-xyz" {
		t.Fatalf("token header = %q", seen.Header.Get("X-Hive-Token"))
	}
}

func TestRoundTripCancelsOnVaultFailure(t *testing.T) {
	rt := newTestRuntime(t)
	fabric := probe.NewFabric(rt, anomaly.New())
	eng := engine.New(nil, nil)

	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatal("transport should not be reached when signing fails")
		return nil, nil
	})

	a := New(next, fabric, types.Policy{Collectors: []string{"platform"}}, eng, &fakeVault{err: types.ErrSessionKeyUnavailable}, nil)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
	req = req.WithContext(Protect(req.Context()))

	if _, err := a.RoundTrip(req); err == nil {
		t.Fatal("expected signing failure to cancel the request")
	}
}

func TestAttachOnceIsIdempotent(t *testing.T) {
	rt := newTestRuntime(t)
	fabric := probe.NewFabric(rt, anomaly.New())
	eng := engine.New(nil, nil)
	a := New(nil, fabric, types.Policy{}, eng, &fakeVault{}, nil)

	client := &http.Client{}
	a.Attach(client)
	firstTransport := client.Transport
	a.Attach(client) // should warn, not replace again
	if client.Transport != firstTransport {
		t.Fatal("second attach should not replace the transport")
	}
}

func TestIntegrationAgainstFixtureServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	rt := newTestRuntime(t)
	fabric := probe.NewFabric(rt, anomaly.New())
	eng := engine.New(nil, nil)
	a := New(http.DefaultTransport, fabric, types.Policy{Collectors: []string{"platform"}}, eng,
		&fakeVault{key: strings.Repeat("ef", 32), token: "tok"}, nil)

	client := &http.Client{Transport: a}
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/resource", nil)
	req = req.WithContext(Protect(req.Context()))

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
