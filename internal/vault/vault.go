// Package vault implements the Session Vault: it fetches and
// silently rotates the (session key, session token) pair against the
// server's /warden/init endpoint, guarding concurrent refreshes with a
// single-flight primitive rather than a boolean isRefreshing flag.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"hivehyde/internal/config"
	"hivehyde/internal/hlog"
	"hivehyde/internal/types"
)

type initResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Key   string `json:"key"`
		Token string `json:"token"`
	} `json:"data"`
}

// Vault owns the current session and mediates its refresh. The zero
// value is not usable; construct with New.
type Vault struct {
	apiBaseURL      string
	client          *http.Client
	log             *hlog.Logger
	lifespanMs      int64
	refreshBufferMs int64

	mu      sync.RWMutex
	session types.Session

	refreshGroup singleflight.Group
}

// New builds a Vault. client defaults to http.DefaultClient when nil;
// cfg's LifespanMs/RefreshBufferMs default to
// config.DefaultConfig()'s when cfg is nil, so a deployment's
// lifespan_ms/refresh_buffer_ms overrides reach every session this
// vault fetches.
func New(apiBaseURL string, client *http.Client, cfg *config.Config, log *hlog.Logger) *Vault {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = hlog.Nop()
	}
	return &Vault{
		apiBaseURL:      apiBaseURL,
		client:          client,
		log:             log,
		lifespanMs:      cfg.LifespanMs,
		refreshBufferMs: cfg.RefreshBufferMs,
	}
}

// Initialize performs the first session fetch. Unlike silent refresh,
// failure here is fatal and propagates to the caller.
func (v *Vault) Initialize(ctx context.Context) error {
	session, err := v.fetchSession(ctx)
	if err != nil {
		v.mu.Lock()
		v.session = types.Session{}
		v.mu.Unlock()
		return fmt.Errorf("vault: %w: %v", types.ErrSessionFetchFailed, err)
	}
	v.mu.Lock()
	v.session = session
	v.mu.Unlock()
	return nil
}

// GetCurrentKey returns the current key, first performing a silent
// refresh check: if the key is about to expire and no refresh is in
// flight, it starts one and waits for it. A failed silent refresh is
// logged, not propagated — the caller gets the old key back.
func (v *Vault) GetCurrentKey(ctx context.Context) (string, error) {
	v.mu.RLock()
	session := v.session
	v.mu.RUnlock()

	if !session.Valid() {
		return "", types.ErrSessionKeyUnavailable
	}

	if session.NeedsRefresh(types.Now()) {
		v.refresh(ctx)
		v.mu.RLock()
		session = v.session
		v.mu.RUnlock()
	}

	return session.Key, nil
}

// GetCurrentToken returns the cached token without any I/O.
func (v *Vault) GetCurrentToken() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.session.Token
}

// refresh collapses concurrent callers into a single in-flight fetch
// via singleflight — Testable Property 6 ("ten concurrent
// getCurrentKey calls during the refresh window trigger exactly one
// POST").
func (v *Vault) refresh(ctx context.Context) {
	_, _, _ = v.refreshGroup.Do("refresh", func() (interface{}, error) {
		session, err := v.fetchSession(ctx)
		if err != nil {
			v.log.Warn("silent session refresh failed", zap.Error(err))
			return nil, nil
		}
		v.mu.Lock()
		v.session = session
		v.mu.Unlock()
		return nil, nil
	})
}

func (v *Vault) fetchSession(ctx context.Context) (types.Session, error) {
	url := v.apiBaseURL + "/warden/init"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(nil))
	if err != nil {
		return types.Session{}, fmt.Errorf("building init request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return types.Session{}, fmt.Errorf("init request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.Session{}, fmt.Errorf("init request returned status %d", resp.StatusCode)
	}

	var body initResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Session{}, fmt.Errorf("decoding init response: %w", err)
	}
	if body.Code != 0 {
		return types.Session{}, fmt.Errorf("init response code %d: %s", body.Code, body.Msg)
	}
	if body.Data.Key == "" || body.Data.Token == "" {
		return types.Session{}, fmt.Errorf("init response missing key or token")
	}

	now := types.Now()
	return types.Session{
		Key:             body.Data.Key,
		Token:           body.Data.Token,
		AcquiredAt:      now,
		ExpiresAt:       now + v.lifespanMs,
		LifespanMs:      v.lifespanMs,
		RefreshBufferMs: v.refreshBufferMs,
	}, nil
}
