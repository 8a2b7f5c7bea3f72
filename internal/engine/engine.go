// Package engine implements the Risk & Signing Engine ("Risk Matrix"):
// risk scoring, canonical parameter serialization, the AES fingerprint
// envelope, HMAC signing, and header-bundle assembly.
package engine

import (
	"fmt"

	"hivehyde/internal/config"
	"hivehyde/internal/hlog"
	"hivehyde/internal/types"
	"go.uber.org/zap"
)

// GatherResult is everything one signing attempt collected from the
// Probe Fabric, keyed by probe name, plus the request shape it is
// signing.
type GatherResult struct {
	Results     map[string]types.ProbeResult
	TouchPoints int
	Method      string
	Path        string
	GETParams   map[string]string
	BodyParams  map[string]any
}

// Engine scores and signs one gathered snapshot against the current
// session key.
type Engine struct {
	cfg *config.Config
	log *hlog.Logger
}

// New builds an Engine bound to cfg's weights and log's telemetry
// sink.
func New(cfg *config.Config, log *hlog.Logger) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = hlog.Nop()
	}
	return &Engine{cfg: cfg, log: log}
}

// Sign scores gather, composes the canonical signing record, and
// returns the transport-ready SignaturePackage. now and
// sessionKey/token are supplied by the caller (the adapter, backed by
// the Session Vault) so the engine itself holds no session state.
func (e *Engine) Sign(gather GatherResult, sessionKey, sessionToken string, nowMs int64) (types.SignaturePackage, error) {
	if sessionKey == "" {
		return types.SignaturePackage{}, types.ErrSessionKeyUnavailable
	}

	platform := stringField(gather.Results, "platform", "platform", "N/A")
	renderer := stringField(gather.Results, "webgl", "renderer", "N/A")
	audio := audioField(gather.Results)

	// Insertion order must be platform, renderer, audio exactly, so this
	// is built directly rather than through CanonicalJSON, which would
	// sort the keys alphabetically and break the server's fixed shape.
	rawFp := rawFingerprintJSON(platform, renderer, audio)

	sentinelCount := countSentinels(gather.Results)

	trajectory := trajectoryOf(gather.Results)
	clickCount := clickCountOf(gather.Results)
	perf := performanceOf(gather.Results)

	score := Score(ScoreInput{
		Anomaly:       anomalyOf(gather.Results),
		Trajectory:    trajectory,
		TouchPoints:   gather.TouchPoints,
		ClickCount:    clickCount,
		Performance:   perf,
		SentinelCount: sentinelCount,
	}, e.cfg)

	nonce, err := GenerateNonce(nowMs)
	if err != nil {
		return types.SignaturePackage{}, fmt.Errorf("engine: %w: %v", types.ErrSigningFailed, err)
	}

	var params string
	method := gather.Method
	if method == "GET" {
		params = CanonicalGETParams(gather.GETParams)
	} else {
		params = CanonicalBodyParams(gather.BodyParams)
	}

	record := ComposeRecord(nowMs, nonce, method, gather.Path, params, score, rawFp)

	signature, err := SignRecord(sessionKey, record)
	if err != nil {
		return types.SignaturePackage{}, fmt.Errorf("engine: %w: %v", types.ErrSigningFailed, err)
	}

	ciphertext, err := EncryptFingerprint(sessionKey, rawFp)
	if err != nil {
		return types.SignaturePackage{}, fmt.Errorf("engine: %w: %v", types.ErrSigningFailed, err)
	}

	e.log.Debug("signing attempt",
		zap.Int("risk_score", score),
		zap.Int("sentinel_count", sentinelCount),
		zap.String("path", gather.Path),
	)

	return types.SignaturePackage{
		Signature:              signature,
		Timestamp:              nowMs,
		Nonce:                  nonce,
		RiskScore:              score,
		Token:                  sessionToken,
		FingerprintJSONForSign: ciphertext,
	}, nil
}

// ComposeRecord builds the exact "||"-delimited signing record.
func ComposeRecord(timestampMs int64, nonce, method, path, params string, score int, rawFingerprintJSON string) string {
	return fmt.Sprintf("%d||%s||%s||%s||%s||%d||%s",
		timestampMs, nonce, upperMethod(method), path, params, score, rawFingerprintJSON)
}

func rawFingerprintJSON(platform, renderer, audio string) string {
	return fmt.Sprintf(`{"platform":%s,"renderer":%s,"audio":%s}`,
		jsonString(platform), jsonString(renderer), jsonString(audio))
}

func jsonString(s string) string {
	var b []byte
	b = append(b, '"')
	for _, r := range s {
		switch r {
		case '"':
			b = append(b, '\\', '"')
		case '\\':
			b = append(b, '\\', '\\')
		default:
			b = append(b, string(r)...)
		}
	}
	b = append(b, '"')
	return string(b)
}

func upperMethod(m string) string {
	out := make([]byte, len(m))
	for i := 0; i < len(m); i++ {
		c := m[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
