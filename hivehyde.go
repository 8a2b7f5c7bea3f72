// Package hivehyde wires the Session Vault, Probe Fabric, Anomaly
// Scanner, Risk & Signing Engine, and Request-Integration Adapter into
// one constructed handle, built explicitly rather than hung off a
// process-wide namespace.
package hivehyde

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"hivehyde/internal/adapter"
	"hivehyde/internal/anomaly"
	"hivehyde/internal/config"
	"hivehyde/internal/engine"
	"hivehyde/internal/hlog"
	"hivehyde/internal/policy"
	"hivehyde/internal/probe"
	"hivehyde/internal/types"
	"hivehyde/internal/vault"
)

// HiveHyde is the constructed handle returned by Initialize, exposing
// each collaborator as a concrete, independently testable field rather
// than a global singleton.
type HiveHyde struct {
	SessionVault *vault.Vault
	DataLoom     *probe.Runtime
	AnomalyScan  *anomaly.Scanner
	RiskMatrix   *engine.Engine
	ApiSentinel  *adapter.Adapter

	fabric *probe.Fabric
	policy types.Policy
	log    *hlog.Logger
}

// Initialize builds every collaborator, runs the policy scheduler once
// against profile's capabilities, and performs the Session Vault's
// first fetch. Failure here is fatal — ProcessRequest cannot be called
// on a handle that never initialized.
func Initialize(ctx context.Context, cfg *config.Config, profile probe.HostProfile, httpClient *http.Client, zapLogger *zap.Logger) (*HiveHyde, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := hlog.New(zapLogger)

	tracker := probe.NewMouseTracker()
	runtime, err := probe.New(profile, tracker, log.Named("probe"))
	if err != nil {
		return nil, fmt.Errorf("hivehyde: building probe runtime: %w", err)
	}

	scanner := anomaly.New()
	fabric := probe.NewFabric(runtime, scanner)

	pol := policy.Build(runtime.Capabilities(), cfg)
	log.Info("policy built", zap.Strings("collectors", pol.Collectors))

	sessionVault := vault.New(cfg.APIBaseUrl, httpClient, cfg, log.Named("vault"))
	if err := sessionVault.Initialize(ctx); err != nil {
		return nil, err
	}

	riskEngine := engine.New(cfg, log.Named("engine"))
	sentinel := adapter.New(nil, fabric, pol, riskEngine, sessionVault, log.Named("adapter"))

	return &HiveHyde{
		SessionVault: sessionVault,
		DataLoom:     runtime,
		AnomalyScan:  scanner,
		RiskMatrix:   riskEngine,
		ApiSentinel:  sentinel,
		fabric:       fabric,
		policy:       pol,
		log:          log,
	}, nil
}

// Attach installs the Request-Integration Adapter onto client,
// signing every request whose context carries adapter.Protect.
func (h *HiveHyde) Attach(client *http.Client) {
	h.ApiSentinel.Attach(client)
}

// ProcessRequest signs one gathered request shape directly, for
// callers that want the header bundle without going through an
// http.Client's Transport.
func (h *HiveHyde) ProcessRequest(ctx context.Context, method, path string, getParams map[string]string, bodyParams map[string]any) (types.SignaturePackage, error) {
	results, err := h.fabric.Gather(ctx, h.policy.Collectors)
	if err != nil {
		return types.SignaturePackage{}, fmt.Errorf("hivehyde: %w: %v", types.ErrSigningFailed, err)
	}

	key, err := h.SessionVault.GetCurrentKey(ctx)
	if err != nil {
		return types.SignaturePackage{}, err
	}
	token := h.SessionVault.GetCurrentToken()

	touchPoints := 0
	if r, ok := results["platform"]; ok && !r.IsError() {
		if p, ok := r.Value.(types.PlatformResult); ok {
			touchPoints = p.TouchPoints
		}
	}

	return h.RiskMatrix.Sign(engine.GatherResult{
		Results:     results,
		TouchPoints: touchPoints,
		Method:      method,
		Path:        path,
		GETParams:   getParams,
		BodyParams:  bodyParams,
	}, key, token, types.Now())
}
