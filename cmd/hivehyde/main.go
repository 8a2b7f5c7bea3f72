// Command hivehyde is a smoke-test CLI: it wires a HiveHyde-Anti
// handle against a warden server, signs one GET and one POST request,
// and prints the resulting header bundle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"hivehyde"
	"hivehyde/internal/config"
	"hivehyde/internal/probe"
	"hivehyde/internal/testserver"
	"hivehyde/internal/types"
)

func main() {
	apiBaseURL := flag.String("api-base-url", "", "warden init endpoint base URL; a local fixture server is used when omitted")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	flag.Parse()

	zapCfg := zap.NewProductionConfig()
	if *verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.DefaultConfig()
	cfg.APIBaseUrl = *apiBaseURL

	if cfg.APIBaseUrl == "" {
		fixture := testserver.New()
		defer fixture.Close()
		cfg.APIBaseUrl = fixture.URL
		logger.Info("no --api-base-url given, using in-process fixture warden", zap.String("url", fixture.URL))
	}

	profile := probe.HostProfile{
		Platform: "Win32", Language: "en-US", UserAgent: "hivehyde-smoke-test/1.0",
		ScreenWidth: 1920, ScreenHeight: 1080, ScreenDepth: 24,
		HasCanvas2D: true, HasWebGL: true, HasOfflineAudio: true, HasPerfTimingAPI: true,
		NavigationType: "navigate",
	}

	ctx := context.Background()
	h, err := hivehyde.Initialize(ctx, cfg, profile, nil, logger)
	if err != nil {
		logger.Fatal("initialize failed", zap.Error(err))
	}

	get, err := h.ProcessRequest(ctx, "GET", "/api/ping", map[string]string{"q": "1"}, nil)
	if err != nil {
		logger.Fatal("signing GET failed", zap.Error(err))
	}
	printPackage("GET /api/ping", get)

	post, err := h.ProcessRequest(ctx, "POST", "/api/orders", nil, map[string]any{"item": "widget", "qty": 3})
	if err != nil {
		logger.Fatal("signing POST failed", zap.Error(err))
	}
	printPackage("POST /api/orders", post)
}

func printPackage(label string, pkg types.SignaturePackage) {
	fmt.Fprintf(os.Stdout, "--- %s ---\n%+v\n", label, pkg)
}
