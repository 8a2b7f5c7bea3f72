package hivehyde

import (
	"context"
	"net/http"
	"testing"

	"hivehyde/internal/adapter"
	"hivehyde/internal/config"
	"hivehyde/internal/probe"
	"hivehyde/internal/testserver"
)

func testProfile() probe.HostProfile {
	return probe.HostProfile{
		Platform: "Win32", Language: "en-US",
		ScreenWidth: 1920, ScreenHeight: 1080, ScreenDepth: 24,
		HasCanvas2D: true, HasOfflineAudio: true,
	}
}

func TestInitializeAndProcessRequest(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.APIBaseUrl = srv.URL

	h, err := Initialize(context.Background(), cfg, testProfile(), srv.Client(), nil)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	pkg, err := h.ProcessRequest(context.Background(), "GET", "/api/ping", map[string]string{}, nil)
	if err != nil {
		t.Fatalf("process request: %v", err)
	}
	if pkg.Signature == "" || pkg.Token == "" {
		t.Fatalf("incomplete signature package: %+v", pkg)
	}
	if pkg.RiskScore < 0 || pkg.RiskScore > 100 {
		t.Fatalf("risk score out of range: %d", pkg.RiskScore)
	}
}

func TestInitializeFailsWithoutAPIBaseUrl(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := Initialize(context.Background(), cfg, testProfile(), nil, nil); err == nil {
		t.Fatal("expected ConfigMissing failure")
	}
}

func TestAttachSignsThroughHTTPClient(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.APIBaseUrl = srv.URL

	h, err := Initialize(context.Background(), cfg, testProfile(), srv.Client(), nil)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	client := &http.Client{}
	h.Attach(client)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/warden/init", nil)
	req = req.WithContext(adapter.Protect(req.Context()))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
}
