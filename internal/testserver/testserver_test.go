package testserver

import (
	"context"
	"testing"

	"hivehyde/internal/vault"
)

func TestVaultAgainstFixture(t *testing.T) {
	srv := New()
	defer srv.Close()

	v := vault.New(srv.URL, srv.Client(), nil, nil)
	if err := v.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if v.GetCurrentToken() == "" {
		t.Fatal("expected a non-empty token")
	}
}

func TestVaultInitializeFailsOnFixtureFailure(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.FailNext(true)

	v := vault.New(srv.URL, srv.Client(), nil, nil)
	if err := v.Initialize(context.Background()); err == nil {
		t.Fatal("expected initialize to fail")
	}
}
