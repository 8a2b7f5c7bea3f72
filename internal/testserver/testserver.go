// Package testserver provides an httptest-backed fixture implementing
// only the one endpoint HiveHyde-Anti's Session Vault depends on:
// POST /warden/init. The real server and its signature-verification
// middleware live elsewhere; this fixture exists so vault and adapter
// tests have something to dial without reimplementing the server.
package testserver

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Server wraps an httptest.Server serving /warden/init. Each call
// mints a fresh 64-hex session key and a JWT token binding it to a
// uuid session id, mirroring the shape of a real warden response.
type Server struct {
	*httptest.Server
	signingKey []byte
	fail       bool
}

// New starts the fixture. Call Close when done.
func New() *Server {
	s := &Server{signingKey: []byte("test-only-fixture-signing-key-32b")}
	router := chi.NewRouter()
	router.Post("/warden/init", s.handleInit)
	s.Server = httptest.NewServer(router)
	return s
}

// FailNext causes the next N /warden/init calls to return a non-2xx
// status, exercising the vault's SessionFetchFailed path.
func (s *Server) FailNext(fail bool) {
	s.fail = fail
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	if s.fail {
		http.Error(w, "warden unavailable", http.StatusServiceUnavailable)
		return
	}

	sessionID := uuid.New()
	key, err := randomHexKey()
	if err != nil {
		http.Error(w, "key generation failed", http.StatusInternalServerError)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID.String(),
		"exp": time.Now().Add(30 * time.Minute).Unix(),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		http.Error(w, "token signing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code": 0,
		"data": map[string]string{"key": key, "token": signed},
		"msg":  "ok",
	})
}

func randomHexKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
