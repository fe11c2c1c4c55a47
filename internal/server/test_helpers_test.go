package server

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yacht-dice/internal/auth"
	"yacht-dice/internal/broadcast"
	"yacht-dice/internal/config"
	"yacht-dice/internal/engine"
	"yacht-dice/internal/store"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

type testEnv struct {
	server   *Server
	hub      *broadcast.Hub
	verifier *auth.Verifier
	ts       *httptest.Server
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// newTestEnv serves a memory-backed engine. Every die rolls a 6.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	memory := store.New()
	hub := broadcast.NewHub(logger)
	eng := engine.New(memory.Sessions(), memory.Players(), memory.States(), hub, engine.Options{
		Roll:   func() int { return 6 },
		Logger: logger,
	})
	verifier, err := auth.NewVerifier(testSecret, "")
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	names := auth.ClaimNames{"user-named": "Directory Name"}
	cfg := config.Config{WSWriteTimeout: time.Second, WSPingInterval: time.Minute}
	srv := New(eng, hub, verifier, names, cfg, logger)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: srv, hub: hub, verifier: verifier, ts: ts}
}

func (e *testEnv) token(t *testing.T, subject, name string) string {
	t.Helper()
	token, err := e.verifier.Sign(auth.Claims{Subject: subject, Name: name}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
