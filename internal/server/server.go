package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"yacht-dice/internal/auth"
	"yacht-dice/internal/broadcast"
	"yacht-dice/internal/config"
	"yacht-dice/internal/engine"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenVerifier turns a bearer token into verified claims.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

type Server struct {
	engine   *engine.Engine
	hub      *broadcast.Hub
	verifier TokenVerifier
	names    auth.NameResolver
	cfg      config.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New wires the HTTP and websocket surface. verifier and names may be nil:
// without a verifier bearer tokens are refused, without names signed-in
// users must send a display name.
func New(eng *engine.Engine, hub *broadcast.Hub, verifier TokenVerifier, names auth.NameResolver, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WSWriteTimeout <= 0 {
		cfg.WSWriteTimeout = 10 * time.Second
	}
	if cfg.WSPingInterval <= 0 {
		cfg.WSPingInterval = 30 * time.Second
	}
	registerValidators()
	s := &Server{
		engine:   eng,
		hub:      hub,
		verifier: verifier,
		names:    names,
		cfg:      cfg,
		logger:   logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions/public", s.handleListPublic)
	api.POST("/sessions/join", s.handleJoinByCode)
	api.GET("/sessions/code/:code", s.handleFindByCode)
	api.GET("/sessions/:id", s.handleGetSession)
	api.POST("/sessions/:id/join", s.handleJoinSession)
	api.POST("/sessions/:id/leave", s.handleLeaveSession)
	api.POST("/sessions/:id/start", s.handleStartSession)
	api.GET("/me/sessions", s.handleMySessions)

	router.GET("/ws/sessions/:id", s.handleWebsocket)
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// checkOrigin accepts every origin unless ALLOWED_ORIGINS is set.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, r.Header.Get("Origin"))
}
