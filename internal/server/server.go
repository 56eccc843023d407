package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/raaihank/spell-sentinel/internal/cache"
	"github.com/raaihank/spell-sentinel/internal/config"
	"github.com/raaihank/spell-sentinel/internal/engine"
	"github.com/raaihank/spell-sentinel/internal/logger"
	"github.com/raaihank/spell-sentinel/internal/security"
	"github.com/raaihank/spell-sentinel/internal/web"
	"github.com/raaihank/spell-sentinel/internal/websocket"
	"go.uber.org/zap"
)

// Version is reported by /info
var Version = "0.1.0"

// settings are the values a config reload may change while serving
type settings struct {
	defaults      engine.Options
	maxTextLength int
}

// Server exposes the correction engine over HTTP
type Server struct {
	config    *config.Config
	logger    *logger.Logger
	engine    *engine.Engine
	cache     *cache.ResultCache
	limiter   *security.RateLimiter
	router    *mux.Router
	server    *http.Server
	wsHub     *websocket.Hub
	settings  atomic.Pointer[settings]
	startedAt time.Time
}

// New creates a new server instance. resultCache may be nil.
func New(cfg *config.Config, log *logger.Logger, eng *engine.Engine, resultCache *cache.ResultCache) (*Server, error) {
	if eng == nil {
		return nil, errors.New("engine is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastCorrections: cfg.WebSocket.Events.BroadcastCorrections,
		BroadcastRequests:    cfg.WebSocket.Events.BroadcastRequests,
		BroadcastConnections: cfg.WebSocket.Events.BroadcastConnections,
		Username:             cfg.WebSocket.Username,
		Password:             cfg.WebSocket.Password,
	}, log.Logger)

	limiter := security.NewRateLimiter(security.RateLimitConfig{
		Enabled:  cfg.Limits.RateLimit.Enabled,
		Requests: cfg.Limits.RateLimit.Requests,
		Window:   cfg.Limits.RateLimit.Window,
		IdleTTL:  cfg.Limits.RateLimit.IdleTTL,
	}, log.WithComponent("ratelimit").Logger)

	server := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		engine:    eng,
		cache:     resultCache,
		limiter:   limiter,
		router:    mux.NewRouter(),
		wsHub:     wsHub,
		startedAt: time.Now(),
	}
	server.ApplyConfig(cfg)

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.WebSocket.Enabled && cfg.WebSocket.Username == "" {
		server.logger.Warn("Dashboard feed has no credentials configured; /ws and /dashboard are open")
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoverMiddleware)

	notFound := s.loggingMiddleware(http.HandlerFunc(s.handleNotFound))
	methodNotAllowed := s.loggingMiddleware(http.HandlerFunc(s.handleMethodNotAllowed))
	s.router.NotFoundHandler = notFound
	s.router.MethodNotAllowedHandler = methodNotAllowed

	// Correction API, rate limited per client
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimitMiddleware)
	api.NotFoundHandler = notFound
	api.MethodNotAllowedHandler = methodNotAllowed
	api.HandleFunc("/correct", s.handleCorrect).Methods(http.MethodPost)
	api.HandleFunc("/diff", s.handleDiff).Methods(http.MethodPost)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)

	// Correction page; the dashboard variant shares the feed credentials
	s.router.HandleFunc("/", web.ServeDashboard).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/dashboard", s.requireFeedAuth(web.ServeDashboard)).Methods(http.MethodGet, http.MethodHead)

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ApplyConfig swaps in the reloadable settings of cfg. Rate limits, the
// cache and the listen address keep their startup values.
func (s *Server) ApplyConfig(cfg *config.Config) {
	s.settings.Store(&settings{
		defaults: engine.Options{
			SpellCheck:   cfg.Engine.SpellCheck,
			GrammarCheck: cfg.Engine.GrammarCheck,
		},
		maxTextLength: cfg.Limits.MaxTextLength,
	})
}

// Start runs background workers and serves until Stop is called or ctx is
// cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting spell-sentinel server",
		zap.Int("port", s.config.Server.Port),
		zap.Int("dictionary_size", s.engine.DictionarySize()),
		zap.Strings("grammar_rules", s.engine.RuleNames()),
		zap.String("diff_mode", string(s.engine.DiffMode())),
		zap.Bool("cache_enabled", s.cache != nil),
	)

	go s.wsHub.Run(ctx)
	s.limiter.StartCleanupRoutine(ctx, 10*time.Minute)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping spell-sentinel server")
	return s.server.Shutdown(ctx)
}

// GetWebSocketHub returns the WebSocket hub for broadcasting events
func (s *Server) GetWebSocketHub() *websocket.Hub {
	return s.wsHub
}
