package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Sammyalhashe/Lotto/internal/config"
	"github.com/Sammyalhashe/Lotto/internal/lotto"
	"github.com/Sammyalhashe/Lotto/internal/state"
	"github.com/Sammyalhashe/Lotto/internal/strategy"
)

// Server holds all dependencies for the HTTP server
type Server struct {
	cfg     *config.Config
	ledger  *lotto.Ledger
	engine  *lotto.Engine
	credits *state.Credits
	strat   strategy.Strategy
	wsHub   *Hub
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	ledger *lotto.Ledger,
	engine *lotto.Engine,
	credits *state.Credits,
	strat strategy.Strategy,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		ledger:  ledger,
		engine:  engine,
		credits: credits,
		strat:   strat,
		wsHub:   NewHub(logger),
		logger:  logger,
	}
}

// RegisterRoutes registers all HTTP routes
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Pool endpoints
	mux.HandleFunc("POST /api/pool", s.handleCreatePool)
	mux.HandleFunc("GET /api/pools", s.handleListPools)
	mux.HandleFunc("GET /api/pools/count", s.handlePoolCount)
	mux.HandleFunc("GET /api/pool/{id}", s.handleGetPool)
	mux.HandleFunc("POST /api/pool/{id}/enter", s.handleEnterPool)
	mux.HandleFunc("POST /api/pool/{id}/settle", s.handleSettlePool)
	mux.HandleFunc("POST /api/pool/{id}/cancel", s.handleCancelPool)

	// Account endpoints
	mux.HandleFunc("GET /api/account/{address}/created", s.handleCreatedPools)
	mux.HandleFunc("GET /api/account/{address}/joined", s.handleJoinedPools)
	mux.HandleFunc("GET /api/account/{address}/credit", s.handleCreditBalance)
	mux.HandleFunc("POST /api/claim", s.handleClaim)

	// Strategy endpoints
	mux.HandleFunc("GET /api/strategy", s.handleStrategyBalance)
	mux.HandleFunc("POST /api/strategy/accrue", s.handleAccrue)

	// WebSocket endpoint
	mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Start WebSocket hub
	go s.wsHub.Run()

	// Broadcast every ledger event to connected clients
	s.ledger.SetEventCallback(func(evt lotto.Event) {
		s.wsHub.Broadcast(Message{
			Type: string(evt.Type),
			Data: evt,
		})
	})

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	// Add CORS middleware
	handler := corsMiddleware(mux)

	addr := ":" + s.cfg.ServerPort
	s.logger.Info("server starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, handler)
}

// handleHealth is the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
