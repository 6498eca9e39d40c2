package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/hearth/internal/handler"
	"github.com/dukerupert/hearth/internal/middleware"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/token"
	ws "github.com/dukerupert/hearth/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	issuer      *token.Issuer
	authH       *handler.AuthHandler
	choreH      *handler.ChoreHandler
	allowanceH  *handler.AllowanceHandler
	rewardH     *handler.RewardHandler
	chatH       *handler.ChatHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, issuer *token.Issuer, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	familyStore := store.NewFamilyStore(db)
	userStore := store.NewUserStore(db)
	choreStore := store.NewChoreStore(db)
	allowanceStore := store.NewAllowanceStore(db)
	rewardStore := store.NewRewardStore(db)
	chatStore := store.NewChatStore(db)

	return &Server{
		db:          db,
		hub:         hub,
		issuer:      issuer,
		authH:       handler.NewAuthHandler(familyStore, userStore, issuer, logger.With("component", "auth")),
		choreH:      handler.NewChoreHandler(choreStore, hub, logger.With("component", "chore")),
		allowanceH:  handler.NewAllowanceHandler(allowanceStore, hub, logger.With("component", "allowance")),
		rewardH:     handler.NewRewardHandler(rewardStore, hub, logger.With("component", "reward")),
		chatH:       handler.NewChatHandler(chatStore, hub, logger.With("component", "chat")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /auth/refresh", s.authH.Refresh)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.issuer)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	parentOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireParent(h)
	}

	mux.HandleFunc("GET /auth/me", s.authH.Me)
	mux.Handle("POST /auth/register-member", parentOnly(s.authH.RegisterMember))

	mux.HandleFunc("GET /chores", s.choreH.List)
	mux.HandleFunc("POST /chores", s.choreH.Create)
	mux.HandleFunc("GET /chores/{id}", s.choreH.Get)
	mux.HandleFunc("POST /chores/{id}/complete", s.choreH.Complete)
	mux.Handle("POST /chores/{id}/approve", parentOnly(s.choreH.Approve))

	mux.HandleFunc("GET /allowance", s.allowanceH.List)
	mux.Handle("POST /allowance/distribute", parentOnly(s.allowanceH.Distribute))

	mux.HandleFunc("GET /rewards", s.rewardH.List)
	mux.Handle("POST /rewards", parentOnly(s.rewardH.Create))
	mux.HandleFunc("POST /rewards/{id}/redeem", s.rewardH.Redeem)

	mux.HandleFunc("GET /chat", s.chatH.List)
	mux.HandleFunc("POST /chat", s.chatH.Create)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("/", s.notFoundHandler)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok"})
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
