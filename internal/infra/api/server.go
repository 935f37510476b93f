package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-access-platform/internal/config"
	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/infra/redis"
	"ai-access-platform/internal/usecase"
)

// Server exposes the dashboard backend: access checks, code activation,
// the admin panel, and model routing.
type Server struct {
	cfg  *config.Config
	log  *zerolog.Logger
	auth *AuthManager

	userUC    usecase.UserUseCase
	accessUC  usecase.AccessUseCase
	routerUC  usecase.RouterUseCase
	pricingUC usecase.PricingUseCase
	statsUC   usecase.StatsUseCase

	limiter *redis.RateLimiter

	// health probes
	pgPool *pgxpool.Pool
	rdb    *redis.Client
}

func NewServer(
	cfg *config.Config,
	auth *AuthManager,
	userUC usecase.UserUseCase,
	accessUC usecase.AccessUseCase,
	routerUC usecase.RouterUseCase,
	pricingUC usecase.PricingUseCase,
	statsUC usecase.StatsUseCase,
	limiter *redis.RateLimiter,
	pgPool *pgxpool.Pool,
	rdb *redis.Client,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "api").Logger()
	return &Server{
		cfg:       cfg,
		log:       &srvLog,
		auth:      auth,
		userUC:    userUC,
		accessUC:  accessUC,
		routerUC:  routerUC,
		pricingUC: pricingUC,
		statsUC:   statsUC,
		limiter:   limiter,
		pgPool:    pgPool,
		rdb:       rdb,
	}
}

// Router builds the full route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(toChi(TraceID()))
	r.Use(toChi(Recover(s.log)))
	r.Use(toChi(Timeout(s.cfg.Server.RequestTimeout)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(toChi(RequestLog(s.log)))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/health", s.handleHealth)

	if s.cfg.Runtime.Dev {
		r.Post("/api/auth/token", s.handleDevToken)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.Authenticate)
		r.Use(toChi(RateLimit(s.limiter, s.cfg.Server.RateLimit, s.cfg.Server.RateLimitWin, s.log)))

		r.Get("/api/check-ai-access", s.handleCheckAccess)
		r.Post("/api/activate-ai", s.handleActivate)
		r.Get("/api/models", s.handleListModels)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAIAccess)
			r.Post("/api/model/suggest", s.handleSuggestModel)
			r.Post("/api/model/feedback", s.handleModelFeedback)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.Authenticate)
		r.Use(s.RequireAdmin)

		r.Post("/generate-code", s.handleGenerateCode)
		r.Get("/activation-codes", s.handleListCodes)
		r.Post("/activation-codes/{id}/suspend", s.handleSuspendCode)
		r.Post("/activation-codes/{id}/reactivate", s.handleReactivateCode)
		r.Delete("/activation-codes/{id}", s.handleDeleteCode)

		r.Get("/users", s.handleListUsers)
		r.Post("/users/{id}/block", s.handleBlockUser)
		r.Post("/users/{id}/unblock", s.handleUnblockUser)
		r.Post("/users/{id}/revoke-access", s.handleRevokeAccess)

		r.Get("/stats", s.handleStats)

		r.Get("/pricing", s.handleListPricing)
		r.Post("/pricing", s.handleCreatePricing)
		r.Put("/pricing/{model}", s.handleUpdatePricing)
		r.Delete("/pricing/{model}", s.handleDeletePricing)
	})

	return r
}

func toChi(m Middleware) func(http.Handler) http.Handler { return m }

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.Server.AllowedOrigins) > 0 {
		return s.cfg.Server.AllowedOrigins
	}
	return []string{"http://localhost:3000"}
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Time       time.Time         `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:     "ok",
		Components: map[string]string{},
		Time:       time.Now().UTC(),
	}
	if s.pgPool != nil {
		if err := s.pgPool.Ping(ctx); err != nil {
			resp.Components["postgres"] = "down"
			resp.Status = "degraded"
		} else {
			resp.Components["postgres"] = "ok"
		}
	}
	if s.rdb != nil {
		if err := s.rdb.Ping(ctx); err != nil {
			resp.Components["redis"] = "down"
			resp.Status = "degraded"
		} else {
			resp.Components["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

type devTokenRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// handleDevToken mints a token for local development. Never registered
// outside dev mode.
func (s *Server) handleDevToken(w http.ResponseWriter, r *http.Request) {
	var req devTokenRequest
	if err := decodeJSON(r, &req); err != nil || req.UserID == "" {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	token, err := s.auth.Issue(req.UserID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
