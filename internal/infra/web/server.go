package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/infra/logging"
	"hosting-billing-engine/internal/usecase"
)

// Server exposes the operator API: subscription lifecycle actions plus the
// CRUD surfaces the dashboard needs.
type Server struct {
	subUC   usecase.SubscriptionLifecycle
	custUC  usecase.CustomerUseCase
	planUC  usecase.PlanUseCase
	invUC   usecase.InvoiceUseCase
	usageUC usecase.UsageUseCase
	statsUC usecase.StatsUseCase
	auth    *AuthManager
	apiKey  string
	log     *zerolog.Logger
}

func NewServer(
	subUC usecase.SubscriptionLifecycle,
	custUC usecase.CustomerUseCase,
	planUC usecase.PlanUseCase,
	invUC usecase.InvoiceUseCase,
	usageUC usecase.UsageUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		subUC:   subUC,
		custUC:  custUC,
		planUC:  planUC,
		invUC:   invUC,
		usageUC: usageUC,
		statsUC: statsUC,
		auth:    auth,
		apiKey:  apiKey,
		log:     logger,
	}
}

// Router builds the full route tree. Auth applies to everything under
// /api/v1 except login; /health and /metrics stay open for probes and
// scrapers.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.traceID)
	r.Use(s.requestLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", s.handleSubscriptionList)
				r.Post("/", s.handleSubscriptionCreate)
				r.Get("/{id}", s.handleSubscriptionGet)
				r.Put("/{id}", s.handleSubscriptionUpdate)
				r.Delete("/{id}", s.handleSubscriptionDelete)
				r.Post("/{id}/retry", s.handleSubscriptionRetry)
				r.Post("/{id}/renew", s.handleSubscriptionRenew)
				r.Post("/{id}/suspend", s.handleSubscriptionSuspend)
				r.Post("/{id}/reactivate", s.handleSubscriptionReactivate)
				r.Get("/{id}/usage", s.handleSubscriptionUsage)
				r.Post("/{id}/usage", s.handleUsageReport)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", s.handleCustomerList)
				r.Post("/", s.handleCustomerCreate)
				r.Get("/{id}", s.handleCustomerGet)
				r.Put("/{id}", s.handleCustomerUpdate)
				r.Delete("/{id}", s.handleCustomerDelete)
				r.Get("/{id}/invoices", s.handleCustomerInvoices)
			})

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", s.handlePlanList)
				r.Post("/", s.handlePlanCreate)
				r.Get("/{id}", s.handlePlanGet)
				r.Put("/{id}", s.handlePlanUpdate)
				r.Delete("/{id}", s.handlePlanDelete)
			})

			r.Get("/invoices", s.handleInvoiceList)
			r.Get("/usage", s.handleUsageList)
			r.Get("/stats", s.handleStats)
		})
	})
	return r
}

// traceID tags every request with a fresh trace id, carried in the
// context for log correlation and echoed back to the caller.
func (s *Server) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := uuid.NewString()
		w.Header().Set("X-Trace-Id", tid)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), tid)))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.With(r.Context(), s.log).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.Authenticate(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withOperator(r.Context(), claims.Operator)))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" {
		s.log.Error().Msg("operator API key is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	var req struct {
		APIKey   string `json:"api_key"`
		Operator string `json:"operator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.APIKey != s.apiKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w, req.Operator)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	s.log.Info().Str("operator", req.Operator).Msg("operator logged in")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the domain error taxonomy to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrPaymentMethodImmutable),
		errors.Is(err, domain.ErrInvalidStatusChange):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case domain.IsHardDecline(err):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrGatewayTimeout):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	case errors.Is(err, domain.ErrGatewayUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, domain.ErrRecordLocked):
		http.Error(w, err.Error(), http.StatusLocked)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
