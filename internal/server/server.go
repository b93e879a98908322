// Package server provides the HTTP server and routing for Wheelhouse.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/config"
	"github.com/greenmangroup/wheelhouse/internal/database"
	"github.com/greenmangroup/wheelhouse/internal/events"
	"github.com/greenmangroup/wheelhouse/internal/metrics"
	"github.com/greenmangroup/wheelhouse/internal/modules/accounts"
	accountshandlers "github.com/greenmangroup/wheelhouse/internal/modules/accounts/handlers"
	"github.com/greenmangroup/wheelhouse/internal/modules/bankroll"
	bankrollhandlers "github.com/greenmangroup/wheelhouse/internal/modules/bankroll/handlers"
	"github.com/greenmangroup/wheelhouse/internal/modules/cash_flows"
	cashflowshandlers "github.com/greenmangroup/wheelhouse/internal/modules/cash_flows/handlers"
	"github.com/greenmangroup/wheelhouse/internal/modules/commissions"
	commissionshandlers "github.com/greenmangroup/wheelhouse/internal/modules/commissions/handlers"
	"github.com/greenmangroup/wheelhouse/internal/modules/ledger"
	ledgerhandlers "github.com/greenmangroup/wheelhouse/internal/modules/ledger/handlers"
	"github.com/greenmangroup/wheelhouse/internal/modules/tickers"
	tickershandlers "github.com/greenmangroup/wheelhouse/internal/modules/tickers/handlers"
	"github.com/greenmangroup/wheelhouse/internal/modules/trades"
	tradeshandlers "github.com/greenmangroup/wheelhouse/internal/modules/trades/handlers"
)

// Config holds everything the server wires into routes. Repositories and
// services are constructed in main and shared with the scheduler.
type Config struct {
	Log      zerolog.Logger
	Cfg      *config.Config
	LedgerDB *database.DB
	CacheDB  *database.DB
	Bus      *events.Bus

	AccountsRepo    *accounts.Repository
	TickersRepo     *tickers.Repository
	TickersService  *tickers.Service
	CashFlowsRepo   *cash_flows.Repository
	CommissionsRepo *commissions.Repository
	TradesService   *trades.Service
	LedgerService   *ledger.Service
	BankrollService *bankroll.Service
}

// Server is the HTTP server. It owns the router, the websocket hub, and
// the system handlers; everything else is borrowed from Config.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config
	deps   Config
	hub    *Hub
	system *SystemHandlers
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg.Cfg,
		deps:   cfg,
		hub:    NewHub(cfg.Bus, cfg.Log),
		system: NewSystemHandlers(cfg.Log, cfg.Cfg.DataDir, cfg.LedgerDB, cfg.CacheDB),
	}

	s.setupMiddleware(cfg.Cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Cfg.Host, cfg.Cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging + Prometheus instruments
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.system.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.router.Get("/ws", s.hub.HandleWS)

	accountsHandler := accountshandlers.NewHandler(s.deps.AccountsRepo, s.deps.Bus, s.log)
	tickersHandler := tickershandlers.NewHandler(s.deps.TickersService, s.deps.TickersRepo, s.log)
	cashFlowsHandler := cashflowshandlers.NewHandler(s.deps.CashFlowsRepo, s.deps.Bus, s.log)
	commissionsHandler := commissionshandlers.NewHandler(s.deps.CommissionsRepo, s.deps.Bus, s.log)
	tradesHandler := tradeshandlers.NewHandler(s.deps.TradesService, s.log)
	ledgerHandler := ledgerhandlers.NewHandler(s.deps.LedgerService, s.deps.AccountsRepo, s.deps.TickersRepo, s.log)
	bankrollHandler := bankrollhandlers.NewHandler(s.deps.BankrollService, s.log)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.system.HandleHealth)

		r.Route("/system", func(r chi.Router) {
			r.Get("/resources", s.system.HandleResources)
			r.Get("/databases", s.system.HandleDatabases)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountsHandler.HandleList)
			r.Post("/", accountsHandler.HandleCreate)
			r.Get("/{id}", accountsHandler.HandleGet)
		})

		r.Get("/tickers", tickersHandler.HandleList)
		r.Get("/company-info/{symbol}", tickersHandler.HandleCompanyInfo)
		r.Get("/top-symbols", tickersHandler.HandleTopSymbols)

		r.Route("/cash-flows", func(r chi.Router) {
			r.Get("/", cashFlowsHandler.HandleList)
			r.Post("/", cashFlowsHandler.HandleCreate)
			r.Delete("/{id}", cashFlowsHandler.HandleDelete)
			r.Get("/balance-history", cashFlowsHandler.HandleBalanceHistory)
		})

		r.Route("/commissions", func(r chi.Router) {
			r.Get("/", commissionsHandler.HandleList)
			r.Post("/", commissionsHandler.HandleCreate)
		})

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", tradesHandler.HandleList)
			r.Post("/", tradesHandler.HandleCreate)
			r.Get("/summary", tradesHandler.HandleSummary)
			r.Get("/chart", tradesHandler.HandleChart)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tradesHandler.HandleGet)
				r.Put("/", tradesHandler.HandleUpdate)
				r.Delete("/", tradesHandler.HandleDelete)
				r.Post("/roll", tradesHandler.HandleRoll)
				r.Get("/chain", tradesHandler.HandleChain)
				r.Get("/analytics", tradesHandler.HandleAnalytics)
				r.Get("/history", tradesHandler.HandleStatusHistory)
			})
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", ledgerHandler.HandleGet)
			r.Post("/rebuild", ledgerHandler.HandleRebuild)
		})

		r.Get("/bankroll", bankrollHandler.HandleGet)
	})
}

// Start starts the websocket hub and the HTTP server. Blocks until the
// server stops.
func (s *Server) Start() error {
	s.hub.Start()
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.hub.Close()
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests and records the Prometheus
// request counter and latency histogram.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", elapsed).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
