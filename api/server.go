package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"moddingway/appeals"
	"moddingway/ban"
	"moddingway/bot"
	"moddingway/exile"
	"moddingway/logging"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/strikes"
	"moddingway/utils/database"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
)

const countCacheTTL = 30 * time.Second

// Deps is everything the REST API reads from or writes through.
type Deps struct {
	Config    *model.Config
	Store     *database.Store
	Ledger    *strikes.Ledger
	Exiles    *exile.Manager
	Bans      *ban.Service
	Appeals   *appeals.Service
	Members   model.MemberLookup
	Scheduler *bot.Scheduler
	Metrics   *metrics.MetricsRegistry
	StartedAt time.Time
}

// Server serves the moderation REST API.
type Server struct {
	deps    Deps
	counts  *cache.Cache
	limiter *rateLimiter
}

func NewServer(d Deps) *Server {
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}
	return &Server{
		deps:    d,
		counts:  cache.New(countCacheTTL, 2*countCacheTTL),
		limiter: newRateLimiter(d.Config.API.RateLimit, d.Config.API.RateBurst),
	}
}

// Router builds the chi router with every route and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware(s.deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.deps.Config.API.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", headerAPIKey, headerRequestID},
		ExposedHeaders:   []string{headerRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthCheck", s.healthCheck)
	r.Handle("/metrics", s.deps.Metrics.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(s.limiter.Middleware)
		v1.Use(APIKeyMiddleware(s.deps.Config.API.Key))

		v1.Get("/users", s.listUsers)
		v1.Get("/users/{discordID}", s.getUser)
		v1.Get("/users/{discordID}/strikes", s.getUserStrikes)
		v1.Get("/users/{discordID}/exiles", s.getUserExiles)
		v1.Get("/mods", s.listMods)
		v1.Get("/banned-users", s.listBannedUsers)
		v1.Post("/banned-users", s.addBannedUser)
		v1.Get("/exiles/active", s.listActiveExiles)
		v1.Post("/strikes", s.addStrike)
		v1.Post("/exiles", s.addExile)
		v1.Get("/banforms", s.listBanForms)
		v1.Get("/banforms/{formID}", s.getBanForm)
		v1.Post("/banforms", s.submitBanForm)
		v1.Patch("/banforms", s.reviewBanForm)
		v1.Get("/system", s.systemInfo)
		v1.Get("/jobs", s.listJobs)
		v1.Post("/jobs/{name}/run", s.runJob)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, time.Now(), http.StatusNotFound, "Not found")
	})
	return r
}

// Run serves on the configured address until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.deps.Config.API.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("API server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info("Shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	type serviceStatus struct {
		Status  string `json:"status"`
		Details string `json:"details"`
	}
	type health struct {
		Status   string                   `json:"status"`
		Uptime   string                   `json:"uptime"`
		Services map[string]serviceStatus `json:"services"`
	}

	db := serviceStatus{Status: "ok", Details: "Database connected"}
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		db = serviceStatus{Status: "down", Details: err.Error()}
	}
	resp := health{
		Status:   db.Status,
		Uptime:   time.Since(s.deps.StartedAt).Round(time.Second).String(),
		Services: map[string]serviceStatus{"database": db},
	}

	code, status := http.StatusOK, statusOK
	if resp.Status != "ok" {
		code, status = http.StatusServiceUnavailable, statusError
	}
	writeJSON(w, code, Response{
		Status:       status,
		Message:      "Health check",
		ResponseTime: responseTime(start),
		Data:         resp,
	})
}
