package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sleepleague/sleepleague/internal/backup"
	"github.com/sleepleague/sleepleague/internal/config"
	"github.com/sleepleague/sleepleague/internal/metrics"
	"github.com/sleepleague/sleepleague/internal/scoring"
)

type Server struct {
	srv    *http.Server
	db     *sql.DB
	engine *scoring.Engine
	backup *backup.Client
	cfg    *config.Config
	log    *zap.Logger
}

func NewServer(cfg *config.Config, database *sql.DB, engine *scoring.Engine, bc *backup.Client, log *zap.Logger) *Server {
	s := &Server{
		db:     database,
		engine: engine,
		backup: bc,
		cfg:    cfg,
		log:    log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/groups", s.handleCreateGroup)
		r.Post("/groups/join", s.handleJoinGroup)

		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Post("/sleep", s.handleSubmitSleep)
			r.Post("/rules", s.handleSetRules)
			r.Post("/recalculate", s.handleRecalculate)
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/scorecard", s.handleScorecard)
			r.Get("/history.xlsx", s.handleHistoryExport)
		})

		r.Post("/admin/backup", s.handleAdminBackup)
	})

	s.srv = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down with a short grace
// period.
func (s *Server) Start(ctx context.Context) {
	go func() {
		_ = s.srv.ListenAndServe()
	}()
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shCtx)
	}()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	_, _ = w.Write([]byte("ok"))
}
