// Package app wires configuration, storage, the question pipeline and the
// transport surfaces into one runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ashureev/studyguide/internal/agent"
	"github.com/ashureev/studyguide/internal/api"
	"github.com/ashureev/studyguide/internal/config"
	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/llm"
	"github.com/ashureev/studyguide/internal/logging"
	"github.com/ashureev/studyguide/internal/mcptools"
	"github.com/ashureev/studyguide/internal/probe"
	"github.com/ashureev/studyguide/internal/progress"
	"github.com/ashureev/studyguide/internal/recommend"
	"github.com/ashureev/studyguide/internal/store"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App holds the initialized components.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Repo       store.Repository
	Progress   *progress.Store
	Curriculum *curriculum.Curriculum
	Model      llm.Generator
	Service    *agent.Service
}

// Option customizes New.
type Option func(*options)

type options struct {
	generator llm.Generator
}

// WithGenerator replaces the configured hosted model.
func WithGenerator(g llm.Generator) Option {
	return func(o *options) { o.generator = g }
}

// New builds every component from cfg. Callers must Close the result.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	logger = logging.OrNop(logger)
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cat, err := curriculum.Load(cfg.CurriculumPath)
	if err != nil {
		return nil, fmt.Errorf("load curriculum: %w", err)
	}

	repo, err := store.Open(cfg.Progress, logger)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}

	ps, err := progress.Open(ctx, repo,
		progress.WithBasis(cfg.Progress.PercentBasis),
		progress.WithCatalog(cat),
		progress.WithLogger(logger),
	)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("load progress: %w", err)
	}

	gen := o.generator
	if gen == nil {
		gen, err = llm.New(ctx, cfg.Model, logger)
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("init model: %w", err)
		}
	}

	svc, err := agent.NewService(gen,
		agent.WithLogger(logger),
		agent.WithCoordinatorContext(func(context.Context) string {
			return recommend.Briefing(ps.Summary(), recommend.Next(ps, cat), cat)
		}),
	)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("init question service: %w", err)
	}

	logger.Info("application initialized",
		zap.String("provider", cfg.Model.Provider),
		zap.String("model", cfg.Model.ModelID),
		zap.Bool("persist", cfg.Progress.Persist),
		zap.String("backend", cfg.Progress.Backend),
		zap.Int("sections", cat.Count("")))

	return &App{
		Config:     cfg,
		Logger:     logger,
		Repo:       repo,
		Progress:   ps,
		Curriculum: cat,
		Model:      gen,
		Service:    svc,
	}, nil
}

// Close releases the progress store.
func (a *App) Close() error {
	return a.Repo.Close()
}

// Handler builds the HTTP API. The returned stop func releases the rate
// limiter's background goroutine.
func (a *App) Handler() (http.Handler, func()) {
	limiter := api.NewRateLimiter(a.Config.RateLimit.RequestsPerWindow, a.Config.RateLimit.WindowDuration)
	base := api.NewHandler(a.Progress, a.Curriculum, a.Repo, a.Logger)

	backend := a.Config.Progress.Backend
	if !a.Config.Progress.Persist {
		backend = "memory"
	}
	h := api.NewRouter(api.Routes{
		Ask:      api.NewAskHandler(a.Service, limiter, a.Logger),
		Progress: api.NewProgressHandler(base),
		Status: api.NewStatusHandler(base, api.StatusInfo{
			Provider: a.Config.Model.Provider,
			Model:    a.Config.Model.ModelID,
			Backend:  backend,
			Basis:    a.Progress.Basis(),
		}),
		CORSOrigins: a.Config.CORSOrigins,
		Logger:      a.Logger,
	})
	return h, limiter.Stop
}

// MCPServer builds the MCP server over the same components.
func (a *App) MCPServer() *server.MCPServer {
	return mcptools.NewServer(mcptools.Deps{
		Asker:      a.Service,
		Progress:   a.Progress,
		Curriculum: a.Curriculum,
	})
}

// Serve runs the HTTP API and the gRPC health probe until ctx is cancelled
// or either fails, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	handler, stopLimiter := a.Handler()
	defer stopLimiter()

	srv := &http.Server{
		Addr:         ":" + a.Config.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: a.Config.Model.Timeout*2 + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+a.Config.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	health := probe.NewServer(a.Repo, a.Config.HealthInterval, a.Logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return health.Serve(gctx, lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.Logger.Info("server stopped successfully")
	return nil
}
