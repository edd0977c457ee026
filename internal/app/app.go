package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sherpa-api/core/internal/config"
	"github.com/sherpa-api/core/internal/middleware"
	"github.com/sherpa-api/core/internal/modules/collaborator"
	"github.com/sherpa-api/core/internal/modules/session"
	"github.com/sherpa-api/core/internal/modules/summary"
	pkgcron "github.com/sherpa-api/core/internal/pkg/cron"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler

	sessions *session.Service
	pipeline *summary.Pipeline
}

// New initializes the application: config, stores, collaborator, routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.ArtifactDir(), 0o755); err != nil {
		return nil, fmt.Errorf("artifact dir: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Transcribed-Question", "X-Answer-Text"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	collab := collaborator.NewService(cfg.AI, cfg.CollaboratorTimeout(), logger)
	sessions := session.NewService(cfg.SessionTTL(), logger)
	jobs := summary.NewJobStore(logger)
	cache := summary.NewArtifactCache(logger)
	pipeline := summary.NewPipeline(jobs, cache, sessions, collab, cfg.ArtifactDir(), logger)

	ctx, cancel := context.WithCancel(context.Background())

	sched := pkgcron.New()
	registerCronJobs(sched, cfg, sessions, cache, pipeline, logger)
	go sched.Start(ctx)

	app := &App{
		cfg:      cfg,
		router:   router,
		logger:   logger,
		cancel:   cancel,
		sched:    sched,
		sessions: sessions,
		pipeline: pipeline,
	}
	app.registerRoutes(collab)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cleans up background goroutines.
func (a *App) Shutdown() { a.cancel() }
