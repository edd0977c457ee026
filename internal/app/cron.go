package app

import (
	"context"
	"fmt"

	"github.com/sherpa-api/core/internal/config"
	"github.com/sherpa-api/core/internal/modules/session"
	"github.com/sherpa-api/core/internal/modules/summary"
	pkgcron "github.com/sherpa-api/core/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, cfg *config.AppConfig, sessions *session.Service, cache *summary.ArtifactCache, pipeline *summary.Pipeline, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "cleanup_sessions",
		Description: "Remove expired page sessions",
		Interval:    cfg.SweepInterval(),
		Fn: func(ctx context.Context) error {
			removed := sessions.Cleanup()
			if removed > 0 {
				cronLogger.Info(fmt.Sprintf("removed %d expired sessions", removed))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "sweep_artifact_cache",
		Description: "Delete cached summaries past their max age",
		Interval:    cfg.SweepInterval(),
		Fn: func(ctx context.Context) error {
			removed := cache.Sweep(cfg.CacheMaxAge())
			if removed > 0 {
				cronLogger.Info(fmt.Sprintf("swept %d cache entries", removed))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "sweep_jobs",
		Description: "Delete finished summary jobs past their max age",
		Interval:    cfg.SweepInterval(),
		Fn: func(ctx context.Context) error {
			removed := pipeline.SweepJobs(cfg.JobMaxAge())
			if removed > 0 {
				cronLogger.Info(fmt.Sprintf("swept %d finished jobs", removed))
			}
			return nil
		},
	})
}
