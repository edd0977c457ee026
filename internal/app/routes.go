package app

import (
	"github.com/gin-gonic/gin"
	"github.com/sherpa-api/core/internal/modules/collaborator"
	"github.com/sherpa-api/core/internal/modules/interpret"
	"github.com/sherpa-api/core/internal/modules/qa"
	"github.com/sherpa-api/core/internal/modules/session"
	"github.com/sherpa-api/core/internal/modules/summary"
)

// registerRoutes wires every module handler under /v1.
func (a *App) registerRoutes(collab collaborator.Client) {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	v1 := a.router.Group("/v1")

	session.NewHandler(a.sessions).RegisterRoutes(v1)

	interpretSvc := interpret.NewService(a.sessions, collab, a.logger)
	interpret.NewHandler(interpretSvc).RegisterRoutes(v1)

	qa.NewHandler(collab, a.logger).RegisterRoutes(v1)

	summary.NewHandler(a.pipeline).RegisterRoutes(v1)
}
