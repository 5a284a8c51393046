// Package api wires the http routes to their handlers.
package api

import (
	"context"

	"github.com/flakewatch/flakewatch/config"
	"github.com/flakewatch/flakewatch/pkg/api/flakytest"
	"github.com/flakewatch/flakewatch/pkg/api/health"
	"github.com/flakewatch/flakewatch/pkg/api/middleware"
	"github.com/flakewatch/flakewatch/pkg/api/project"
	"github.com/flakewatch/flakewatch/pkg/api/report"
	"github.com/flakewatch/flakewatch/pkg/constants"
	"github.com/flakewatch/flakewatch/pkg/core"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Router represents the routes for the http server.
type Router struct {
	cfg                   *config.Config
	signalCtx             context.Context
	projectStore          core.ProjectStore
	submissionStore       core.SubmissionStore
	outcomeStore          core.TestOutcomeStore
	flakyTestStore        core.FlakyTestStore
	reportNormalizer      core.ReportNormalizer
	analysisQueueProducer core.QueueProducer
	logger                lumber.Logger
}

// New returns a New Router
func New(
	signalCtx context.Context,
	cfg *config.Config,
	dbStores *core.DBStores,
	reportNormalizer core.ReportNormalizer,
	analysisQueueProducer core.QueueProducer,
	logger lumber.Logger) Router {
	return Router{
		cfg:                   cfg,
		signalCtx:             signalCtx,
		projectStore:          dbStores.ProjectStore,
		submissionStore:       dbStores.SubmissionStore,
		outcomeStore:          dbStores.OutcomeStore,
		flakyTestStore:        dbStores.FlakyTestStore,
		reportNormalizer:      reportNormalizer,
		analysisQueueProducer: analysisQueueProducer,
		logger:                logger,
	}
}

// Handler function will perform all route operations
func (r *Router) Handler() *gin.Engine {
	r.logger.Infof("Setting up routes")
	router := gin.New()
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := configureValidator(v); err != nil {
			r.logger.Fatalf("failed to configure validator %v", err)
		}
	}
	// skip /health API from logs as will be required in probes
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/health"))
	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	router.Use(gin.Recovery())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("authorization", "cache-control", "pragma", "x-api-token")
	router.Use(cors.New(corsConfig))
	router.Use(otelgin.Middleware(constants.ServiceName))
	pprof.Register(router)

	router.GET("/health", health.Handler(r.signalCtx))

	// project provisioning is the only unauthenticated route
	router.POST("/projects", project.HandleCreate(r.projectStore, r.logger))

	projectRoutes := router.Group("/projects")
	projectRoutes.Use(middleware.HandleProjectAuthentication(r.projectStore, r.logger))
	projectRoutes.GET("", project.HandleFind(r.projectStore, r.logger))
	projectRoutes.DELETE("", project.HandleDelete(r.projectStore, r.logger))

	reportRoutes := router.Group("/reports")
	reportRoutes.Use(middleware.HandleProjectAuthentication(r.projectStore, r.logger))
	reportRoutes.POST("", report.HandleCreate(r.submissionStore, r.reportNormalizer,
		r.analysisQueueProducer, r.logger))
	reportRoutes.GET("", middleware.HandlePage(), report.HandleList(r.submissionStore, r.logger))
	reportRoutes.GET("/:submissionID/outcomes", middleware.HandlePage(),
		report.HandleListOutcomes(r.outcomeStore, r.logger))

	flakyRoutes := router.Group("/flaky-tests")
	flakyRoutes.Use(middleware.HandleProjectAuthentication(r.projectStore, r.logger))
	flakyRoutes.GET("", middleware.HandlePage(), flakytest.HandleList(r.flakyTestStore, r.logger))
	flakyRoutes.PATCH("/:recordID/ignore", flakytest.HandleIgnore(r.flakyTestStore, r.logger))
	flakyRoutes.PATCH("/:recordID/unignore", flakytest.HandleUnignore(r.flakyTestStore, r.logger))

	return router
}
