package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/draft-payout-sim/internal/api/handlers"
	"github.com/stitts-dev/draft-payout-sim/internal/api/middleware"
	"github.com/stitts-dev/draft-payout-sim/internal/services"
	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
	"github.com/stitts-dev/draft-payout-sim/internal/websocket"
	"github.com/stitts-dev/draft-payout-sim/pkg/config"
)

// Dependencies are the wired services the router exposes
type Dependencies struct {
	Simulations *services.SimulationService
	Export      *services.ExportService
	Hub         *websocket.Hub
	Checks      map[string]handlers.ReadinessCheck
	Config      *config.Config
	Logger      *logrus.Logger
}

// NewRouter builds the gin engine with middleware, health checks, the
// websocket endpoint and the versioned API
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.Config.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(deps.Checks)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	if deps.Hub != nil {
		router.GET("/ws/simulation-progress/:client_id", deps.Hub.HandleWebSocket)
	}

	SetupRoutes(router.Group("/api/v1"), deps)

	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	simulationHandler := handlers.NewSimulationHandler(deps.Simulations, deps.Export, deps.Config, deps.Logger)
	projectionHandler := handlers.NewProjectionHandler(deps.Simulations.Projections(), simulator.DefaultPayoutTable)

	// Simulation endpoints
	simulate := []gin.HandlerFunc{simulationHandler.RunSimulation}
	if deps.Config.SimulateRateLimit > 0 {
		limiter := middleware.NewIPRateLimiter(deps.Config.SimulateRateLimit, deps.Config.SimulateRateBurst)
		simulate = append([]gin.HandlerFunc{middleware.RateLimit(limiter)}, simulate...)
	}
	group.POST("/simulate", simulate...)
	group.GET("/simulations", simulationHandler.ListSimulations)
	group.GET("/simulations/:id", simulationHandler.GetSimulation)
	group.GET("/simulations/:id/export", simulationHandler.ExportSimulation)

	// Reference data
	group.GET("/projections", projectionHandler.GetProjections)
	group.GET("/payouts", projectionHandler.GetPayouts)
}
