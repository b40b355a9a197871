package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/api/handlers"
	"github.com/K-vibe-sat-canh/autoscaling/api/middleware"
	"github.com/K-vibe-sat-canh/autoscaling/api/websocket"
	"github.com/K-vibe-sat-canh/autoscaling/internal/auth"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/config"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database/queries"
	"github.com/gin-gonic/gin"
)

const maxRequestBody = 1 << 20 // 1 MiB

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      *config.Config
	db          *database.DB
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
	manager     handlers.FleetManager
	version     string
}

// NewServer builds the HTTP API. db may be nil when persistence is disabled;
// routes that need the database are not registered in that case.
func NewServer(cfg *config.Config, db *database.DB, manager handlers.FleetManager, version string) *Server {
	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	authService := auth.NewService(cfg.API.JWTSecret, cfg.API.JWTIssuer, cfg.API.JWTDuration)
	wsHub := websocket.NewHub(cfg.WebSocket)

	s := &Server{
		router:      router,
		config:      cfg,
		db:          db,
		authService: authService,
		wsHub:       wsHub,
		manager:     manager,
		version:     version,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if manager != nil {
		eventsChan := manager.SubscribeAllEvents()
		s.wsBridge = websocket.NewEventBridge(wsHub, eventsChan)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS(s.corsConfig()))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestSizeLimit(maxRequestBody))

	rateLimiter := middleware.NewRateLimiter(s.config.API.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) corsConfig() middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(s.config.API.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = s.config.API.CORS.AllowedOrigins
	}
	if len(s.config.API.CORS.AllowedMethods) > 0 {
		cors.AllowMethods = s.config.API.CORS.AllowedMethods
	}
	if len(s.config.API.CORS.AllowedHeaders) > 0 {
		cors.AllowHeaders = s.config.API.CORS.AllowedHeaders
	}
	if len(s.config.API.CORS.ExposedHeaders) > 0 {
		cors.ExposeHeaders = s.config.API.CORS.ExposedHeaders
	}
	return cors
}

func (s *Server) setupRoutes() {
	var (
		fleetRepo *queries.FleetRepository
		userRepo  *queries.UserRepository
		loadRepo  *queries.LoadHistoryRepository
		eventRepo *queries.ScalingEventRepository
		simRepo   *queries.SimulationRepository
	)
	if s.db != nil {
		fleetRepo = queries.NewFleetRepository(s.db.DB)
		userRepo = queries.NewUserRepository(s.db.DB)
		loadRepo = queries.NewLoadHistoryRepository(s.db.DB)
		eventRepo = queries.NewScalingEventRepository(s.db.DB)
		simRepo = queries.NewSimulationRepository(s.db.DB)
	}

	healthHandler := handlers.NewHealthHandler(s.db, s.version)
	simulationHandler := handlers.NewSimulationHandler(fleetRepo, loadRepo, simRepo, s.config.Simulation)
	predictionHandler := handlers.NewPredictionHandler(loadRepo, s.manager, s.config.Predictor)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Simulations are pure computation and work without persistence.
	s.router.POST("/simulations", simulationHandler.Run)

	if s.db == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(userRepo, s.authService, s.config.API.JWTDuration)
	fleetHandler := handlers.NewFleetHandler(fleetRepo, s.manager, s.config.LoadSource, s.config.Scaler)
	scalingHandler := handlers.NewScalingHandler(fleetRepo, eventRepo, s.manager, s.config.API.DefaultLimit, s.config.API.MaxLimit)

	authGroup := s.router.Group("/auth")
	authGroup.Use(middleware.AuthRateLimiter())
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		protected.GET("/fleets", fleetHandler.List)
		protected.POST("/fleets", fleetHandler.Create)
		protected.GET("/fleets/:id", fleetHandler.Get)
		protected.PUT("/fleets/:id", fleetHandler.Update)
		protected.DELETE("/fleets/:id", fleetHandler.Delete)
		protected.GET("/fleets/:id/status", fleetHandler.GetStatus)
		protected.POST("/fleets/:id/start", fleetHandler.Start)
		protected.POST("/fleets/:id/stop", fleetHandler.Stop)

		protected.POST("/fleets/:id/decide", scalingHandler.Decide)
		protected.GET("/fleets/:id/events", scalingHandler.ListFleetEvents)
		protected.GET("/fleets/:id/events/stats", scalingHandler.GetStats)
		protected.GET("/events/recent", scalingHandler.ListRecentEvents)

		protected.POST("/fleets/:id/predict", predictionHandler.Predict)

		protected.GET("/simulations", simulationHandler.List)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  s.config.API.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
