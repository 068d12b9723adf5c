// Package routes wires the HTTP surface of the catalog.
package routes

import (
	"net/http"

	"gamecatalog/cache"
	"gamecatalog/config"
	"gamecatalog/handlers"
	"gamecatalog/middleware"
	"gamecatalog/monitoring"
	"gamecatalog/repository"
	"gamecatalog/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Server bundles the services behind the router.
type Server struct {
	Config  *config.Config
	Log     *logrus.Logger
	DB      *gorm.DB
	Cache   *cache.Cache
	Metrics *monitoring.Metrics

	Gate    *service.Gate
	Auth    service.AuthService
	Games   service.GameService
	Reviews service.ReviewService
	Users   service.UserService
}

// NewServer builds repositories and services on top of gdb. c and metrics
// may be nil.
func NewServer(cfg *config.Config, log *logrus.Logger, gdb *gorm.DB, c *cache.Cache, metrics *monitoring.Metrics) (*Server, error) {
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}

	users := repository.NewUserRepository(gdb)
	return &Server{
		Config:  cfg,
		Log:     log,
		DB:      gdb,
		Cache:   c,
		Metrics: metrics,
		Gate:    service.NewGate(tokens),
		Auth:    service.NewAuthService(users, tokens, metrics, log),
		Games:   service.NewGameService(repository.NewGameRepository(gdb), c, log),
		Reviews: service.NewReviewService(repository.NewReviewRepository(gdb), metrics, log),
		Users:   service.NewUserService(users, repository.NewStatsRepository(gdb), log),
	}, nil
}

// Setup configures all HTTP routes.
func Setup(s *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(s.Log))
	router.Use(s.Metrics.Middleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	authHandler := handlers.NewAuthHandler(s.Auth)
	gameHandler := handlers.NewGameHandler(s.Games)
	reviewHandler := handlers.NewReviewHandler(s.Reviews)
	userHandler := handlers.NewUserHandler(s.Users)
	healthHandler := handlers.NewHealthHandler(s.DB, s.Cache)

	user := func(h middleware.PrincipalHandler) gin.HandlerFunc { return middleware.RequireUser(s.Gate, h) }
	admin := func(h middleware.PrincipalHandler) gin.HandlerFunc { return middleware.RequireAdmin(s.Gate, h) }

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", s.Metrics.Handler())

	auth := router.Group("/auth")
	auth.Use(middleware.RateLimit(s.Cache, "auth", s.Config.LoginRateLimit, s.Config.LoginRateWindow, s.Log))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	router.GET("/games", gameHandler.GetGames)
	router.GET("/games/:id", gameHandler.GetGame)

	reviews := router.Group("/reviews")
	{
		reviews.GET("", admin(reviewHandler.GetPendingReviews))
		reviews.GET("/game/:id", reviewHandler.GetApprovedReviews)
		reviews.POST("/game/:id", user(reviewHandler.CreateReview))
		reviews.GET("/game/:id/my", user(reviewHandler.GetMyReview))
		reviews.PUT("/game/:id/my", user(reviewHandler.UpdateMyReview))
		reviews.PUT("/:id/status", admin(reviewHandler.SetReviewStatus))
		reviews.DELETE("/:id", admin(reviewHandler.DeleteReview))
	}

	router.GET("/users", admin(userHandler.GetUsers))
	router.PUT("/users/:id", admin(userHandler.SetUserStatus))
	router.GET("/admin/stats", admin(userHandler.GetDashboardStats))

	return router
}
