package main

import (
	"context"
	"log"
	"net/http"

	"campus-food-api/config"
	"campus-food-api/handlers"
	"campus-food-api/media"
	"campus-food-api/middleware"
	"campus-food-api/rankings"
	"campus-food-api/routes"
	"campus-food-api/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.OpenDB(cfg.DBPath)
	if err != nil {
		logger.Fatalw("database unavailable", "error", err)
	}
	if err := config.Migrate(db); err != nil {
		logger.Fatalw("migration failed", "error", err)
	}

	mediaStore, err := media.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL, cfg.MediaMaxBytes)
	if err != nil {
		logger.Fatalw("media store unavailable", "error", err)
	}

	h := &handlers.Handler{
		Users:       services.NewUserService(db, logger),
		Restaurants: services.NewRestaurantService(db, mediaStore, logger),
		Reviews:     services.NewReviewService(db, logger),
		Orders:      services.NewOrderService(db, logger),
		Tags:        services.NewTagService(db),
		Rankings:    rankings.NewService(db),
		Auth:        middleware.Auth{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL},
		Log:         logger,

		MaxUploadBytes: cfg.MediaMaxBytes,
	}

	if cfg.AdminAccount != "" && cfg.AdminPassword != "" {
		if _, err := h.Users.EnsureAdmin(context.Background(), cfg.AdminAccount, cfg.AdminPassword); err != nil {
			logger.Fatalw("failed to bootstrap admin", "error", err)
		}
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Campus Food API",
		})
	})
	r.Static(cfg.MediaBaseURL, cfg.MediaDir)

	routes.SetupRoutes(r, h)

	logger.Infow("server starting", "addr", cfg.Addr, "env", cfg.AppEnv)
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
