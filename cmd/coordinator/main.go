package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pairpad/coordinator/config"
	"github.com/pairpad/coordinator/internal/handlers"
	"github.com/pairpad/coordinator/internal/keepalive"
	"github.com/pairpad/coordinator/internal/rooms"
	"github.com/pairpad/coordinator/internal/store"
	"github.com/pairpad/coordinator/internal/ws"
)

func main() {
	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx := context.Background()

	rdb, err := store.Connect(ctx, cfg.Redis)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer rdb.Close()
	logrus.Info("Redis connection established")

	hub := ws.NewHub()
	coord := rooms.NewCoordinator(store.NewRepository(rdb), hub)

	// Keep the application database from idling out while the coordinator
	// is up. Optional: skipped when no URI is configured.
	if cfg.Mongo.URI != "" {
		pinger, err := keepalive.New(ctx, cfg.Mongo)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		defer pinger.Close(ctx)
		go pinger.Run(ctx)
		logrus.Info("Database keep-alive started")
	}

	router := gin.Default()
	router.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/auth/login", handlers.Login(cfg.JWTSecret))
	}

	router.GET("/ws", handlers.HandleEvents(hub, coord, cfg.JWTSecret))

	logrus.WithField("port", cfg.Port).Info("Starting session coordinator")
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}
