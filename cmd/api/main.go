package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"servicehub/internal/config"
	"servicehub/internal/database"
	"servicehub/internal/logging"
	"servicehub/internal/middleware"
	"servicehub/internal/modules/auth"
	"servicehub/internal/modules/booking"
	"servicehub/internal/modules/catalog"
	"servicehub/internal/modules/chat"
	"servicehub/internal/modules/notification"
	"servicehub/internal/modules/profile"
	jwtsvc "servicehub/internal/pkg/jwt"
	"servicehub/internal/realtime"
	"servicehub/internal/repository"
	"servicehub/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, unread cache disabled")
			redisClient = nil
		}
		cancel()
	}

	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	unreadCache := repository.NewUnreadCache(redisClient, 5*time.Minute)

	store := storage.NewLocalStore(cfg.UploadsDir, cfg.StaticURLBase)
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	hub := realtime.NewHub()
	defer hub.Close()

	notificationService := notification.NewService(notificationRepo, unreadCache, hub, logger)
	authService := auth.NewService(userRepo, j)
	bookingService := booking.NewService(bookingRepo, serviceRepo, notificationService, logger)
	chatService := chat.NewService(messageRepo, bookingRepo, userRepo, notificationService, unreadCache, hub, logger)
	catalogService := catalog.NewService(serviceRepo, store, logger)
	profileService := profile.NewService(userRepo, store, logger)

	authHandler := auth.NewHandler(authService)
	bookingHandler := booking.NewHandler(bookingService)
	chatHandler := chat.NewHandler(chatService)
	notificationHandler := notification.NewHandler(notificationService)
	catalogHandler := catalog.NewHandler(catalogService)
	profileHandler := profile.NewHandler(profileService)
	wsHandler := realtime.NewWSHandler(hub, j, logger)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(logger))

	r.Static(cfg.StaticURLBase, store.BaseDir())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)

		v1.GET("/ws", wsHandler.HandleWebSocket)

		protected := v1.Group("/")
		protected.Use(middleware.AuthRequired(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
			profileHandler.RegisterRoutes(protected)

			provider := protected.Group("/")
			provider.Use(middleware.RequireRole("provider", "admin"))
			{
				catalogHandler.RegisterProviderRoutes(provider)
			}
		}
	}

	logger.Info().Str("port", cfg.Port).Msg("starting api server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
