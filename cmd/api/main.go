package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mechbook/internal/config"
	"mechbook/internal/database"
	"mechbook/internal/middleware"
	"mechbook/internal/modules/auth"
	"mechbook/internal/modules/booking"
	"mechbook/internal/modules/catalog"
	"mechbook/internal/modules/payment"
	jwtsvc "mechbook/internal/pkg/jwt"
	"mechbook/internal/pkg/logger"
	"mechbook/internal/realtime"
	"mechbook/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Init(cfg.AppEnv); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zlog := logger.Get()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := realtime.NewHub()
	defer hub.Close()

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(serviceRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingService := booking.NewService(bookingRepo, serviceRepo, userRepo, hub)
	bookingHandler := booking.NewHandler(bookingService)

	paymentService := payment.NewService(paymentRepo, bookingRepo)
	paymentHandler := payment.NewHandler(paymentService)

	realtimeHandler := realtime.NewHandler(hub)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(zlog))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			catalogHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
			realtimeHandler.RegisterRoutes(protected)
		}
	}

	zlog.Info("starting api", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
