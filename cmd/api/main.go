package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"festreg/internal/config"
	"festreg/internal/database"
	"festreg/internal/gateway/instamojo"
	"festreg/internal/middleware"
	"festreg/internal/modules/admin"
	"festreg/internal/modules/catalog"
	"festreg/internal/modules/payment"
	"festreg/internal/modules/registration"
	"festreg/internal/notification"
	jwtsvc "festreg/internal/pkg/jwt"
	"festreg/internal/repository"
	"festreg/internal/storage/cloudinary"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	loggerf := func(format string, args ...interface{}) {
		sugar.Infof(format, args...)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		sugar.Fatal(err)
	}

	competitionRepo := repository.NewCompetitionRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)

	gateway := instamojo.NewClient(cfg.InstamojoBaseURL, cfg.InstamojoAPIKey, cfg.InstamojoAuthToken)
	uploader := cloudinary.NewUploader(cfg.CloudinaryBaseURL, cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	mailer := notification.NewZeptoClient(cfg.ZeptoURL, cfg.ZeptoToken, cfg.ZeptoFrom, cfg.EmailName)
	notifier := notification.NewDispatcher(notification.NewService(mailer, loggerf), 64, loggerf)
	defer notifier.Close()

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	paymentService := payment.NewService(competitionRepo, registrationRepo, gateway, uploader, notifier, cfg, loggerf)
	paymentHandler := payment.NewHandler(paymentService, cfg.WebhookSecret, loggerf)

	registrationService := registration.NewService(registrationRepo, paymentService)
	registrationHandler := registration.NewHandler(registrationService, loggerf)

	catalogService := catalog.NewService(competitionRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	adminHandler := admin.NewHandler(cfg, j)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.FrontendBaseURL, os.Getenv("CORS_ALLOWED_ORIGINS")))
	r.Use(middleware.ErrorLogger(loggerf))

	api := r.Group("/api")
	{
		// public
		catalogHandler.RegisterPublicRoutes(api)
		registrationHandler.RegisterPublicRoutes(api)
		paymentHandler.RegisterRoutes(api)
		adminHandler.RegisterRoutes(api)

		// admin-protected
		protected := api.Group("/")
		protected.Use(middleware.AdminAuth(j))
		{
			catalogHandler.RegisterAdminRoutes(protected)
			registrationHandler.RegisterAdminRoutes(protected)
		}
	}

	sugar.Infof("listening on %s", cfg.RunAddress)
	if err := r.Run(cfg.RunAddress); err != nil {
		sugar.Fatal(err)
	}
}
