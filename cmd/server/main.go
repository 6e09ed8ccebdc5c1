package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"coopsave/internal/config"
	"coopsave/internal/handlers"
	"coopsave/internal/middleware"
	"coopsave/internal/repositories/mongodb"
	"coopsave/internal/services"
	"coopsave/pkg/authn"
	"coopsave/pkg/banking"
	"coopsave/pkg/cache"
	"coopsave/pkg/database"
	"coopsave/pkg/email"
	"coopsave/pkg/geo"
	"coopsave/pkg/logger"
	"coopsave/pkg/push"
	"coopsave/pkg/sms"
	"coopsave/pkg/websocket"
	"coopsave/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Infrastructure
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		appLogger.WithError(err).Fatal("failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer redisCache.Close()

	// External providers
	authProvider, err := authn.NewFirebaseProvider(cfg.Firebase.CredentialsFile)
	if err != nil {
		appLogger.WithError(err).Fatal("failed to initialize auth provider")
	}
	pushProvider, err := push.NewFCMProvider(cfg.Firebase.CredentialsFile)
	if err != nil {
		appLogger.WithError(err).Fatal("failed to initialize push provider")
	}
	smsProvider := sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber)
	emailSender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.FromEmail, cfg.SMTP.FromName)
	bankVerifier := banking.NewPaystackVerifier(cfg.Banking.BaseURL, cfg.Banking.SecretKey)
	stateProvider := geo.NewHTTPStateProvider(cfg.Geo.StatesFeedURL)

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database, redisCache)
	prospectRepo := mongodb.NewProspectRepository(db.Database)
	adminRepo := mongodb.NewAdminRepository(db.Database, redisCache)
	roleRepo := mongodb.NewRoleRepository(db.Database, redisCache)
	branchRepo := mongodb.NewBranchRepository(db.Database, redisCache)
	planRepo := mongodb.NewPlanRepository(db.Database, redisCache)
	productRepo := mongodb.NewProductRepository(db.Database, redisCache)
	subscriptionRepo := mongodb.NewSubscriptionRepository(db.Database)
	transactionRepo := mongodb.NewTransactionRepository(db.Database)
	broadcastRepo := mongodb.NewBroadcastRepository(db.Database)
	auditLogRepo := mongodb.NewAuditLogRepository(db.Database)

	// Services
	permissionService := services.NewPermissionService()
	notificationService := services.NewNotificationService(smsProvider, emailSender, pushProvider, cfg.Firebase.BroadcastTopic, appLogger)
	identityService := services.NewIdentityService(adminRepo, roleRepo, auditLogRepo, permissionService, authProvider, cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, appLogger)
	onboardingService := services.NewOnboardingService(prospectRepo, userRepo, adminRepo, auditLogRepo, permissionService, authProvider, bankVerifier, notificationService, appLogger)
	savingsService := services.NewSavingsService(subscriptionRepo, transactionRepo, userRepo, planRepo, auditLogRepo, permissionService, notificationService, appLogger)
	adminService := services.NewAdminService(adminRepo, roleRepo, branchRepo, auditLogRepo, permissionService, authProvider, appLogger)
	roleService := services.NewRoleService(roleRepo, adminRepo, branchRepo, auditLogRepo, permissionService, appLogger)
	branchService := services.NewBranchService(branchRepo, userRepo, adminRepo, auditLogRepo, permissionService, appLogger)
	planService := services.NewPlanService(planRepo, subscriptionRepo, auditLogRepo, permissionService, appLogger)
	productService := services.NewProductService(productRepo, auditLogRepo, permissionService, appLogger)
	broadcastService := services.NewBroadcastService(broadcastRepo, userRepo, branchRepo, auditLogRepo, permissionService, notificationService, appLogger)
	lookupService := services.NewLookupService(bankVerifier, stateProvider, redisCache, appLogger)

	// Live updates and background work
	wsHandler := websocket.NewHandler()
	streamService := services.NewStreamService(db, wsHandler.GetHub(), redisCache, appLogger)
	sweepService := services.NewSweepService(userRepo, prospectRepo, transactionRepo, onboardingService, redisCache, cfg.Sweep.Schedule, cfg.Sweep.StaleAfter, appLogger)

	streamCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()
	streamService.Start(streamCtx)

	if err := sweepService.Start(); err != nil {
		appLogger.WithError(err).Fatal("failed to start reconciliation sweep")
	}
	defer sweepService.Stop()

	// HTTP server
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.LoggingMiddleware(appLogger))
	engine.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	engine.Use(middleware.RateLimitMiddleware(redisCache, cfg.Security.RateLimitPerMinute))
	if err := engine.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("invalid trusted proxies")
	}

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": cfg.App.Version})
	})

	auth := middleware.AuthRequired(identityService, cfg.Security.JWTSecret)
	routes.SetupRoutes(engine, &routes.Handlers{
		Auth:      handlers.NewAuthHandler(identityService),
		Prospect:  handlers.NewProspectHandler(onboardingService),
		User:      handlers.NewUserHandler(onboardingService, savingsService),
		Savings:   handlers.NewSavingsHandler(savingsService),
		Branch:    handlers.NewBranchHandler(branchService),
		Role:      handlers.NewRoleHandler(roleService),
		Admin:     handlers.NewAdminHandler(adminService),
		Plan:      handlers.NewPlanHandler(planService),
		Product:   handlers.NewProductHandler(productService),
		Broadcast: handlers.NewBroadcastHandler(broadcastService),
		Lookup:    handlers.NewLookupHandler(lookupService),
		WebSocket: wsHandler,
	}, auth)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.WithField("port", cfg.App.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	stopStreams()
	sweepService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("forced shutdown")
	}
}
