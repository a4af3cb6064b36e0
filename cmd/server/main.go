package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pnrdesk-service/internal/infrastructure/cache"
	"pnrdesk-service/internal/infrastructure/config"
	"pnrdesk-service/internal/infrastructure/oauth"
	"pnrdesk-service/internal/infrastructure/persistence"
	"pnrdesk-service/internal/infrastructure/router"
	"pnrdesk-service/internal/interface/gmail"
	pnrhttp "pnrdesk-service/internal/interface/http"
	"pnrdesk-service/internal/interface/repository"
	"pnrdesk-service/internal/usecase"
	"pnrdesk-service/pkg/logger"
	"pnrdesk-service/pkg/metrics"
	"pnrdesk-service/pkg/pnr"
	"pnrdesk-service/templates"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting PNR Desk Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Set up PostgreSQL connection
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	inboxRepo := repository.NewMongoInboxRepository(db)
	auditRepo := repository.NewMongoParseAuditRepository(db)
	ticketRepo := repository.NewGormTicketRepository(gormDB)

	// Set up parse cache
	parseCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	if err := parseCache.Ping(ctx); err != nil {
		log.Warn("Redis unavailable, continuing without parse cache", "error", err)
		parseCache = nil
	}

	// Set up metrics and parser
	appMetrics := metrics.NewMetrics("pnrdesk")
	parser := pnr.NewParser(log)

	var cacheDep usecase.ParseCache
	if parseCache != nil {
		cacheDep = parseCache
	}
	parseService := usecase.NewParseService(parser, cacheDep, ticketRepo, auditRepo, appMetrics, log)

	// Set up subject routing for inbox messages
	subjectRouter := router.NewSubjectRouter(log)
	subjectRouter.Register(templates.NewPNRConfirmationHandler(parseService, log))
	inboxProcessor := usecase.NewInboxProcessor(inboxRepo, subjectRouter, appMetrics, log)

	// Set up Gmail OAuth
	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		cfg.GmailRefreshToken,
		log,
	)
	tokenSource := gmailOAuth.GetTokenSource(ctx)

	// Set up Gmail inbox service
	if cfg.GmailClientID != "" {
		inboxService, err := gmail.NewInboxService(ctx, tokenSource, inboxRepo, log, cfg.GmailPollInterval)
		if err != nil {
			log.Fatal("Failed to create Gmail inbox service", "error", err)
		}

		// Start Gmail polling in a goroutine
		go inboxService.StartPolling(ctx)
	} else {
		log.Warn("Gmail credentials not configured, inbox polling disabled")
	}

	// Start inbox processor in a goroutine
	go func() {
		processTicker := time.NewTicker(30 * time.Second)
		defer processTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Inbox processor stopped")
				return
			case <-processTicker.C:
				if err := inboxProcessor.ProcessPendingMessages(ctx); err != nil {
					log.Error("Error processing inbox messages", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	pnrHandler := pnrhttp.NewPNRHandler(parseService, ticketRepo, log)
	pnrHandler.Register(engine.Group("/api/v1/pnr"))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Healthy")
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	if parseCache != nil {
		parseCache.Close()
	}

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("PNR Desk Service stopped")
}
