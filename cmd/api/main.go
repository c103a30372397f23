package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workstream/comms-api/internal/config"
	"github.com/workstream/comms-api/internal/email"
	announcementHandler "github.com/workstream/comms-api/internal/handler/announcement"
	channelHandler "github.com/workstream/comms-api/internal/handler/channel"
	healthHandler "github.com/workstream/comms-api/internal/handler/health"
	messageHandler "github.com/workstream/comms-api/internal/handler/message"
	notificationHandler "github.com/workstream/comms-api/internal/handler/notification"
	presenceHandler "github.com/workstream/comms-api/internal/handler/presence"
	recognitionHandler "github.com/workstream/comms-api/internal/handler/recognition"
	statsHandler "github.com/workstream/comms-api/internal/handler/stats"
	swapHandler "github.com/workstream/comms-api/internal/handler/swap"
	"github.com/workstream/comms-api/internal/middleware"
	"github.com/workstream/comms-api/internal/repository/memory"
	"github.com/workstream/comms-api/internal/repository/postgres"
	"github.com/workstream/comms-api/internal/router"
	announcementService "github.com/workstream/comms-api/internal/service/announcement"
	channelService "github.com/workstream/comms-api/internal/service/channel"
	messageService "github.com/workstream/comms-api/internal/service/message"
	notificationService "github.com/workstream/comms-api/internal/service/notification"
	presenceService "github.com/workstream/comms-api/internal/service/presence"
	recognitionService "github.com/workstream/comms-api/internal/service/recognition"
	swapService "github.com/workstream/comms-api/internal/service/swap"
	"github.com/workstream/comms-api/pkg/auth"
	"github.com/workstream/comms-api/pkg/logger"
	"github.com/workstream/comms-api/pkg/metrics"
	"github.com/workstream/comms-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("comms")

	// Repositories
	messageRepo := postgres.NewMessageRepository(db)
	channelRepo := postgres.NewChannelRepository(db)
	announcementRepo := postgres.NewAnnouncementRepository(db)
	recognitionRepo := postgres.NewRecognitionRepository(db)
	swapRepo := postgres.NewSwapRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	directory := postgres.NewEmployeeDirectory(db)
	// Retain entries past the staleness TTL so the read path, not
	// cache eviction, decides when someone reads as offline.
	presenceStore := memory.NewPresenceStore(2 * cfg.Messaging.PresenceTTL)

	// Services
	notificationSvc := notificationService.NewService(notificationRepo, outboxRepo, log, m)
	presenceSvc := presenceService.NewService(presenceStore, cfg.Messaging.PresenceTTL)
	channelSvc := channelService.NewService(channelRepo)
	messageSvc := messageService.NewService(messageRepo, channelRepo, notificationSvc, presenceSvc, cfg.Messaging, log, m)
	recognitionSvc := recognitionService.NewService(recognitionRepo, messageRepo, notificationSvc, cfg.Messaging.RecognitionFeedLimit, m)
	swapSvc := swapService.NewService(swapRepo, notificationSvc, cfg.Messaging.ManagerApprovalRequired, log, m)
	emailSvc := email.NewService(cfg.Email)
	announcementSvc := announcementService.NewService(announcementRepo, directory, notificationSvc, emailSvc, log)

	// HTTP surface
	validate := validator.New()
	authMW := middleware.NewAuthMiddleware(auth.NewTokenValidator(cfg.JWT.Secret))
	r := router.NewRouter(
		authMW,
		healthHandler.NewHandler(db),
		log,
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			MetricsPrefix:  "comms_http",
		},
		messageHandler.NewHandler(messageSvc, validate),
		channelHandler.NewHandler(channelSvc, messageSvc, validate),
		announcementHandler.NewHandler(announcementSvc, validate),
		recognitionHandler.NewHandler(recognitionSvc, validate),
		swapHandler.NewHandler(swapSvc, validate),
		notificationHandler.NewHandler(notificationSvc, validate),
		presenceHandler.NewHandler(presenceSvc, validate),
		statsHandler.NewHandler(messageSvc, notificationSvc, recognitionSvc, swapSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
