package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/yonasKu/sproutbook-api/internal/application/batch"
	"github.com/yonasKu/sproutbook-api/internal/application/device"
	"github.com/yonasKu/sproutbook-api/internal/application/journal"
	"github.com/yonasKu/sproutbook-api/internal/application/notification"
	"github.com/yonasKu/sproutbook-api/internal/application/recap"
	"github.com/yonasKu/sproutbook-api/internal/config"
	"github.com/yonasKu/sproutbook-api/internal/infrastructure/dynamo"
	genaiinfra "github.com/yonasKu/sproutbook-api/internal/infrastructure/genai"
	s3infra "github.com/yonasKu/sproutbook-api/internal/infrastructure/s3"
	"github.com/yonasKu/sproutbook-api/internal/infrastructure/sns"
	"github.com/yonasKu/sproutbook-api/internal/scheduler"
	transporthttp "github.com/yonasKu/sproutbook-api/internal/transport/http"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		slog.Error("dynamodb client init failed", "error", err)
		os.Exit(1)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	// S3 store for media presigning.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// Generation backend is optional. Pairs degrade to fallback titles and
	// failed bodies when it is not configured.
	var llm recap.TextGenerator
	if client, err := genaiinfra.NewClient(ctx, cfg); err == nil {
		llm = client
	} else {
		slog.Warn("generation backend not available", "error", err)
		llm = unavailableGenerator{}
	}

	// Push gateway is optional.
	var pushGateway sns.Gateway
	if gw, err := sns.NewSender(cfg); err == nil {
		pushGateway = gw
	} else {
		slog.Warn("SNS gateway not available", "error", err)
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	childRepo := dynamo.NewChildRepo(dynamoClient, cfg.DynamoTables.Children)
	entryRepo := dynamo.NewEntryRepo(dynamoClient, cfg.DynamoTables.Entries)
	recapRepo := dynamo.NewRecapRepo(dynamoClient, cfg.DynamoTables.Recaps)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	deviceRepo := dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices)

	aggregator := recap.NewAggregator(entryRepo, s3Store, cfg.EntryQueryTimeout, int32(cfg.EntryQueryMax), cfg.MediaURLTTL)
	resolver := recap.NewContextResolver(childRepo)
	generator := recap.NewContentGenerator(llm)
	writer := recap.NewWriter(recapRepo)
	coordinator := notification.NewCoordinator(notificationRepo, deviceRepo, pushGateway)
	pipeline := recap.NewPipeline(aggregator, resolver, generator, writer, coordinator)

	orchestrator := batch.NewOrchestrator(userRepo, childRepo, pipeline, cfg.BatchPageSize, cfg.BatchWorkerPool, cfg.BatchPairTimeout)

	deps := &transporthttp.Deps{
		JournalSvc:      journal.NewService(entryRepo, childRepo, s3Store, pipeline, cfg.BatchPairTimeout),
		DeviceSvc:       device.NewService(deviceRepo, pushGateway),
		NotificationSvc: notification.NewService(notificationRepo),
		RecapRepo:       recapRepo,
		Orchestrator:    orchestrator,
	}

	router := transporthttp.NewRouter(cfg, deps)

	schedCtx, schedCancel := context.WithCancel(ctx)
	defer schedCancel()
	if cfg.SchedulerEnabled {
		sched := scheduler.New(orchestrator, cfg.SchedulerHourUTC)
		go sched.Start(schedCtx)
		slog.Info("scheduler started", "hour_utc", cfg.SchedulerHourUTC)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	schedCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// unavailableGenerator stands in when no generation backend is configured.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string, string, int32, float32) (string, error) {
	return "", fmt.Errorf("generation backend not configured")
}
