package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	salesmemory "github.com/Apurer/sales-api/internal/domains/sales/adapters/memory"
	salespostgres "github.com/Apurer/sales-api/internal/domains/sales/adapters/persistence/postgres"
	salesapp "github.com/Apurer/sales-api/internal/domains/sales/application"
	salesports "github.com/Apurer/sales-api/internal/domains/sales/ports"
	platformmigrations "github.com/Apurer/sales-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/sales-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/sales-api/internal/platform/postgres"
	saleactivities "github.com/Apurer/sales-api/internal/platform/temporal/activities/sales"
	saleworkflows "github.com/Apurer/sales-api/internal/platform/temporal/workflows/sales"
)

func main() {
	ctx := context.Background()
	const serviceName = "sales-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	saleRepo, cleanupRepo := buildSaleRepository(ctx, logger)
	defer cleanupRepo()
	saleService := salesapp.NewService(saleRepo)
	saleActivities := saleactivities.NewActivities(saleService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, saleworkflows.SaleCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(saleworkflows.SaleCreationWorkflow, workflow.RegisterOptions{Name: saleworkflows.SaleCreationWorkflowName})
	w.RegisterActivityWithOptions(saleActivities.PersistSale, activity.RegisterOptions{Name: saleactivities.PersistSaleActivityName})

	logger.Info("worker listening", slog.String("taskQueue", saleworkflows.SaleCreationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildSaleRepository(ctx context.Context, logger *slog.Logger) (salesports.Repository, func()) {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory sale repository")
		return salesmemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("worker failed to connect to postgres (falling back to memory)", slog.String("error", err.Error()))
		return salesmemory.NewRepository(), func() {}
	}
	if err := platformmigrations.Run(db); err != nil {
		logger.Warn("worker failed to run migrations (falling back to memory)", slog.String("error", err.Error()))
		return salesmemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection (falling back to memory)", slog.String("error", err.Error()))
		return salesmemory.NewRepository(), func() {}
	}
	logger.Info("worker sale repository configured with postgres")
	return salespostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
