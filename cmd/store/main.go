package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/supermarket-pos/internal/config"
	httpAPI "github.com/iyhunko/supermarket-pos/internal/http"
	"github.com/iyhunko/supermarket-pos/internal/http/controller"
	"github.com/iyhunko/supermarket-pos/internal/logger"
	"github.com/iyhunko/supermarket-pos/internal/metrics"
	"github.com/iyhunko/supermarket-pos/internal/repository/sql"
	"github.com/iyhunko/supermarket-pos/internal/service"
	sqspkg "github.com/iyhunko/supermarket-pos/internal/sqs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.StartDB(ctx, conf.Database, conf.MigrationsPath())
	handleErr("starting database", err)
	defer db.Close()

	// Create repositories
	productRepository := sql.NewProductRepository(db)
	saleRepository := sql.NewSaleRepository(db)
	transactionalRepository := sql.NewTransactionalRepository(db)

	storeService := service.NewStoreService(
		productRepository,
		saleRepository,
		transactionalRepository,
		conf.Store.AdminPassword,
		conf.AWS.OutboxEnabled(),
	)

	// Publish sale and product events only when a queue is configured
	var outboxWorker *service.OutboxWorker
	if conf.AWS.OutboxEnabled() {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
		handleErr("creating SQS client", err)

		eventRepository := sql.NewEventRepository(db)
		outboxWorker = service.NewOutboxWorker(
			eventRepository,
			eventRepository,
			sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL),
			conf.AWS.OutboxInterval,
		)
		go outboxWorker.Start(ctx)
	}

	// Start HTTP server
	flash := controller.NewCookieFlash(conf.Store.SessionSecret)
	router := httpAPI.InitRouter(
		conf,
		gin.New(),
		controller.New(),
		controller.NewStoreController(storeService, flash, conf.Store.Name),
		controller.NewAdminController(storeService, flash, conf.Store.Name, conf.Store.RecentSalesLimit),
	)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port), slog.String("store", conf.Store.Name))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")

	if outboxWorker != nil {
		outboxWorker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Metrics server shutdown failed", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
