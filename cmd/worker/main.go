package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OFFIS-RIT/wikigraph/internal/db"
	"github.com/OFFIS-RIT/wikigraph/internal/importer"
	"github.com/OFFIS-RIT/wikigraph/internal/queue"
	"github.com/OFFIS-RIT/wikigraph/internal/util"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
	"github.com/OFFIS-RIT/wikigraph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
		JSON:  util.GetEnv("LOG_FORMAT") == "json",
	})
	logger.Init(consoleLogger)

	cfg := importer.ConfigFromEnv()

	// database
	databaseURL := util.GetEnv("DATABASE_URL")
	if err := db.Migrate(databaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}
	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pool.Close()

	// metrics
	metricsSrv := &http.Server{
		Addr:              ":" + util.GetEnvString("METRICS_PORT", "9090"),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", "err", err)
		}
	}()
	defer metricsSrv.Shutdown(context.Background())

	// rabbitmq
	conn, err := queue.Init(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to queue", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.ImportQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// Imports are long running, so each worker takes one message at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := ch.ConsumeWithContext(
		ctx,
		queue.ImportQueue,
		queue.ImportQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.ImportQueue, "err", err)
	}

	handler := queue.NewImportHandler(pool, cfg)
	logger.Info("Listening for messages", "queue", queue.ImportQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.ImportQueue)
				return
			}

			startTime := time.Now()
			logger.Info("Received message", "queue", queue.ImportQueue)

			if err := handler.ProcessImportMessage(ctx, string(msg.Body)); err != nil {
				logger.Error("Error processing message", "queue", queue.ImportQueue, "err", err)
				if err := queue.HandleProcessingError(context.WithoutCancel(ctx), ch, msg, queue.ImportQueue); err != nil {
					logger.Error("Failed to requeue message", "err", err)
				}
			} else {
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed successfully", "queue", queue.ImportQueue)
			}

			logger.Info("Processing time", "duration", time.Since(startTime).Round(time.Second).String())
			logger.Info("Waiting for next message")
		}
	}
}
