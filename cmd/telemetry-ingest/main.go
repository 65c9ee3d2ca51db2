package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"telemetry-ingest/internal/config"
	"telemetry-ingest/internal/consumer"
	httpapi "telemetry-ingest/internal/http"
	"telemetry-ingest/internal/logger"
	"telemetry-ingest/internal/service"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "telemetry-ingest")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("Starting telemetry-ingest service",
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.String("telemetry_topic", cfg.Ingest.TelemetryTopic),
		zap.Bool("mqtt_enabled", cfg.MQTT.Broker != ""),
	)

	svc, err := service.New(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to create service", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if client := svc.MQTTClient(); client != nil {
		telemetryConsumer := consumer.NewTelemetryConsumer(client, svc.Ingestor, cfg.Ingest.TelemetryTopic, zlog)
		if err := telemetryConsumer.Start(ctx); err != nil {
			zlog.Fatal("Failed to start telemetry consumer", zap.Error(err))
		}
	}

	mux := http.NewServeMux()
	httpapi.NewIngestHandler(svc.Ingestor, zlog).Routes(mux)
	httpapi.NewMeasurementHandler(svc.Measurements(), svc.Notifier(), zlog).Routes(mux)
	server := httpapi.NewServer(cfg.HTTP.Addr, mux, zlog)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	zlog.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	cancel()
	if err := server.Stop(context.Background()); err != nil {
		zlog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := svc.Stop(context.Background()); err != nil {
		zlog.Error("Error during shutdown", zap.Error(err))
	}
}
