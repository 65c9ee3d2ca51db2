package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"telemetry-ingest/internal/alert"
	"telemetry-ingest/internal/config"
	"telemetry-ingest/internal/database"
	"telemetry-ingest/internal/evaluator"
	"telemetry-ingest/internal/mqtt"
	"telemetry-ingest/internal/notifier"
	"telemetry-ingest/internal/repository"
	"telemetry-ingest/internal/resolver"
	"telemetry-ingest/internal/store"
)

// Service wires configuration, storage, transport and the ingestion flow
// together and owns their lifecycle.
type Service struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqtt.Client

	deviceRepo      *repository.DeviceRepository
	mappingRepo     *repository.MappingRepository
	measurementRepo *repository.MeasurementRepository
	notify          notifier.Notifier

	Ingestor *Ingestor
}

func New(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	deviceRepo := repository.NewDeviceRepository(db, logger)
	mappingRepo := repository.NewMappingRepository(db, logger)
	measurementRepo := repository.NewMeasurementRepository(db, logger)

	fieldResolver := resolver.NewFieldResolver(mappingRepo, logger)
	dateResolver := resolver.NewDateResolver(mappingRepo, logger)
	assembler := NewAssembler(deviceRepo, fieldResolver, dateResolver, logger)

	kv := store.NewRedisKV(redisClient)
	debouncer := alert.NewDebouncer(kv, cfg.Ingest.AlertStatePrefix, logger)
	thresholds := evaluator.NewThresholdEvaluator(logger)

	var notifiers notifier.Multi
	if cfg.Ingest.WebhookURL != "" {
		notifiers = append(notifiers, notifier.NewWebhookNotifier(cfg.Ingest.WebhookURL, logger))
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Broker != "" {
		mqttClient, err = mqtt.NewClient(mqtt.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			QoS:      cfg.MQTT.QoS,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mqtt broker: %w", err)
		}
		notifiers = append(notifiers, notifier.NewMQTTNotifier(mqttClient, cfg.Ingest.NotifyTopicPrefix, logger))
	}

	var notify notifier.Notifier = notifiers
	if len(notifiers) == 0 {
		notify = notifier.Nop{}
	}

	ingestor := NewIngestor(assembler, measurementRepo, thresholds, debouncer, notify, logger)

	return &Service{
		config:          cfg,
		logger:          logger,
		db:              db,
		redisClient:     redisClient,
		mqttClient:      mqttClient,
		deviceRepo:      deviceRepo,
		mappingRepo:     mappingRepo,
		measurementRepo: measurementRepo,
		notify:          notify,
		Ingestor:        ingestor,
	}, nil
}

// MQTTClient returns the broker connection, nil when MQTT is disabled.
func (s *Service) MQTTClient() *mqtt.Client { return s.mqttClient }

// Measurements exposes the measurement archive for the read/manage API.
func (s *Service) Measurements() *repository.MeasurementRepository { return s.measurementRepo }

// Notifier exposes the configured notification fan-out.
func (s *Service) Notifier() notifier.Notifier { return s.notify }

// Stop closes all connections.
func (s *Service) Stop(_ context.Context) error {
	s.logger.Info("Stopping telemetry-ingest service")

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Error closing database connection", zap.Error(err))
		}
	}

	s.logger.Info("Service stopped")
	return nil
}
