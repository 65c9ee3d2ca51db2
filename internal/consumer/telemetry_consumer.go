// Package consumer receives telemetry over MQTT and feeds it into the
// ingestion flow.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/mqtt"
	"telemetry-ingest/internal/service"
)

// telemetryEnvelope is the inbound message shape. The device id comes from
// the topic, not the payload.
type telemetryEnvelope struct {
	DataFormat string `json:"data_format"`
	Payload    string `json:"payload"`
}

// TelemetryConsumer subscribes to the telemetry topic and ingests every
// message. Per-message failures are logged and dropped; a malformed or
// unresolvable message never stops the consumer.
type TelemetryConsumer struct {
	client   *mqtt.Client
	ingestor *service.Ingestor
	topic    string
	logger   *zap.Logger
}

func NewTelemetryConsumer(client *mqtt.Client, ingestor *service.Ingestor, topic string, logger *zap.Logger) *TelemetryConsumer {
	return &TelemetryConsumer{
		client:   client,
		ingestor: ingestor,
		topic:    topic,
		logger:   logger,
	}
}

// Start subscribes to the configured topic. Expected topic shape:
// <prefix>/<device_id>/<suffix>, matching a single-level wildcard
// subscription like "telemetry/+/data".
func (c *TelemetryConsumer) Start(ctx context.Context) error {
	if err := c.client.Subscribe(c.topic, func(topic string, payload []byte) error {
		return c.handleMessage(ctx, topic, payload)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to telemetry topic: %w", err)
	}
	c.logger.Info("Telemetry consumer started", zap.String("topic", c.topic))
	return nil
}

func (c *TelemetryConsumer) handleMessage(ctx context.Context, topic string, payload []byte) error {
	deviceID, err := deviceIDFromTopic(topic)
	if err != nil {
		return err
	}

	var env telemetryEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("invalid telemetry envelope: %w", err)
	}
	format, ok := models.ParseDataFormat(env.DataFormat)
	if !ok {
		return fmt.Errorf("unsupported data format %q", env.DataFormat)
	}

	_, _, err = c.ingestor.IngestMeasurement(ctx, deviceID, env.Payload, format)
	if err != nil {
		return fmt.Errorf("failed to ingest telemetry from %s: %w", deviceID, err)
	}
	return nil
}

func deviceIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("cannot extract device id from topic %q", topic)
	}
	return parts[1], nil
}
