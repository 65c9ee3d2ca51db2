package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/mqtt"
)

// MQTTNotifier publishes notification events on a configurable topic
// prefix, one subtopic per event kind.
type MQTTNotifier struct {
	client      *mqtt.Client
	topicPrefix string
	logger      *zap.Logger
}

func NewMQTTNotifier(client *mqtt.Client, topicPrefix string, logger *zap.Logger) *MQTTNotifier {
	if topicPrefix == "" {
		topicPrefix = "telemetry/events"
	}
	return &MQTTNotifier{client: client, topicPrefix: topicPrefix, logger: logger}
}

func (n *MQTTNotifier) publish(subtopic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("Failed to marshal notification", zap.Error(err))
		return
	}
	topic := fmt.Sprintf("%s/%s", n.topicPrefix, subtopic)
	if err := n.client.Publish(topic, false, data); err != nil {
		n.logger.Warn("Failed to publish notification",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

type measurementEvent struct {
	Event         string    `json:"event"`
	DeviceID      string    `json:"device_id"`
	MeasurementID string    `json:"measurement_id"`
	Parsed        bool      `json:"parsed_successfully"`
	Timestamp     time.Time `json:"timestamp"`
}

func (n *MQTTNotifier) MeasurementAdded(_ context.Context, m *models.DeviceMeasurement) {
	n.publish("measurement-added", measurementEvent{
		Event:         "measurement_added",
		DeviceID:      m.DeviceID,
		MeasurementID: m.MeasurementID,
		Parsed:        m.ParsedSuccessfully,
		Timestamp:     m.MeasurementDate,
	})
}

func (n *MQTTNotifier) MeasurementUpdated(_ context.Context, m *models.DeviceMeasurement) {
	n.publish("measurement-updated", measurementEvent{
		Event:         "measurement_updated",
		DeviceID:      m.DeviceID,
		MeasurementID: m.MeasurementID,
		Parsed:        m.ParsedSuccessfully,
		Timestamp:     m.MeasurementDate,
	})
}

func (n *MQTTNotifier) MeasurementDeleted(_ context.Context, deviceID, measurementID string) {
	n.publish("measurement-deleted", measurementEvent{
		Event:         "measurement_deleted",
		DeviceID:      deviceID,
		MeasurementID: measurementID,
		Timestamp:     time.Now().UTC(),
	})
}

func (n *MQTTNotifier) ThresholdExceeded(_ context.Context, alert ThresholdAlert) {
	n.publish("threshold-exceeded", alert)
}

func (n *MQTTNotifier) DeviceStatusChanged(_ context.Context, deviceID string, isActive bool) {
	n.publish("device-status", map[string]any{
		"event":     "device_status_changed",
		"device_id": deviceID,
		"is_active": isActive,
	})
}
