package notifier

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
)

// WebhookNotifier POSTs notification events to a configured endpoint.
// Non-2xx responses and transport errors are logged and dropped.
type WebhookNotifier struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewWebhookNotifier(endpoint string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookNotifier{httpClient: client, logger: logger}
}

func (n *WebhookNotifier) post(ctx context.Context, event string, payload any) {
	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]any{"event": event, "data": payload}).
		Post("")
	if err != nil {
		n.logger.Warn("Webhook delivery failed",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		n.logger.Warn("Webhook endpoint rejected event",
			zap.String("event", event),
			zap.Int("status", resp.StatusCode()),
		)
	}
}

func (n *WebhookNotifier) MeasurementAdded(ctx context.Context, m *models.DeviceMeasurement) {
	n.post(ctx, "measurement_added", m)
}

func (n *WebhookNotifier) MeasurementUpdated(ctx context.Context, m *models.DeviceMeasurement) {
	n.post(ctx, "measurement_updated", m)
}

func (n *WebhookNotifier) MeasurementDeleted(ctx context.Context, deviceID, measurementID string) {
	n.post(ctx, "measurement_deleted", map[string]string{
		"device_id":      deviceID,
		"measurement_id": measurementID,
	})
}

func (n *WebhookNotifier) ThresholdExceeded(ctx context.Context, alert ThresholdAlert) {
	n.post(ctx, "threshold_exceeded", alert)
}

func (n *WebhookNotifier) DeviceStatusChanged(ctx context.Context, deviceID string, isActive bool) {
	n.post(ctx, "device_status_changed", map[string]any{
		"device_id": deviceID,
		"is_active": isActive,
	})
}
