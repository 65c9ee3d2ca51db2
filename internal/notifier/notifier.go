// Package notifier delivers best-effort notifications about measurements
// and threshold alerts. Delivery failures are logged, never propagated:
// the ingestion pipeline does not depend on any notification succeeding.
package notifier

import (
	"context"
	"time"

	"telemetry-ingest/internal/models"
)

// ThresholdAlert is the payload of a threshold notification.
type ThresholdAlert struct {
	DeviceID      string                 `json:"device_id"`
	MeasurementID string                 `json:"measurement_id"`
	Status        models.ThresholdStatus `json:"status"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

// Notifier is the outbound notification contract.
type Notifier interface {
	MeasurementAdded(ctx context.Context, m *models.DeviceMeasurement)
	MeasurementUpdated(ctx context.Context, m *models.DeviceMeasurement)
	MeasurementDeleted(ctx context.Context, deviceID, measurementID string)
	ThresholdExceeded(ctx context.Context, alert ThresholdAlert)
	DeviceStatusChanged(ctx context.Context, deviceID string, isActive bool)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) MeasurementAdded(context.Context, *models.DeviceMeasurement)   {}
func (Nop) MeasurementUpdated(context.Context, *models.DeviceMeasurement) {}
func (Nop) MeasurementDeleted(context.Context, string, string)            {}
func (Nop) ThresholdExceeded(context.Context, ThresholdAlert)             {}
func (Nop) DeviceStatusChanged(context.Context, string, bool)             {}

// Multi fans out to several notifiers.
type Multi []Notifier

func (m Multi) MeasurementAdded(ctx context.Context, meas *models.DeviceMeasurement) {
	for _, n := range m {
		n.MeasurementAdded(ctx, meas)
	}
}

func (m Multi) MeasurementUpdated(ctx context.Context, meas *models.DeviceMeasurement) {
	for _, n := range m {
		n.MeasurementUpdated(ctx, meas)
	}
}

func (m Multi) MeasurementDeleted(ctx context.Context, deviceID, measurementID string) {
	for _, n := range m {
		n.MeasurementDeleted(ctx, deviceID, measurementID)
	}
}

func (m Multi) ThresholdExceeded(ctx context.Context, alert ThresholdAlert) {
	for _, n := range m {
		n.ThresholdExceeded(ctx, alert)
	}
}

func (m Multi) DeviceStatusChanged(ctx context.Context, deviceID string, isActive bool) {
	for _, n := range m {
		n.DeviceStatusChanged(ctx, deviceID, isActive)
	}
}
