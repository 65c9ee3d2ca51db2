package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"telemetry-ingest/internal/alert"
	"telemetry-ingest/internal/evaluator"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/notifier"
	"telemetry-ingest/internal/service"
	"telemetry-ingest/internal/store"
)

type fakeMeasurementStore struct {
	saved []models.DeviceMeasurement
	err   error
}

func (f *fakeMeasurementStore) SaveMeasurement(_ context.Context, m *models.DeviceMeasurement, _ []models.FieldMeasurementValue) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *m)
	return nil
}

type captureNotifier struct {
	notifier.Nop
	mu     sync.Mutex
	added  []string
	alerts []notifier.ThresholdAlert
}

func (c *captureNotifier) MeasurementAdded(_ context.Context, m *models.DeviceMeasurement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added = append(c.added, m.MeasurementID)
}

func (c *captureNotifier) ThresholdExceeded(_ context.Context, a notifier.ThresholdAlert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, a)
}

type ingestHarness struct {
	ingestor *service.Ingestor
	saved    *fakeMeasurementStore
	notified *captureNotifier
}

func newIngestHarness(devices *fakeDevices, mappings *fakeMappings) *ingestHarness {
	logger := zap.NewNop()
	saved := &fakeMeasurementStore{}
	notified := &captureNotifier{}
	ingestor := service.NewIngestor(
		newAssembler(devices, mappings),
		saved,
		evaluator.NewThresholdEvaluator(logger),
		alert.NewDebouncer(store.NewMemoryKV(), "", logger),
		notified,
		logger,
	)
	return &ingestHarness{ingestor: ingestor, saved: saved, notified: notified}
}

func thresholdedSetup(t *testing.T) (*fakeDevices, *fakeMappings) {
	t.Helper()
	devices := &fakeDevices{
		device: testDevice(),
		fields: []models.DeviceField{{
			FieldID:     "f-temp",
			DeviceID:    "dev-1",
			FieldName:   "temperature",
			DataType:    models.TypeDecimal,
			Unit:        "C",
			WarningMax:  fptr(80),
			CriticalMax: fptr(100),
		}},
	}
	mappings := &fakeMappings{fieldMappings: map[string]*models.FieldMapping{
		"f-temp": {FieldID: "f-temp", SourceFieldPath: "t"},
	}}
	return devices, mappings
}

func TestIngestMeasurement_PersistsAndNotifies(t *testing.T) {
	h := newIngestHarness(thresholdedSetup(t))

	resolved, alerts, err := h.ingestor.IngestMeasurement(context.Background(), "dev-1", `{"t":"25"}`, models.FormatJSON)
	require.NoError(t, err)
	require.True(t, resolved.Measurement.ParsedSuccessfully)
	require.Empty(t, alerts)

	require.Len(t, h.saved.saved, 1)
	require.Equal(t, resolved.Measurement.MeasurementID, h.saved.saved[0].MeasurementID)
	require.Equal(t, []string{resolved.Measurement.MeasurementID}, h.notified.added)
	require.Empty(t, h.notified.alerts)
}

func TestIngestMeasurement_ThresholdAlertIsDispatched(t *testing.T) {
	h := newIngestHarness(thresholdedSetup(t))

	resolved, alerts, err := h.ingestor.IngestMeasurement(context.Background(), "dev-1", `{"t":"120"}`, models.FormatJSON)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.LevelCritical, alerts[0].Status)

	require.Len(t, h.notified.alerts, 1)
	a := h.notified.alerts[0]
	require.Equal(t, "dev-1", a.DeviceID)
	require.Equal(t, resolved.Measurement.MeasurementID, a.MeasurementID)
	require.Equal(t, models.LevelCritical, a.Status.Status)
	require.Equal(t, 100.0, a.Status.ThresholdValue)
}

func TestIngestMeasurement_RepeatedStatusIsDebounced(t *testing.T) {
	h := newIngestHarness(thresholdedSetup(t))
	ctx := context.Background()

	_, _, err := h.ingestor.IngestMeasurement(ctx, "dev-1", `{"t":"120"}`, models.FormatJSON)
	require.NoError(t, err)
	_, alerts, err := h.ingestor.IngestMeasurement(ctx, "dev-1", `{"t":"130"}`, models.FormatJSON)
	require.NoError(t, err)

	// The second measurement still reports the alert status...
	require.Len(t, alerts, 1)
	// ...but no second notification goes out.
	require.Len(t, h.notified.alerts, 1)
}

func TestIngestMeasurement_RecoveryReenablesAlerts(t *testing.T) {
	h := newIngestHarness(thresholdedSetup(t))
	ctx := context.Background()

	_, _, err := h.ingestor.IngestMeasurement(ctx, "dev-1", `{"t":"90"}`, models.FormatJSON)
	require.NoError(t, err)
	// Back to normal clears the tracked state without a threshold alert.
	_, _, err = h.ingestor.IngestMeasurement(ctx, "dev-1", `{"t":"25"}`, models.FormatJSON)
	require.NoError(t, err)
	require.Len(t, h.notified.alerts, 1)

	// The next excursion notifies again.
	_, _, err = h.ingestor.IngestMeasurement(ctx, "dev-1", `{"t":"90"}`, models.FormatJSON)
	require.NoError(t, err)
	require.Len(t, h.notified.alerts, 2)
}

func TestIngestMeasurement_PersistenceFailureIsFatal(t *testing.T) {
	h := newIngestHarness(thresholdedSetup(t))
	h.saved.err = errors.New("disk full")

	_, _, err := h.ingestor.IngestMeasurement(context.Background(), "dev-1", `{"t":"25"}`, models.FormatJSON)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to persist measurement")
	require.Empty(t, h.notified.added)
}

func TestResetDeviceAlerts(t *testing.T) {
	h := newIngestHarness(thresholdedSetup(t))
	ctx := context.Background()

	_, _, err := h.ingestor.IngestMeasurement(ctx, "dev-1", `{"t":"120"}`, models.FormatJSON)
	require.NoError(t, err)
	require.NoError(t, h.ingestor.ResetDeviceAlerts(ctx, "dev-1"))

	// After the reset, the same status notifies as if it were new.
	_, _, err = h.ingestor.IngestMeasurement(ctx, "dev-1", `{"t":"120"}`, models.FormatJSON)
	require.NoError(t, err)
	require.Len(t, h.notified.alerts, 2)
}
