package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"telemetry-ingest/internal/alert"
	"telemetry-ingest/internal/evaluator"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/notifier"
)

// MeasurementStore is the write side of measurement persistence.
type MeasurementStore interface {
	SaveMeasurement(ctx context.Context, m *models.DeviceMeasurement, values []models.FieldMeasurementValue) error
}

// Ingestor runs the full ingestion flow: resolve, persist, evaluate
// thresholds, debounce, notify.
type Ingestor struct {
	assembler    *Assembler
	measurements MeasurementStore
	thresholds   *evaluator.ThresholdEvaluator
	debouncer    *alert.Debouncer
	notify       notifier.Notifier
	logger       *zap.Logger
}

func NewIngestor(
	assembler *Assembler,
	measurements MeasurementStore,
	thresholds *evaluator.ThresholdEvaluator,
	debouncer *alert.Debouncer,
	notify notifier.Notifier,
	logger *zap.Logger,
) *Ingestor {
	return &Ingestor{
		assembler:    assembler,
		measurements: measurements,
		thresholds:   thresholds,
		debouncer:    debouncer,
		notify:       notify,
		logger:       logger,
	}
}

// IngestMeasurement processes one raw payload end to end. The returned
// error is fatal (unknown device, persistence failure); per-field problems
// surface only through the measurement's parsing errors.
func (s *Ingestor) IngestMeasurement(ctx context.Context, deviceID, rawData string, format models.DataFormat) (*ResolvedMeasurement, []models.ThresholdStatus, error) {
	resolved, err := s.assembler.ResolveMeasurement(ctx, deviceID, rawData, format)
	if err != nil {
		return nil, nil, err
	}

	if err := s.measurements.SaveMeasurement(ctx, &resolved.Measurement, resolved.Values); err != nil {
		return nil, nil, fmt.Errorf("failed to persist measurement: %w", err)
	}
	s.notify.MeasurementAdded(ctx, &resolved.Measurement)

	statuses := s.thresholds.Evaluate(resolved.Fields, resolved.Values)
	s.dispatchAlerts(ctx, resolved, statuses)

	s.logger.Info("measurement ingested",
		zap.String("device_id", deviceID),
		zap.String("measurement_id", resolved.Measurement.MeasurementID),
		zap.Bool("parsed_successfully", resolved.Measurement.ParsedSuccessfully),
		zap.Int("values", len(resolved.Values)),
		zap.Int("alerts", len(statuses)),
	)
	return resolved, statuses, nil
}

// dispatchAlerts feeds every evaluated field through the debouncer: the
// non-Normal statuses directly, and a Normal status for every other
// thresholded numeric field so recoveries clear their tracked state.
func (s *Ingestor) dispatchAlerts(ctx context.Context, resolved *ResolvedMeasurement, statuses []models.ThresholdStatus) {
	nonNormal := make(map[string]models.ThresholdStatus, len(statuses))
	for _, st := range statuses {
		nonNormal[st.FieldID] = st
	}

	fieldsByID := make(map[string]models.DeviceField, len(resolved.Fields))
	for _, f := range resolved.Fields {
		fieldsByID[f.FieldID] = f
	}

	deviceID := resolved.Measurement.DeviceID
	for _, v := range resolved.Values {
		field, ok := fieldsByID[v.FieldID]
		if !ok || !field.IsNumeric() || !field.HasThresholds() {
			continue
		}

		st, exceeded := nonNormal[v.FieldID]
		level := models.LevelNormal
		if exceeded {
			level = st.Status
		} else if _, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64); err != nil {
			// Unparseable values were skipped by the evaluator; they carry
			// no status at all.
			continue
		}

		shouldNotify, err := s.debouncer.ShouldNotify(ctx, deviceID, v.FieldID, level)
		if err != nil {
			s.logger.Error("alert debounce failed",
				zap.String("device_id", deviceID),
				zap.String("field_id", v.FieldID),
				zap.Error(err),
			)
			continue
		}
		if !shouldNotify || !exceeded {
			continue
		}

		s.notify.ThresholdExceeded(ctx, notifier.ThresholdAlert{
			DeviceID:      deviceID,
			MeasurementID: resolved.Measurement.MeasurementID,
			Status:        st,
			OccurredAt:    time.Now().UTC(),
		})
	}
}

// EvaluateThresholds re-runs threshold classification for an already
// assembled measurement.
func (s *Ingestor) EvaluateThresholds(resolved *ResolvedMeasurement) []models.ThresholdStatus {
	return s.thresholds.Evaluate(resolved.Fields, resolved.Values)
}

// ShouldNotify exposes the debounce decision to collaborators.
func (s *Ingestor) ShouldNotify(ctx context.Context, deviceID, fieldID string, status models.ThresholdLevel) (bool, error) {
	return s.debouncer.ShouldNotify(ctx, deviceID, fieldID, status)
}

// ResetFieldAlerts clears debounce state for one field.
func (s *Ingestor) ResetFieldAlerts(ctx context.Context, deviceID, fieldID string) error {
	return s.debouncer.ResetField(ctx, deviceID, fieldID)
}

// ResetDeviceAlerts clears debounce state for a whole device.
func (s *Ingestor) ResetDeviceAlerts(ctx context.Context, deviceID string) error {
	return s.debouncer.ResetDevice(ctx, deviceID)
}
