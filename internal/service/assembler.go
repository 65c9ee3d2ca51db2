package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/resolver"
)

// DeviceStore is the read side of device configuration.
type DeviceStore interface {
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)
	ListActiveFields(ctx context.Context, deviceID string) ([]models.DeviceField, error)
}

// ResolvedMeasurement is the output of measurement assembly: the
// measurement record, whatever field values resolved, and the field
// configuration snapshot used (threshold evaluation reuses it).
type ResolvedMeasurement struct {
	Measurement models.DeviceMeasurement
	Values      []models.FieldMeasurementValue
	Fields      []models.DeviceField
}

// Assembler orchestrates field resolution across all active fields of a
// device. Per-field failures are aggregated, never escalated; only an
// unknown device fails the whole request.
type Assembler struct {
	devices       DeviceStore
	fieldResolver *resolver.FieldResolver
	dateResolver  *resolver.DateResolver
	logger        *zap.Logger
	now           func() time.Time
}

func NewAssembler(devices DeviceStore, fields *resolver.FieldResolver, dates *resolver.DateResolver, logger *zap.Logger) *Assembler {
	return &Assembler{
		devices:       devices,
		fieldResolver: fields,
		dateResolver:  dates,
		logger:        logger,
		now:           time.Now,
	}
}

// ResolveMeasurement converts one raw payload into a measurement record.
func (a *Assembler) ResolveMeasurement(ctx context.Context, deviceID, rawData string, format models.DataFormat) (*ResolvedMeasurement, error) {
	device, err := a.devices.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	ingestedAt := a.now().UTC()
	measurementDate, dateNote := a.dateResolver.Resolve(ctx, device.DeviceID, rawData, format, ingestedAt)

	m := models.DeviceMeasurement{
		MeasurementID:   uuid.NewString(),
		DeviceID:        device.DeviceID,
		RawData:         rawData,
		DataFormat:      format,
		CreatedOn:       ingestedAt,
		MeasurementDate: measurementDate,
	}

	fields, err := a.devices.ListActiveFields(ctx, device.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load device fields: %w", err)
	}
	if len(fields) == 0 {
		m.ParsedSuccessfully = false
		m.ParsingErrors = joinNotes("no active fields configured for device", dateNote)
		return &ResolvedMeasurement{Measurement: m}, nil
	}

	var values []models.FieldMeasurementValue
	var fieldErrors []string
	for _, field := range fields {
		res := a.fieldResolver.Resolve(ctx, field, rawData, format)
		if res.ErrMessage != "" {
			fieldErrors = append(fieldErrors, res.ErrMessage)
			continue
		}
		if res.Value == nil {
			continue
		}
		values = append(values, models.FieldMeasurementValue{
			ValueID:       uuid.NewString(),
			MeasurementID: m.MeasurementID,
			FieldID:       field.FieldID,
			FieldName:     field.FieldName,
			Value:         *res.Value,
		})
	}

	m.ParsedSuccessfully = len(fieldErrors) == 0
	m.ParsingErrors = joinNotes(strings.Join(fieldErrors, "; "), dateNote)

	if !m.ParsedSuccessfully {
		a.logger.Warn("measurement assembled with field errors",
			zap.String("device_id", device.DeviceID),
			zap.Int("resolved_values", len(values)),
			zap.Int("field_errors", len(fieldErrors)),
		)
	}

	return &ResolvedMeasurement{Measurement: m, Values: values, Fields: fields}, nil
}

func joinNotes(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "; ")
}
