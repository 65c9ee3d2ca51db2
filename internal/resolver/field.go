// Package resolver turns one device field (or the measurement date) plus a
// raw payload into a resolved value, combining document extraction with
// pipeline execution.
package resolver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"telemetry-ingest/internal/document"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/pipeline"
)

// MappingStore is the read side of mapping configuration. Both lookups
// return (nil, nil) when no active mapping exists.
type MappingStore interface {
	GetActiveFieldMapping(ctx context.Context, fieldID string, format models.DataFormat) (*models.FieldMapping, error)
	GetActiveDateMapping(ctx context.Context, deviceID string, format models.DataFormat) (*models.MeasurementDateMapping, error)
}

// FieldResult is the outcome of resolving one field. Exactly one of Value
// being non-nil or ErrMessage being non-empty holds for a failed field; a
// skipped field (absent pipeline result) carries neither.
type FieldResult struct {
	Value      *string
	ErrMessage string
}

type FieldResolver struct {
	mappings MappingStore
	logger   *zap.Logger
}

func NewFieldResolver(mappings MappingStore, logger *zap.Logger) *FieldResolver {
	return &FieldResolver{mappings: mappings, logger: logger}
}

// Resolve runs extraction and transformation for one field. Every failure
// is reported as a message, never an error: a broken field must not abort
// the measurement.
func (r *FieldResolver) Resolve(ctx context.Context, field models.DeviceField, raw string, format models.DataFormat) FieldResult {
	mapping, err := r.mappings.GetActiveFieldMapping(ctx, field.FieldID, format)
	if err != nil {
		return fieldFailure(field, err.Error())
	}
	if mapping == nil {
		return fieldFailure(field, fmt.Sprintf("no active mapping for format %s", format))
	}

	extracted, err := document.Extract(raw, format, mapping.SourceFieldPath)
	if err != nil {
		return fieldFailure(field, err.Error())
	}

	result := pipeline.Run(mapping.Pipeline, extracted)
	if !result.Succeeded() {
		return fieldFailure(field, result.Error())
	}
	if result.Value.IsNull() {
		// An absent value (Split past the end, unmatched regex) resolves
		// the field to nothing without marking the measurement failed.
		r.logger.Debug("field resolved to absent value",
			zap.String("field_name", field.FieldName),
		)
		return FieldResult{}
	}

	text := result.Value.Text()
	return FieldResult{Value: &text}
}

func fieldFailure(field models.DeviceField, msg string) FieldResult {
	return FieldResult{ErrMessage: fmt.Sprintf("Field '%s': %s", field.FieldName, msg)}
}
