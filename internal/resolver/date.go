package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"telemetry-ingest/internal/document"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/pipeline"
)

type DateResolver struct {
	mappings MappingStore
	logger   *zap.Logger
}

func NewDateResolver(mappings MappingStore, logger *zap.Logger) *DateResolver {
	return &DateResolver{mappings: mappings, logger: logger}
}

// Resolve determines the measurement timestamp. Any failure falls back to
// the ingestion time and returns an explanatory note; date resolution never
// blocks ingestion.
func (r *DateResolver) Resolve(ctx context.Context, deviceID, raw string, format models.DataFormat, ingestedAt time.Time) (time.Time, string) {
	mapping, err := r.mappings.GetActiveDateMapping(ctx, deviceID, format)
	if err != nil {
		return ingestedAt, fmt.Sprintf("measurement date: %v", err)
	}
	if mapping == nil {
		return ingestedAt, ""
	}

	extracted, err := document.Extract(raw, format, mapping.SourceFieldPath)
	if err != nil {
		return ingestedAt, fmt.Sprintf("measurement date: %v", err)
	}

	result := pipeline.Run(mapping.Pipeline, extracted)
	if !result.Succeeded() {
		return ingestedAt, fmt.Sprintf("measurement date: %s", result.Error())
	}

	if t, err := result.Value.AsTime(); err == nil {
		return t, ""
	}

	// The pipeline produced text or a number; try a generic parse before
	// giving up.
	t, err := dateparse.ParseAny(result.Value.Text())
	if err != nil {
		r.logger.Debug("measurement date fell back to ingestion time",
			zap.String("device_id", deviceID),
			zap.String("resolved", result.Value.Text()),
		)
		return ingestedAt, fmt.Sprintf("measurement date: cannot interpret %q as a timestamp", result.Value.Text())
	}
	return t, ""
}
