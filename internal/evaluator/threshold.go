// Package evaluator classifies resolved field values against their
// configured threshold bounds.
package evaluator

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
)

type ThresholdEvaluator struct {
	logger *zap.Logger
}

func NewThresholdEvaluator(logger *zap.Logger) *ThresholdEvaluator {
	return &ThresholdEvaluator{logger: logger}
}

// Evaluate classifies every numeric field value that declares at least one
// bound. Critical bounds are checked before warning bounds; values that do
// not parse as a decimal are skipped. Only non-Normal classifications are
// returned.
func (e *ThresholdEvaluator) Evaluate(fields []models.DeviceField, values []models.FieldMeasurementValue) []models.ThresholdStatus {
	byID := make(map[string]models.DeviceField, len(fields))
	for _, f := range fields {
		byID[f.FieldID] = f
	}

	var statuses []models.ThresholdStatus
	for _, v := range values {
		field, ok := byID[v.FieldID]
		if !ok || !field.IsNumeric() || !field.HasThresholds() {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			e.logger.Debug("skipping threshold check for unparseable value",
				zap.String("field_name", field.FieldName),
				zap.String("value", v.Value),
			)
			continue
		}

		level := classify(field, value)
		if level == models.LevelNormal {
			continue
		}
		statuses = append(statuses, models.ThresholdStatus{
			FieldID:        field.FieldID,
			FieldName:      field.FieldName,
			Status:         level,
			Value:          value,
			ThresholdValue: crossedBound(field, level, value),
			Unit:           field.Unit,
		})
	}
	return statuses
}

func classify(f models.DeviceField, v float64) models.ThresholdLevel {
	if (f.CriticalMin != nil && v < *f.CriticalMin) ||
		(f.CriticalMax != nil && v > *f.CriticalMax) {
		return models.LevelCritical
	}
	if (f.WarningMin != nil && v < *f.WarningMin) ||
		(f.WarningMax != nil && v > *f.WarningMax) {
		return models.LevelWarning
	}
	return models.LevelNormal
}

// crossedBound picks the bound value to report. The min bound is chosen
// whenever the measured value is negative and a min bound exists, otherwise
// the max bound; which bound was actually exceeded is not consulted. This
// mirrors the long-standing behavior downstream consumers display.
func crossedBound(f models.DeviceField, level models.ThresholdLevel, v float64) float64 {
	var min, max *float64
	if level == models.LevelCritical {
		min, max = f.CriticalMin, f.CriticalMax
	} else {
		min, max = f.WarningMin, f.WarningMax
	}
	if v < 0 && min != nil {
		return *min
	}
	if max != nil {
		return *max
	}
	if min != nil {
		return *min
	}
	return 0
}
