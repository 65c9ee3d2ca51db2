package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
)

// MappingRepository reads field and measurement-date mappings.
type MappingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMappingRepository(db *sql.DB, logger *zap.Logger) *MappingRepository {
	return &MappingRepository{db: db, logger: logger}
}

// GetActiveFieldMapping loads the active mapping for (field, format).
// Returns (nil, nil) when no active mapping exists. Should more than one be
// active, the first match wins.
func (r *MappingRepository) GetActiveFieldMapping(ctx context.Context, fieldID string, format models.DataFormat) (*models.FieldMapping, error) {
	query := `
		SELECT mapping_id, field_id, data_format, source_field_path, transformation_pipeline, is_active
		FROM field_mappings
		WHERE field_id = $1 AND data_format = $2 AND is_active = true
		ORDER BY mapping_id
		LIMIT 1
	`

	var m models.FieldMapping
	var path sql.NullString
	var rawPipeline []byte

	err := r.db.QueryRowContext(ctx, query, fieldID, string(format)).Scan(
		&m.MappingID,
		&m.FieldID,
		&m.DataFormat,
		&path,
		&rawPipeline,
		&m.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query field mapping: %w", err)
	}

	if path.Valid {
		m.SourceFieldPath = path.String
	}
	m.Pipeline, err = models.DecodePipeline(rawPipeline)
	if err != nil {
		return nil, fmt.Errorf("invalid transformation pipeline for mapping %s: %w", m.MappingID, err)
	}
	return &m, nil
}

// GetActiveDateMapping loads the active measurement-date mapping for
// (device, format). Returns (nil, nil) when none exists.
func (r *MappingRepository) GetActiveDateMapping(ctx context.Context, deviceID string, format models.DataFormat) (*models.MeasurementDateMapping, error) {
	query := `
		SELECT mapping_id, device_id, data_format, source_field_path, transformation_pipeline, is_active
		FROM measurement_date_mappings
		WHERE device_id = $1 AND data_format = $2 AND is_active = true
		ORDER BY mapping_id
		LIMIT 1
	`

	var m models.MeasurementDateMapping
	var path sql.NullString
	var rawPipeline []byte

	err := r.db.QueryRowContext(ctx, query, deviceID, string(format)).Scan(
		&m.MappingID,
		&m.DeviceID,
		&m.DataFormat,
		&path,
		&rawPipeline,
		&m.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query date mapping: %w", err)
	}

	if path.Valid {
		m.SourceFieldPath = path.String
	}
	m.Pipeline, err = models.DecodePipeline(rawPipeline)
	if err != nil {
		return nil, fmt.Errorf("invalid transformation pipeline for date mapping %s: %w", m.MappingID, err)
	}
	return &m, nil
}

// EncodePipeline serializes pipeline steps for storage.
func EncodePipeline(steps []models.PipelineStep) ([]byte, error) {
	if len(steps) == 0 {
		return nil, nil
	}
	return json.Marshal(steps)
}
