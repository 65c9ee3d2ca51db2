package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
)

// ErrMeasurementNotFound reports a lookup of a measurement id that does not
// exist.
var ErrMeasurementNotFound = errors.New("measurement not found")

// MeasurementRepository persists assembled measurements and their values.
type MeasurementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMeasurementRepository(db *sql.DB, logger *zap.Logger) *MeasurementRepository {
	return &MeasurementRepository{db: db, logger: logger}
}

// SaveMeasurement writes a measurement and its field values in one
// transaction.
func (r *MeasurementRepository) SaveMeasurement(ctx context.Context, m *models.DeviceMeasurement, values []models.FieldMeasurementValue) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO device_measurements
			(measurement_id, device_id, raw_data, data_format, created_on,
			 measurement_date, parsed_successfully, parsing_errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
	`,
		m.MeasurementID,
		m.DeviceID,
		m.RawData,
		string(m.DataFormat),
		m.CreatedOn,
		m.MeasurementDate,
		m.ParsedSuccessfully,
		m.ParsingErrors,
	)
	if err != nil {
		return fmt.Errorf("failed to insert measurement: %w", err)
	}

	for _, v := range values {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO field_measurement_values
				(value_id, measurement_id, field_id, value)
			VALUES ($1, $2, $3, $4)
		`,
			v.ValueID,
			v.MeasurementID,
			v.FieldID,
			v.Value,
		)
		if err != nil {
			return fmt.Errorf("failed to insert field value %s: %w", v.FieldID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit measurement: %w", err)
	}
	return nil
}

// GetMeasurement loads one measurement by id.
func (r *MeasurementRepository) GetMeasurement(ctx context.Context, measurementID string) (*models.DeviceMeasurement, error) {
	query := `
		SELECT measurement_id, device_id, raw_data, data_format, created_on,
		       measurement_date, parsed_successfully, COALESCE(parsing_errors, '')
		FROM device_measurements
		WHERE measurement_id = $1
	`

	var m models.DeviceMeasurement
	err := r.db.QueryRowContext(ctx, query, measurementID).Scan(
		&m.MeasurementID,
		&m.DeviceID,
		&m.RawData,
		&m.DataFormat,
		&m.CreatedOn,
		&m.MeasurementDate,
		&m.ParsedSuccessfully,
		&m.ParsingErrors,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrMeasurementNotFound, measurementID)
		}
		return nil, fmt.Errorf("failed to query measurement: %w", err)
	}
	return &m, nil
}

// ListMeasurements returns the most recent measurements of a device,
// newest first.
func (r *MeasurementRepository) ListMeasurements(ctx context.Context, deviceID string, limit int) ([]models.DeviceMeasurement, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT measurement_id, device_id, raw_data, data_format, created_on,
		       measurement_date, parsed_successfully, COALESCE(parsing_errors, '')
		FROM device_measurements
		WHERE device_id = $1
		ORDER BY created_on DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var out []models.DeviceMeasurement
	for rows.Next() {
		var m models.DeviceMeasurement
		err := rows.Scan(
			&m.MeasurementID,
			&m.DeviceID,
			&m.RawData,
			&m.DataFormat,
			&m.CreatedOn,
			&m.MeasurementDate,
			&m.ParsedSuccessfully,
			&m.ParsingErrors,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurements: %w", err)
	}
	return out, nil
}

// ListValues returns the field values of one measurement with field names
// joined in.
func (r *MeasurementRepository) ListValues(ctx context.Context, measurementID string) ([]models.FieldMeasurementValue, error) {
	query := `
		SELECT v.value_id, v.measurement_id, v.field_id, f.field_name, v.value
		FROM field_measurement_values v
		JOIN device_fields f ON f.field_id = v.field_id
		WHERE v.measurement_id = $1
		ORDER BY f.display_order, f.field_name
	`

	rows, err := r.db.QueryContext(ctx, query, measurementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query field values: %w", err)
	}
	defer rows.Close()

	var out []models.FieldMeasurementValue
	for rows.Next() {
		var v models.FieldMeasurementValue
		if err := rows.Scan(&v.ValueID, &v.MeasurementID, &v.FieldID, &v.FieldName, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan field value: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate field values: %w", err)
	}
	return out, nil
}

// UpdateMeasurementDate is the one explicit post-assembly update the core
// allows from outside.
func (r *MeasurementRepository) UpdateMeasurementDate(ctx context.Context, measurementID string, date time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE device_measurements SET measurement_date = $1 WHERE measurement_id = $2`,
		date, measurementID,
	)
	if err != nil {
		return fmt.Errorf("failed to update measurement date: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrMeasurementNotFound, measurementID)
	}
	return nil
}

// DeleteMeasurement removes a measurement and its values.
func (r *MeasurementRepository) DeleteMeasurement(ctx context.Context, measurementID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM field_measurement_values WHERE measurement_id = $1`, measurementID); err != nil {
		return fmt.Errorf("failed to delete field values: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM device_measurements WHERE measurement_id = $1`, measurementID); err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
