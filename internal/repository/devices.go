package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
)

// ErrDeviceNotFound is the hard-failure case of measurement resolution.
var ErrDeviceNotFound = errors.New("device not found")

// DeviceRepository reads device and field configuration.
type DeviceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewDeviceRepository(db *sql.DB, logger *zap.Logger) *DeviceRepository {
	return &DeviceRepository{db: db, logger: logger}
}

// GetDevice loads one device by id.
func (r *DeviceRepository) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	query := `
		SELECT device_id, name, is_active, api_key, created_on
		FROM devices
		WHERE device_id = $1
	`

	var d models.Device
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&d.DeviceID,
		&d.Name,
		&d.IsActive,
		&d.APIKey,
		&d.CreatedOn,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
		}
		return nil, fmt.Errorf("failed to query device: %w", err)
	}
	return &d, nil
}

// ListActiveFields loads the active fields of a device in display order.
func (r *DeviceRepository) ListActiveFields(ctx context.Context, deviceID string) ([]models.DeviceField, error) {
	query := `
		SELECT
			field_id, device_id, field_name, display_name, data_type, unit,
			display_order, is_active,
			warning_min, warning_max, critical_min, critical_max
		FROM device_fields
		WHERE device_id = $1 AND is_active = true
		ORDER BY display_order, field_name
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device fields: %w", err)
	}
	defer rows.Close()

	var fields []models.DeviceField
	for rows.Next() {
		var f models.DeviceField
		var warnMin, warnMax, critMin, critMax sql.NullFloat64

		err := rows.Scan(
			&f.FieldID,
			&f.DeviceID,
			&f.FieldName,
			&f.DisplayName,
			&f.DataType,
			&f.Unit,
			&f.DisplayOrder,
			&f.IsActive,
			&warnMin,
			&warnMax,
			&critMin,
			&critMax,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device field: %w", err)
		}

		f.WarningMin = nullFloat(warnMin)
		f.WarningMax = nullFloat(warnMax)
		f.CriticalMin = nullFloat(critMin)
		f.CriticalMax = nullFloat(critMax)
		fields = append(fields, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device fields: %w", err)
	}
	return fields, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
