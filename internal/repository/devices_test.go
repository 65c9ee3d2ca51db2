package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/repository"
)

func newMockDB(t *testing.T) (*repository.DeviceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewDeviceRepository(db, zap.NewNop()), mock
}

func TestGetDevice(t *testing.T) {
	repo, mock := newMockDB(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM devices")).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"device_id", "name", "is_active", "api_key", "created_on"}).
			AddRow("dev-1", "greenhouse-1", true, "key-123", created))

	d, err := repo.GetDevice(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Equal(t, "dev-1", d.DeviceID)
	require.Equal(t, "greenhouse-1", d.Name)
	require.True(t, d.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDevice_NotFound(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM devices")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(
			[]string{"device_id", "name", "is_active", "api_key", "created_on"}))

	_, err := repo.GetDevice(context.Background(), "missing")
	require.True(t, errors.Is(err, repository.ErrDeviceNotFound))
	require.Contains(t, err.Error(), "missing")
}

func TestListActiveFields(t *testing.T) {
	repo, mock := newMockDB(t)

	cols := []string{
		"field_id", "device_id", "field_name", "display_name", "data_type", "unit",
		"display_order", "is_active",
		"warning_min", "warning_max", "critical_min", "critical_max",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM device_fields")).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("f-1", "dev-1", "temperature", "Temperature", "Decimal", "C", 1, true, nil, 80.0, nil, 100.0).
			AddRow("f-2", "dev-1", "label", "Label", "String", "", 2, true, nil, nil, nil, nil))

	fields, err := repo.ListActiveFields(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Len(t, fields, 2)

	temp := fields[0]
	require.Equal(t, "temperature", temp.FieldName)
	require.Equal(t, models.TypeDecimal, temp.DataType)
	require.Nil(t, temp.WarningMin)
	require.NotNil(t, temp.WarningMax)
	require.Equal(t, 80.0, *temp.WarningMax)
	require.True(t, temp.HasThresholds())
	require.True(t, temp.IsNumeric())

	label := fields[1]
	require.False(t, label.HasThresholds())
	require.False(t, label.IsNumeric())
	require.NoError(t, mock.ExpectationsWereMet())
}
