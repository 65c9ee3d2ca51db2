package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/repository"
)

func newMeasurementRepo(t *testing.T) (*repository.MeasurementRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewMeasurementRepository(db, zap.NewNop()), mock
}

func sampleMeasurement() (*models.DeviceMeasurement, []models.FieldMeasurementValue) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	m := &models.DeviceMeasurement{
		MeasurementID:      "m-1",
		DeviceID:           "dev-1",
		RawData:            `{"t":"25"}`,
		DataFormat:         models.FormatJSON,
		CreatedOn:          now,
		MeasurementDate:    now,
		ParsedSuccessfully: true,
	}
	values := []models.FieldMeasurementValue{
		{ValueID: "v-1", MeasurementID: "m-1", FieldID: "f-1", Value: "25"},
	}
	return m, values
}

func TestSaveMeasurement_CommitsValuesInOneTransaction(t *testing.T) {
	repo, mock := newMeasurementRepo(t)
	m, values := sampleMeasurement()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_measurements")).
		WithArgs(m.MeasurementID, m.DeviceID, m.RawData, "Json", m.CreatedOn,
			m.MeasurementDate, true, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO field_measurement_values")).
		WithArgs("v-1", "m-1", "f-1", "25").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveMeasurement(context.Background(), m, values))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMeasurement_RollsBackOnValueFailure(t *testing.T) {
	repo, mock := newMeasurementRepo(t)
	m, values := sampleMeasurement()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_measurements")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO field_measurement_values")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.SaveMeasurement(context.Background(), m, values)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to insert field value")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMeasurement(t *testing.T) {
	repo, mock := newMeasurementRepo(t)
	now := time.Now().UTC()

	cols := []string{
		"measurement_id", "device_id", "raw_data", "data_format", "created_on",
		"measurement_date", "parsed_successfully", "parsing_errors",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM device_measurements")).
		WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("m-1", "dev-1", "{}", "Json", now, now, true, ""))

	m, err := repo.GetMeasurement(context.Background(), "m-1")
	require.NoError(t, err)
	require.Equal(t, "dev-1", m.DeviceID)
}

func TestGetMeasurement_NotFound(t *testing.T) {
	repo, mock := newMeasurementRepo(t)

	cols := []string{
		"measurement_id", "device_id", "raw_data", "data_format", "created_on",
		"measurement_date", "parsed_successfully", "parsing_errors",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM device_measurements")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(cols))

	_, err := repo.GetMeasurement(context.Background(), "ghost")
	require.ErrorIs(t, err, repository.ErrMeasurementNotFound)
}

func TestListMeasurements(t *testing.T) {
	repo, mock := newMeasurementRepo(t)
	now := time.Now().UTC()

	cols := []string{
		"measurement_id", "device_id", "raw_data", "data_format", "created_on",
		"measurement_date", "parsed_successfully", "parsing_errors",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM device_measurements")).
		WithArgs("dev-1", 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("m-2", "dev-1", "{}", "Json", now, now, true, "").
			AddRow("m-1", "dev-1", "{}", "Json", now.Add(-time.Hour), now.Add(-time.Hour), false, "Field 'x': broken"))

	list, err := repo.ListMeasurements(context.Background(), "dev-1", 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "m-2", list[0].MeasurementID)
	require.False(t, list[1].ParsedSuccessfully)
	require.Contains(t, list[1].ParsingErrors, "broken")
}

func TestListMeasurements_DefaultLimit(t *testing.T) {
	repo, mock := newMeasurementRepo(t)

	cols := []string{
		"measurement_id", "device_id", "raw_data", "data_format", "created_on",
		"measurement_date", "parsed_successfully", "parsing_errors",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM device_measurements")).
		WithArgs("dev-1", 100).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err := repo.ListMeasurements(context.Background(), "dev-1", 0)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListValues(t *testing.T) {
	repo, mock := newMeasurementRepo(t)

	cols := []string{"value_id", "measurement_id", "field_id", "field_name", "value"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM field_measurement_values")).
		WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("v-1", "m-1", "f-1", "temperature", "42.3"))

	values, err := repo.ListValues(context.Background(), "m-1")
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Equal(t, "temperature", values[0].FieldName)
	require.Equal(t, "42.3", values[0].Value)
}

func TestUpdateMeasurementDate(t *testing.T) {
	repo, mock := newMeasurementRepo(t)
	date := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE device_measurements")).
		WithArgs(date, "m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateMeasurementDate(context.Background(), "m-1", date))
}

func TestUpdateMeasurementDate_NotFound(t *testing.T) {
	repo, mock := newMeasurementRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE device_measurements")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateMeasurementDate(context.Background(), "m-9", time.Now())
	require.Error(t, err)
	require.Contains(t, err.Error(), "measurement not found")
}

func TestDeleteMeasurement(t *testing.T) {
	repo, mock := newMeasurementRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM field_measurement_values")).
		WithArgs("m-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM device_measurements")).
		WithArgs("m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteMeasurement(context.Background(), "m-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
