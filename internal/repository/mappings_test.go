package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/repository"
)

func newMappingRepo(t *testing.T) (*repository.MappingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewMappingRepository(db, zap.NewNop()), mock
}

var mappingCols = []string{
	"mapping_id", "field_id", "data_format", "source_field_path", "transformation_pipeline", "is_active",
}

func TestGetActiveFieldMapping(t *testing.T) {
	repo, mock := newMappingRepo(t)
	pipelineJSON := `[{"type":"Split","config":{"delimiter":",","position":1}}]`

	mock.ExpectQuery(regexp.QuoteMeta("FROM field_mappings")).
		WithArgs("f-1", "Json").
		WillReturnRows(sqlmock.NewRows(mappingCols).
			AddRow("m-1", "f-1", "Json", "readings.raw", []byte(pipelineJSON), true))

	m, err := repo.GetActiveFieldMapping(context.Background(), "f-1", models.FormatJSON)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "readings.raw", m.SourceFieldPath)
	require.Len(t, m.Pipeline, 1)
	require.Equal(t, "Split", m.Pipeline[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveFieldMapping_NoneIsNotAnError(t *testing.T) {
	repo, mock := newMappingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM field_mappings")).
		WithArgs("f-1", "Xml").
		WillReturnRows(sqlmock.NewRows(mappingCols))

	m, err := repo.GetActiveFieldMapping(context.Background(), "f-1", models.FormatXML)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestGetActiveFieldMapping_NullPathAndPipeline(t *testing.T) {
	repo, mock := newMappingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM field_mappings")).
		WithArgs("f-1", "PlainText").
		WillReturnRows(sqlmock.NewRows(mappingCols).
			AddRow("m-1", "f-1", "PlainText", nil, nil, true))

	m, err := repo.GetActiveFieldMapping(context.Background(), "f-1", models.FormatPlainText)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Empty(t, m.SourceFieldPath)
	require.Empty(t, m.Pipeline)
}

func TestGetActiveFieldMapping_BrokenPipelineJSON(t *testing.T) {
	repo, mock := newMappingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM field_mappings")).
		WithArgs("f-1", "Json").
		WillReturnRows(sqlmock.NewRows(mappingCols).
			AddRow("m-1", "f-1", "Json", "v", []byte(`{broken`), true))

	_, err := repo.GetActiveFieldMapping(context.Background(), "f-1", models.FormatJSON)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid transformation pipeline")
}

func TestGetActiveDateMapping(t *testing.T) {
	repo, mock := newMappingRepo(t)
	cols := []string{
		"mapping_id", "device_id", "data_format", "source_field_path", "transformation_pipeline", "is_active",
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM measurement_date_mappings")).
		WithArgs("dev-1", "Json").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("m-9", "dev-1", "Json", "ts", []byte(`[{"type":"UnixTimestamp"}]`), true))

	m, err := repo.GetActiveDateMapping(context.Background(), "dev-1", models.FormatJSON)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "ts", m.SourceFieldPath)
	require.Len(t, m.Pipeline, 1)
}

func TestEncodePipeline_RoundTrip(t *testing.T) {
	raw, err := repository.EncodePipeline(nil)
	require.NoError(t, err)
	require.Nil(t, raw)

	steps := []models.PipelineStep{{Type: "Trim"}}
	raw, err = repository.EncodePipeline(steps)
	require.NoError(t, err)

	decoded, err := models.DecodePipeline(raw)
	require.NoError(t, err)
	require.Equal(t, steps, decoded)
}
