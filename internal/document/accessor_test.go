package document_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"telemetry-ingest/internal/document"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/pipeline"
)

func TestExtract_JSONLeafValues(t *testing.T) {
	raw := `{"readings":{"raw":"A,423,B","temp":23.5,"ok":true,"none":null}}`

	v, err := document.Extract(raw, models.FormatJSON, "readings.raw")
	require.NoError(t, err)
	require.Equal(t, pipeline.KindString, v.Kind())
	require.Equal(t, "A,423,B", v.Text())

	v, err = document.Extract(raw, models.FormatJSON, "readings.temp")
	require.NoError(t, err)
	require.Equal(t, pipeline.KindNumber, v.Kind())
	require.Equal(t, "23.5", v.Text())

	v, err = document.Extract(raw, models.FormatJSON, "readings.ok")
	require.NoError(t, err)
	require.Equal(t, pipeline.KindBool, v.Kind())

	v, err = document.Extract(raw, models.FormatJSON, "readings.none")
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestExtract_JSONArrayStaysComposite(t *testing.T) {
	raw := `{"samples":[10,20,30]}`

	v, err := document.Extract(raw, models.FormatJSON, "samples")
	require.NoError(t, err)
	items, err := v.AsArray()
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "20", items[1].Text())
}

func TestExtract_JSONPathNotFound(t *testing.T) {
	_, err := document.Extract(`{"a":1}`, models.FormatJSON, "a.b.c")
	require.Error(t, err)
	require.True(t, errors.Is(err, document.ErrPathNotFound))
}

func TestExtract_InvalidJSON(t *testing.T) {
	_, err := document.Extract(`{broken`, models.FormatJSON, "a")
	require.Error(t, err)
	require.False(t, errors.Is(err, document.ErrPathNotFound))
}

func TestExtract_XML(t *testing.T) {
	raw := `<telemetry><readings><temp>23.5</temp></readings></telemetry>`

	v, err := document.Extract(raw, models.FormatXML, "readings.temp")
	require.NoError(t, err)
	require.Equal(t, "23.5", v.Text())

	_, err = document.Extract(raw, models.FormatXML, "readings.humidity")
	require.True(t, errors.Is(err, document.ErrPathNotFound))

	_, err = document.Extract(`<broken`, models.FormatXML, "a")
	require.Error(t, err)
}

func TestExtract_PlainTextIgnoresPath(t *testing.T) {
	v, err := document.Extract("T:23.5;H:40", models.FormatPlainText, "whatever.path")
	require.NoError(t, err)
	require.Equal(t, "T:23.5;H:40", v.Text())
}

func TestExtract_EmptyPathReturnsRawPayload(t *testing.T) {
	v, err := document.Extract(`{"a":1}`, models.FormatJSON, "")
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, v.Text())
}
