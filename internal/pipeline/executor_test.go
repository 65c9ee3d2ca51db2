package pipeline_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/pipeline"
)

func steps(pairs ...string) []models.PipelineStep {
	var out []models.PipelineStep
	for i := 0; i < len(pairs); i += 2 {
		s := models.PipelineStep{Type: pairs[i]}
		if pairs[i+1] != "" {
			s.Config = json.RawMessage(pairs[i+1])
		}
		out = append(out, s)
	}
	return out
}

func TestExecute_StepsRunInDeclaredOrder(t *testing.T) {
	r := pipeline.Run(steps(
		"Split", `{"delimiter":",","position":1}`,
		"Divide", `{"value":10}`,
	), pipeline.String("A,423,B"))
	require.True(t, r.Succeeded(), r.Error())
	require.Equal(t, "42.3", r.Value.Text())

	// Reversed order fails: Divide cannot coerce the unsplit payload.
	r = pipeline.Run(steps(
		"Divide", `{"value":10}`,
		"Split", `{"delimiter":",","position":1}`,
	), pipeline.String("A,423,B"))
	require.False(t, r.Succeeded())
	require.Equal(t, "Divide", r.FailedStep)
}

func TestExecute_NotCommutative(t *testing.T) {
	r := pipeline.Run(steps(
		"Split", `{"delimiter":",","position":1}`,
		"ToDecimal", "",
	), pipeline.String("3,4"))
	require.True(t, r.Succeeded(), r.Error())
	require.Equal(t, "4", r.Value.Text())

	r = pipeline.Run(steps(
		"ToDecimal", "",
		"Split", `{"delimiter":",","position":1}`,
	), pipeline.String("3,4"))
	require.False(t, r.Succeeded())
	require.Equal(t, "ToDecimal", r.FailedStep)
}

func TestExecute_EmptyPipelineIsIdentity(t *testing.T) {
	r := pipeline.Run(nil, pipeline.String("raw"))
	require.True(t, r.Succeeded())
	require.Equal(t, "raw", r.Value.Text())
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	r := pipeline.Run(steps(
		"ToDecimal", "",
		"Divide", `{"value":0}`,
		"Add", `{"value":1}`,
	), pipeline.String("10"))
	require.False(t, r.Succeeded())
	require.Equal(t, "Divide", r.FailedStep)
	require.Contains(t, r.Error(), "Divide: ")
}

func TestRun_BuildFailureNamesStep(t *testing.T) {
	r := pipeline.Run(steps(
		"Split", `{"delimiter":",","position":0}`,
		"Nope", "",
	), pipeline.String("x"))
	require.False(t, r.Succeeded())
	require.Equal(t, "pipeline", r.FailedStep)
	require.Contains(t, r.Error(), "step 1 (Nope)")
}

func TestDecodePipeline(t *testing.T) {
	got, err := models.DecodePipeline(nil)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = models.DecodePipeline([]byte(`[{"type":"Trim"},{"type":"ToDecimal"}]`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Trim", got[0].Type)

	_, err = models.DecodePipeline([]byte(`{not json`))
	require.Error(t, err)
}
