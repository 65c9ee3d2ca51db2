package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"telemetry-ingest/internal/pipeline"
)

func TestCatalog_TypesAreUniqueAndDescribed(t *testing.T) {
	catalog := pipeline.Catalog()
	require.NotEmpty(t, catalog)

	seen := make(map[string]bool, len(catalog))
	for _, tt := range catalog {
		require.NotEmpty(t, tt.Type)
		require.False(t, seen[tt.Type], "duplicate type %s", tt.Type)
		seen[tt.Type] = true
		require.NotEmpty(t, tt.Name, "type %s has no name", tt.Type)
		require.NotEmpty(t, tt.Category, "type %s has no category", tt.Type)
		require.NotEmpty(t, tt.Description, "type %s has no description", tt.Type)
	}

	for _, expected := range []string{"Split", "Divide", "RangeMapping", "UnixTimestamp", "ValidateChecksum"} {
		require.True(t, seen[expected], "catalog is missing %s", expected)
	}
}
