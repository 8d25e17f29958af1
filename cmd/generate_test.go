package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadPipelineConfigOnly(t *testing.T) {
	configPath = writeConfig(t, `{
	  "schema": "registry.schema.json",
	  "documents": ["docs/**/*.md"],
	  "format": "yaml"
	}`)
	defer resetFlags(t)

	pipeline, err := loadPipeline(generateCmd)
	require.NoError(t, err)

	// Defaulted flags must not override the config.
	assert.Equal(t, "yaml", pipeline.Format)
	assert.Equal(t, []string{"docs/**/*.md"}, pipeline.Documents)
	assert.Equal(t, "registry.schema.json", pipeline.Schema)
}

func TestLoadPipelineFlagsWinWhenSet(t *testing.T) {
	configPath = writeConfig(t, `{
	  "schema": "registry.schema.json",
	  "documents": ["docs/**/*.md"],
	  "format": "yaml"
	}`)
	defer resetFlags(t)

	flags := generateCmd.Flags()
	require.NoError(t, flags.Set("format", "json"))
	require.NoError(t, flags.Set("glob", "notes/*.md"))

	pipeline, err := loadPipeline(generateCmd)
	require.NoError(t, err)

	assert.Equal(t, "json", pipeline.Format)
	assert.Equal(t, []string{"notes/*.md"}, pipeline.Documents)
}

func TestLoadPipelineRequiresSchema(t *testing.T) {
	configPath = ""
	defer resetFlags(t)

	_, err := loadPipeline(generateCmd)
	assert.ErrorContains(t, err, "no schema")
}

// resetFlags restores the package-level flag state between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	configPath = ""
	schemaPath = ""
	docGlobs = []string{"**/*.md"}
	outFormat = "json"
	flags := generateCmd.Flags()
	for _, name := range []string{"format", "glob"} {
		f := flags.Lookup(name)
		require.NotNil(t, f)
		f.Changed = false
	}
}
