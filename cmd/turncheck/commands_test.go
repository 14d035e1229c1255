package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/turncheck/pkg/fixtures"
)

func TestCreateExamples(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, runCreateExamples(&out, &createExamplesOptions{Dir: dir}))
	assert.Contains(t, out.String(), "Created example files")
	for _, name := range []string{fixtures.ValidExampleFile, fixtures.InvalidExampleFile, fixtures.SettingsFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	out.Reset()
	var asked []string
	require.NoError(t, runCreateExamples(&out, &createExamplesOptions{
		Dir: dir,
		Ask: func(path string) (bool, error) {
			asked = append(asked, filepath.Base(path))
			return false, nil
		},
	}))
	assert.Len(t, asked, 3)
	assert.Contains(t, out.String(), "No files written")

	out.Reset()
	require.NoError(t, runCreateExamples(&out, &createExamplesOptions{Dir: dir, Force: true}))
	assert.Contains(t, out.String(), fixtures.SettingsFile)
}

func TestValidateCreateExamplesFlag(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", "--create-examples", "--dir", dir})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, fixtures.ValidExampleFile))
}

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSchema(&out, &schemaOptions{}))

	var schema map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
	assert.Equal(t, "array", schema["type"])

	dir := t.TempDir()
	config := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(config, []byte("allowed_speakers: [human, ai]\nreply_speaker: ai\n"), 0o644))

	out.Reset()
	require.NoError(t, runSchema(&out, &schemaOptions{ConfigPath: config}))
	assert.Contains(t, out.String(), `"human"`)

	out.Reset()
	require.NoError(t, runSchema(&out, &schemaOptions{Settings: true}))
	assert.Contains(t, out.String(), "max_turns")
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "turncheck dev\n", out.String())
}

func TestInitLoggerRejectsUnknownValues(t *testing.T) {
	require.NoError(t, InitLogger(&logConfig{Level: "debug", LogFormat: "json"}))
	require.Error(t, InitLogger(&logConfig{Level: "loud"}))
	require.Error(t, InitLogger(&logConfig{Level: "info", LogFormat: "xml"}))
	require.NoError(t, InitLogger(&logConfig{Level: "info"}))
}

func TestAppConfigFromArgs(t *testing.T) {
	assert.Equal(t, "a.yaml", appConfigFromArgs([]string{"validate", "--app-config", "a.yaml"}))
	assert.Equal(t, "b.yaml", appConfigFromArgs([]string{"--app-config=b.yaml", "validate"}))
	assert.Equal(t, "", appConfigFromArgs([]string{"validate", "--config", "c.yaml"}))
}
