package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/turncheck/pkg/settings"
	"github.com/go-go-golems/turncheck/pkg/validation"
)

func TestWrittenExamplesValidateAsAdvertised(t *testing.T) {
	dir := t.TempDir()
	written, err := Write(dir, WriteOptions{})
	require.NoError(t, err)
	require.Len(t, written, 3)

	s, err := settings.Load(filepath.Join(dir, SettingsFile))
	require.NoError(t, err)
	assert.Equal(t, settings.Default(), s)

	v := validation.NewValidator(s)

	valid := v.ValidateFile(filepath.Join(dir, ValidExampleFile))
	assert.True(t, valid.IsValid, "%v", valid.Errors)
	assert.Equal(t, 4, valid.TotalTurns)

	invalid := v.ValidateFile(filepath.Join(dir, InvalidExampleFile))
	assert.False(t, invalid.IsValid)
	assert.Equal(t, 4, invalid.TotalTurns)
	assert.ElementsMatch(t, []validation.ErrorKind{
		validation.KindRequiredFieldMissing,
		validation.KindInvalidFieldType,
		validation.KindInvalidFieldValue,
		validation.KindSequence,
		validation.KindToolValidation,
	}, invalid.Kinds())
}

func TestWriteKeepsExistingFilesUnlessForced(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, ValidExampleFile)
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o644))

	written, err := Write(dir, WriteOptions{})
	require.NoError(t, err)
	assert.Len(t, written, 2)
	b, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(b))

	var asked []string
	written, err = Write(dir, WriteOptions{Confirm: func(path string) (bool, error) {
		asked = append(asked, filepath.Base(path))
		return path == existing, nil
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{ValidExampleFile, InvalidExampleFile, SettingsFile}, asked)
	assert.Equal(t, []string{existing}, written)

	written, err = Write(dir, WriteOptions{Force: true})
	require.NoError(t, err)
	assert.Len(t, written, 3)
}
