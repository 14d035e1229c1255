package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Default()
	assert.Equal(t, 1, s.MinTurns)
	assert.Equal(t, 100, s.MaxTurns)
	assert.Equal(t, 1, s.MinMessageLength)
	assert.Equal(t, 5000, s.MaxMessageLength)
	assert.Equal(t, []string{"turn_id", "speaker"}, s.RequiredFields)
	assert.Equal(t, []string{"user", "assistant"}, s.AllowedSpeakers)
	assert.Equal(t, "assistant", s.ReplySpeaker)
	assert.Equal(t, []string{"tool_used", "tool_input", "tool_output"}, s.ToolFieldsRequiredTogether)
	assert.Equal(t, []string{"turn_id", "speaker", "message"}, s.RequiredFor("user"))
	assert.Equal(t, []string{"turn_id", "speaker", "assistant_reply"}, s.RequiredFor("assistant"))
}

func TestOptions(t *testing.T) {
	s := NewValidationSettings(
		WithMinTurns(2),
		WithMaxTurns(5),
		WithRequiredFields("turn_id", "speaker", "message"),
		WithAllowedSpeakers("human", "ai"),
		WithReplySpeaker("ai"),
	)
	assert.Equal(t, 2, s.MinTurns)
	assert.Equal(t, 5, s.MaxTurns)
	assert.Equal(t, []string{"turn_id", "speaker", "message"}, s.RequiredFields)
	assert.True(t, s.IsAllowedSpeaker("human"))
	assert.False(t, s.IsAllowedSpeaker("user"))
	assert.True(t, s.IsReplySpeaker("ai"))
}

func TestWithDoesNotMutate(t *testing.T) {
	base := Default()
	changed := base.With(WithRoleRequiredFields("user"), WithAllowedSpeakers("a"))

	assert.Equal(t, []string{"message"}, base.RoleRequiredFields["user"])
	assert.Equal(t, []string{"user", "assistant"}, base.AllowedSpeakers)
	assert.Empty(t, changed.RoleRequiredFields["user"])
	assert.Equal(t, []string{"a"}, changed.AllowedSpeakers)
}

func TestClone(t *testing.T) {
	s := Default()
	c := s.Clone()
	c.AllowedSpeakers[0] = "changed"
	c.RoleRequiredFields["user"] = nil
	assert.Equal(t, "user", s.AllowedSpeakers[0])
	assert.Equal(t, []string{"message"}, s.RoleRequiredFields["user"])
}

func TestParseMissingKeysKeepDefaults(t *testing.T) {
	s, err := Parse([]byte("max_turns: 10\nunknown_key: whatever\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, s.MaxTurns)
	assert.Equal(t, 1, s.MinTurns)
	assert.Equal(t, 5000, s.MaxMessageLength)
	assert.Equal(t, []string{"user", "assistant"}, s.AllowedSpeakers)
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestParseLegacyKeys(t *testing.T) {
	s, err := Parse([]byte(`
required_keys_user: [turn_id, speaker]
required_keys_assistant: [turn_id, speaker, assistant_reply]
optional_keys: [tool_used, tool_input, tool_output, message]
valid_speakers: [user, assistant, system]
tool_keys_required_together: [tool_input, tool_output]
`))
	require.NoError(t, err)
	assert.Empty(t, s.RoleRequiredFields["user"])
	assert.Equal(t, []string{"assistant_reply"}, s.RoleRequiredFields["assistant"])
	assert.Equal(t, []string{"user", "assistant", "system"}, s.AllowedSpeakers)
	assert.Equal(t, []string{"tool_used", "tool_input", "tool_output", "message"}, s.OptionalFields)
	assert.Equal(t, []string{"tool_input", "tool_output"}, s.ToolFieldsRequiredTogether)
}

func TestParseCurrentKeysWinOverLegacy(t *testing.T) {
	s, err := Parse([]byte(`
valid_speakers: [a]
allowed_speakers: [b]
role_required_fields:
  b: [message]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, s.AllowedSpeakers)
	assert.Equal(t, map[string][]string{"b": {"message"}}, s.RoleRequiredFields)
}

func TestParseRejectsWrongTypes(t *testing.T) {
	_, err := Parse([]byte("min_turns: lots\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_turns")

	_, err = Parse([]byte("- just\n- a list\n"))
	require.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	s := NewValidationSettings(WithMaxTurns(7), WithWarnUnknownFields(true))
	b, err := s.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(b)
	require.NoError(t, err)
	assert.Equal(t, s, parsed)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "validation_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_message_length: 10\nmax_message_length: 50\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, s.MinMessageLength)
	assert.Equal(t, 50, s.MaxMessageLength)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSchemaListsLegacyKeys(t *testing.T) {
	s := Schema()
	require.NotNil(t, s.Properties)
	_, ok := s.Properties.Get("valid_speakers")
	assert.True(t, ok)
	_, ok = s.Properties.Get("max_turns")
	assert.True(t, ok)
}
