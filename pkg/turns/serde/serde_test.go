package serde

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/turncheck/pkg/turns"
)

func TestDecodeArray(t *testing.T) {
	doc := Decode([]byte(`[
  {"turn_id": 1, "speaker": "user", "message": "hi"},
  {"turn_id": 2, "speaker": "assistant", "assistant_reply": "hello"}
]`))
	require.False(t, doc.Aborted())
	assert.Equal(t, FormatJSONArray, doc.Format)
	assert.Empty(t, doc.Problems)

	conv, ok := turns.AsConversation(doc.Root)
	require.True(t, ok)
	require.Len(t, conv, 2)

	first, ok := turns.AsTurn(conv[0])
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), first[turns.FieldTurnID], "numbers keep their textual form")
}

func TestDecodeArraySyntaxErrorAborts(t *testing.T) {
	doc := Decode([]byte("[\n  {\"turn_id\": 1},\n  {\"turn_id\": 2,,}\n]"))
	require.True(t, doc.Aborted())
	require.Len(t, doc.Problems, 1)
	assert.Equal(t, 3, doc.Problems[0].Line)
	assert.Contains(t, doc.Problems[0].Message, "invalid JSON")
}

func TestDecodeArrayTruncated(t *testing.T) {
	doc := Decode([]byte("[\n{\"turn_id\": 1}\n"))
	require.True(t, doc.Aborted())
	assert.Equal(t, 3, doc.Problems[0].Line)
}

func TestDecodeJSONLSkipsBadLines(t *testing.T) {
	data := []byte(`{"turn_id": 1, "speaker": "user", "message": "hi"}

{"turn_id": 2, "speaker": "assistant"
{"turn_id": 3, "speaker": "assistant", "assistant_reply": "ok"}
`)
	doc := Decode(data)
	assert.Equal(t, FormatJSONL, doc.Format)
	require.False(t, doc.Aborted())
	require.Len(t, doc.Problems, 1)
	assert.Equal(t, 3, doc.Problems[0].Line)
	assert.Contains(t, doc.Problems[0].Message, "line 3")

	conv, ok := turns.AsConversation(doc.Root)
	require.True(t, ok)
	assert.Len(t, conv, 2)
}

func TestDecodeSingleLineObjectIsJSONL(t *testing.T) {
	doc := Decode([]byte(`{"not": "a list"}`))
	assert.Equal(t, FormatJSONL, doc.Format)
	conv, ok := turns.AsConversation(doc.Root)
	require.True(t, ok)
	assert.Len(t, conv, 1)
}

func TestDecodePrettyPrintedObjectIsRoot(t *testing.T) {
	doc := Decode([]byte("{\n  \"not\": \"a list\"\n}\n"))
	assert.Equal(t, FormatJSON, doc.Format)
	_, ok := turns.AsConversation(doc.Root)
	assert.False(t, ok)
	_, ok = doc.Root.(map[string]any)
	assert.True(t, ok)
}

func TestDecodeEmpty(t *testing.T) {
	doc := Decode([]byte("  \n"))
	conv, ok := turns.AsConversation(doc.Root)
	require.True(t, ok)
	assert.Empty(t, conv)
	assert.Empty(t, doc.Problems)
}

func TestDecodeYAML(t *testing.T) {
	doc := DecodeYAML([]byte(`
- turn_id: 1
  speaker: user
  message: hi
- turn_id: 2
  speaker: assistant
  assistant_reply: hello
`))
	require.False(t, doc.Aborted())
	conv, ok := turns.AsConversation(doc.Root)
	require.True(t, ok)
	require.Len(t, conv, 2)

	second, ok := turns.AsTurn(conv[1])
	require.True(t, ok)
	id, ok := second.Int(turns.FieldTurnID)
	assert.True(t, ok)
	assert.Equal(t, 2, id)
}

func TestDecodeYAMLFloatsAreDecimals(t *testing.T) {
	doc := DecodeYAML([]byte(`
- turn_id: 1.0
  speaker: user
  message: hi
- turn_id: 1e300
  speaker: assistant
  assistant_reply: hello
  confidence_score: 0.75
`))
	require.False(t, doc.Aborted())
	conv, ok := turns.AsConversation(doc.Root)
	require.True(t, ok)
	require.Len(t, conv, 2)

	first, ok := turns.AsTurn(conv[0])
	require.True(t, ok)
	assert.Equal(t, json.Number("1.0"), first[turns.FieldTurnID])
	_, ok = first.Int(turns.FieldTurnID)
	assert.False(t, ok)

	second, ok := turns.AsTurn(conv[1])
	require.True(t, ok)
	_, ok = second.Int(turns.FieldTurnID)
	assert.False(t, ok)
	score, ok := turns.FloatValue(second[turns.FieldConfidenceScore])
	require.True(t, ok)
	assert.Equal(t, 0.75, score)
}

func TestDecodeYAMLError(t *testing.T) {
	doc := DecodeYAML([]byte("- turn_id: 1\n  speaker: [user\n"))
	require.True(t, doc.Aborted())
	assert.GreaterOrEqual(t, doc.Problems[0].Line, 1)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conv.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"turn_id\": 1}\n{\"turn_id\": 2}\n"), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, FormatJSONL, doc.Format)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
