package fixtures

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/turncheck/pkg/settings"
	"github.com/go-go-golems/turncheck/pkg/turns"
)

const (
	ValidExampleFile   = "valid_example.json"
	InvalidExampleFile = "invalid_example.json"
	SettingsFile       = "validation_config.yaml"
)

// ValidExample is a small conversation that passes the default settings,
// including one complete tool call.
func ValidExample() []turns.Turn {
	return []turns.Turn{
		{
			turns.FieldTurnID:  1,
			turns.FieldSpeaker: turns.SpeakerUser,
			turns.FieldMessage: "What's the weather like today?",
		},
		{
			turns.FieldTurnID:          2,
			turns.FieldSpeaker:         turns.SpeakerAssistant,
			turns.FieldAssistantReply:  "I'll help you check the weather.",
			turns.FieldToolUsed:        "weather_api",
			turns.FieldToolInput:       map[string]any{"location": "current"},
			turns.FieldToolOutput:      map[string]any{"temperature": "72°F", "condition": "sunny"},
			turns.FieldConfidenceScore: 0.92,
		},
		{
			turns.FieldTurnID:  3,
			turns.FieldSpeaker: turns.SpeakerUser,
			turns.FieldMessage: "Thanks!",
		},
		{
			turns.FieldTurnID:         4,
			turns.FieldSpeaker:        turns.SpeakerAssistant,
			turns.FieldAssistantReply: "You're welcome! Is there anything else I can help you with?",
		},
	}
}

// InvalidExample exercises most error kinds: a missing turn_id, a string
// turn_id, a disallowed speaker, a sequence gap and an incomplete tool call.
func InvalidExample() []turns.Turn {
	return []turns.Turn{
		{
			turns.FieldTurnID:  1,
			turns.FieldSpeaker: turns.SpeakerUser,
			turns.FieldMessage: "Hello",
		},
		{
			turns.FieldSpeaker:        turns.SpeakerAssistant,
			turns.FieldAssistantReply: "Hi there!",
		},
		{
			turns.FieldTurnID:         "3",
			turns.FieldSpeaker:        "invalid_speaker",
			turns.FieldAssistantReply: "This has errors",
		},
		{
			turns.FieldTurnID:         5,
			turns.FieldSpeaker:        turns.SpeakerAssistant,
			turns.FieldAssistantReply: "Using a tool",
			turns.FieldToolUsed:       "search",
			turns.FieldToolInput:      map[string]any{"query": "test"},
		},
	}
}

// ExampleSettings is the sample settings file content.
func ExampleSettings() ([]byte, error) {
	b, err := settings.Default().Marshal()
	if err != nil {
		return nil, err
	}
	header := []byte("# turncheck validation settings\n# Missing keys fall back to defaults, unknown keys are ignored.\n")
	return append(header, b...), nil
}

// WriteOptions controls how existing files are handled.
type WriteOptions struct {
	// Force overwrites existing files without asking.
	Force   bool
	// Confirm is asked before overwriting an existing file when Force is off.
	// Without it, existing files are skipped.
	Confirm func(path string) (bool, error)
}

// Write writes the example datasets and settings into dir and returns the paths
// that were written.
func Write(dir string, opts WriteOptions) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "could not create %s", dir)
	}

	validJSON, err := encodeJSON(ValidExample())
	if err != nil {
		return nil, err
	}
	invalidJSON, err := encodeJSON(InvalidExample())
	if err != nil {
		return nil, err
	}
	settingsYAML, err := ExampleSettings()
	if err != nil {
		return nil, err
	}

	files := []struct {
		name string
		data []byte
	}{
		{ValidExampleFile, validJSON},
		{InvalidExampleFile, invalidJSON},
		{SettingsFile, settingsYAML},
	}

	written := []string{}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		ok, err := mayWrite(path, opts)
		if err != nil {
			return written, err
		}
		if !ok {
			log.Info().Str("path", path).Msg("Keeping existing file")
			continue
		}
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return written, errors.Wrapf(err, "could not write %s", path)
		}
		written = append(written, path)
	}
	return written, nil
}

func mayWrite(path string, opts WriteOptions) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return true, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "could not stat %s", path)
	}
	if opts.Force {
		return true, nil
	}
	if opts.Confirm == nil {
		return false, nil
	}
	return opts.Confirm(path)
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "could not encode example")
	}
	return buf.Bytes(), nil
}
