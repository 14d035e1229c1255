package settings

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/turncheck/pkg/turns"
)

// document is the on-disk shape of a settings file. Pointers distinguish absent
// keys from zero values so that missing keys keep their defaults. The legacy keys
// of older config files are accepted next to the current ones.
type document struct {
	MinTurns         *int `yaml:"min_turns" json:"min_turns,omitempty"`
	MaxTurns         *int `yaml:"max_turns" json:"max_turns,omitempty"`
	MinMessageLength *int `yaml:"min_message_length" json:"min_message_length,omitempty"`
	MaxMessageLength *int `yaml:"max_message_length" json:"max_message_length,omitempty"`

	RequiredFields             *[]string            `yaml:"required_fields" json:"required_fields,omitempty"`
	RoleRequiredFields         *map[string][]string `yaml:"role_required_fields" json:"role_required_fields,omitempty"`
	AllowedSpeakers            *[]string            `yaml:"allowed_speakers" json:"allowed_speakers,omitempty"`
	ReplySpeaker               *string              `yaml:"reply_speaker" json:"reply_speaker,omitempty"`
	OptionalFields             *[]string            `yaml:"optional_fields" json:"optional_fields,omitempty"`
	ToolFieldsRequiredTogether *[]string            `yaml:"tool_keys_required_together" json:"tool_keys_required_together,omitempty"`

	WarnUnknownFields *bool   `yaml:"warn_unknown_fields" json:"warn_unknown_fields,omitempty"`
	MaxReplyTokens    *int    `yaml:"max_reply_tokens" json:"max_reply_tokens,omitempty"`
	TokenEncoding     *string `yaml:"token_encoding" json:"token_encoding,omitempty"`

	ValidSpeakers         *[]string `yaml:"valid_speakers" json:"valid_speakers,omitempty"`
	OptionalKeys          *[]string `yaml:"optional_keys" json:"optional_keys,omitempty"`
	RequiredKeysUser      *[]string `yaml:"required_keys_user" json:"required_keys_user,omitempty"`
	RequiredKeysAssistant *[]string `yaml:"required_keys_assistant" json:"required_keys_assistant,omitempty"`
}

// Load reads settings from a YAML file.
func Load(path string) (*ValidationSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read settings %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid settings %s", path)
	}
	return s, nil
}

// Parse decodes a YAML settings document on top of the defaults. Unknown keys are
// ignored; keys of the wrong type are rejected.
func Parse(data []byte) (*ValidationSettings, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "could not parse settings YAML")
	}
	if raw == nil {
		return Default(), nil
	}
	if err := checkDocument(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "could not decode settings")
	}
	return doc.apply(Default()), nil
}

func (d *document) apply(s *ValidationSettings) *ValidationSettings {
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setList := func(dst *[]string, v *[]string) {
		if v != nil {
			*dst = append([]string{}, (*v)...)
		}
	}

	setInt(&s.MinTurns, d.MinTurns)
	setInt(&s.MaxTurns, d.MaxTurns)
	setInt(&s.MinMessageLength, d.MinMessageLength)
	setInt(&s.MaxMessageLength, d.MaxMessageLength)
	setInt(&s.MaxReplyTokens, d.MaxReplyTokens)

	setList(&s.RequiredFields, d.RequiredFields)
	setList(&s.AllowedSpeakers, d.ValidSpeakers)
	setList(&s.AllowedSpeakers, d.AllowedSpeakers)
	setList(&s.OptionalFields, d.OptionalKeys)
	setList(&s.OptionalFields, d.OptionalFields)
	setList(&s.ToolFieldsRequiredTogether, d.ToolFieldsRequiredTogether)

	if d.ReplySpeaker != nil {
		s.ReplySpeaker = *d.ReplySpeaker
	}
	if d.WarnUnknownFields != nil {
		s.WarnUnknownFields = *d.WarnUnknownFields
	}
	if d.TokenEncoding != nil {
		s.TokenEncoding = *d.TokenEncoding
	}

	if d.RequiredKeysUser != nil {
		s.RoleRequiredFields[turns.SpeakerUser] = withoutGlobal(*d.RequiredKeysUser)
	}
	if d.RequiredKeysAssistant != nil {
		s.RoleRequiredFields[turns.SpeakerAssistant] = withoutGlobal(*d.RequiredKeysAssistant)
	}
	if d.RoleRequiredFields != nil {
		s.RoleRequiredFields = map[string][]string{}
		for speaker, fields := range *d.RoleRequiredFields {
			s.RoleRequiredFields[speaker] = append([]string{}, fields...)
		}
	}

	return s
}

// withoutGlobal drops turn_id and speaker from legacy per-role lists; both are
// always checked on their own.
func withoutGlobal(fields []string) []string {
	ret := []string{}
	for _, f := range fields {
		if f == turns.FieldTurnID || f == turns.FieldSpeaker {
			continue
		}
		ret = append(ret, f)
	}
	return ret
}

// Marshal encodes the settings as YAML, in the same shape Parse reads.
func (s *ValidationSettings) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode settings")
	}
	return b, nil
}
