package settings

import (
	"github.com/huandu/go-clone"

	"github.com/go-go-golems/turncheck/pkg/turns"
)

const (
	DefaultMinTurns         = 1
	DefaultMaxTurns         = 100
	DefaultMinMessageLength = 1
	DefaultMaxMessageLength = 5000
	DefaultTokenEncoding    = "cl100k_base"
)

// ValidationSettings holds the parameters of a validation run.
//
// Settings are read-only once constructed. Validators take a private clone, so a
// single value can be shared between concurrent validations. Bounds of zero disable
// the corresponding check; an empty conversation is rejected regardless of MinTurns.
// Consistency between bounds, such as MinTurns <= MaxTurns, is not checked.
type ValidationSettings struct {
	MinTurns         int `yaml:"min_turns" json:"min_turns"`
	MaxTurns         int `yaml:"max_turns" json:"max_turns"`
	MinMessageLength int `yaml:"min_message_length" json:"min_message_length"`
	MaxMessageLength int `yaml:"max_message_length" json:"max_message_length"`

	// RequiredFields must be present on every turn.
	RequiredFields []string `yaml:"required_fields" json:"required_fields"`
	// RoleRequiredFields lists additional required fields per speaker value.
	RoleRequiredFields map[string][]string `yaml:"role_required_fields" json:"role_required_fields"`
	AllowedSpeakers    []string            `yaml:"allowed_speakers" json:"allowed_speakers"`
	// ReplySpeaker is the speaker whose turns carry assistant_reply. Every other
	// speaker is forbidden from carrying it.
	ReplySpeaker   string   `yaml:"reply_speaker" json:"reply_speaker"`
	OptionalFields []string `yaml:"optional_fields" json:"optional_fields"`
	// ToolFieldsRequiredTogether is the tool completeness group.
	ToolFieldsRequiredTogether []string `yaml:"tool_keys_required_together" json:"tool_keys_required_together"`

	WarnUnknownFields bool   `yaml:"warn_unknown_fields" json:"warn_unknown_fields"`
	MaxReplyTokens    int    `yaml:"max_reply_tokens" json:"max_reply_tokens"`
	TokenEncoding     string `yaml:"token_encoding" json:"token_encoding"`
}

// Option tweaks settings at construction time.
type Option func(*ValidationSettings)

func WithMinTurns(n int) Option {
	return func(s *ValidationSettings) { s.MinTurns = n }
}

func WithMaxTurns(n int) Option {
	return func(s *ValidationSettings) { s.MaxTurns = n }
}

func WithMessageLength(min, max int) Option {
	return func(s *ValidationSettings) {
		s.MinMessageLength = min
		s.MaxMessageLength = max
	}
}

func WithRequiredFields(fields ...string) Option {
	return func(s *ValidationSettings) { s.RequiredFields = append([]string{}, fields...) }
}

// WithRoleRequiredFields replaces the required fields of a single speaker.
func WithRoleRequiredFields(speaker string, fields ...string) Option {
	return func(s *ValidationSettings) {
		if s.RoleRequiredFields == nil {
			s.RoleRequiredFields = map[string][]string{}
		}
		s.RoleRequiredFields[speaker] = append([]string{}, fields...)
	}
}

func WithAllowedSpeakers(speakers ...string) Option {
	return func(s *ValidationSettings) { s.AllowedSpeakers = append([]string{}, speakers...) }
}

func WithReplySpeaker(speaker string) Option {
	return func(s *ValidationSettings) { s.ReplySpeaker = speaker }
}

func WithOptionalFields(fields ...string) Option {
	return func(s *ValidationSettings) { s.OptionalFields = append([]string{}, fields...) }
}

func WithToolFieldsRequiredTogether(fields ...string) Option {
	return func(s *ValidationSettings) { s.ToolFieldsRequiredTogether = append([]string{}, fields...) }
}

func WithWarnUnknownFields(warn bool) Option {
	return func(s *ValidationSettings) { s.WarnUnknownFields = warn }
}

func WithMaxReplyTokens(n int, encoding string) Option {
	return func(s *ValidationSettings) {
		s.MaxReplyTokens = n
		if encoding != "" {
			s.TokenEncoding = encoding
		}
	}
}

// Default returns the default settings.
func Default() *ValidationSettings {
	return &ValidationSettings{
		MinTurns:         DefaultMinTurns,
		MaxTurns:         DefaultMaxTurns,
		MinMessageLength: DefaultMinMessageLength,
		MaxMessageLength: DefaultMaxMessageLength,
		RequiredFields:   []string{turns.FieldTurnID, turns.FieldSpeaker},
		RoleRequiredFields: map[string][]string{
			turns.SpeakerUser:      {turns.FieldMessage},
			turns.SpeakerAssistant: {turns.FieldAssistantReply},
		},
		AllowedSpeakers: []string{turns.SpeakerUser, turns.SpeakerAssistant},
		ReplySpeaker:    turns.SpeakerAssistant,
		OptionalFields: []string{
			turns.FieldMessage,
			turns.FieldToolUsed,
			turns.FieldToolInput,
			turns.FieldToolOutput,
			turns.FieldConfidenceScore,
		},
		ToolFieldsRequiredTogether: turns.ToolFields(),
		TokenEncoding:              DefaultTokenEncoding,
	}
}

// NewValidationSettings returns the defaults with the given options applied.
func NewValidationSettings(options ...Option) *ValidationSettings {
	s := Default()
	for _, o := range options {
		o(s)
	}
	return s
}

// With returns a modified copy, leaving s untouched.
func (s *ValidationSettings) With(options ...Option) *ValidationSettings {
	ret := s.Clone()
	for _, o := range options {
		o(ret)
	}
	return ret
}

func (s *ValidationSettings) Clone() *ValidationSettings {
	return clone.Clone(s).(*ValidationSettings)
}

// RequiredFor returns the global and speaker specific required fields, without
// duplicates, in declaration order.
func (s *ValidationSettings) RequiredFor(speaker string) []string {
	seen := map[string]bool{}
	ret := []string{}
	for _, f := range append(append([]string{}, s.RequiredFields...), s.RoleRequiredFields[speaker]...) {
		if seen[f] {
			continue
		}
		seen[f] = true
		ret = append(ret, f)
	}
	return ret
}

func (s *ValidationSettings) IsAllowedSpeaker(speaker string) bool {
	for _, a := range s.AllowedSpeakers {
		if a == speaker {
			return true
		}
	}
	return false
}

func (s *ValidationSettings) IsReplySpeaker(speaker string) bool {
	return s.ReplySpeaker != "" && speaker == s.ReplySpeaker
}

// KnownFields is the set of field names that never trigger unknown-field warnings.
func (s *ValidationSettings) KnownFields() map[string]bool {
	ret := map[string]bool{}
	add := func(fields []string) {
		for _, f := range fields {
			ret[f] = true
		}
	}
	add(turns.CanonicalFields())
	add(s.RequiredFields)
	add(s.OptionalFields)
	add(s.ToolFieldsRequiredTogether)
	for _, fields := range s.RoleRequiredFields {
		add(fields)
	}
	return ret
}
