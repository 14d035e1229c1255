package validation

import (
	"fmt"
	"os"

	"github.com/go-go-golems/turncheck/pkg/settings"
	"github.com/go-go-golems/turncheck/pkg/turns"
	"github.com/go-go-golems/turncheck/pkg/turns/serde"
)

// TokenCounter counts model tokens in a piece of text.
type TokenCounter interface {
	Count(text string) (int, error)
}

// Validator checks conversations against a fixed set of settings. It holds no
// per-run state and is safe for concurrent use.
type Validator struct {
	settings *settings.ValidationSettings
	tokens   TokenCounter
}

type Option func(*Validator)

// WithTokenCounter enables the reply token limit warnings.
func WithTokenCounter(c TokenCounter) Option {
	return func(v *Validator) {
		v.tokens = c
	}
}

// NewValidator creates a validator. A nil settings value selects the defaults.
func NewValidator(s *settings.ValidationSettings, options ...Option) *Validator {
	if s == nil {
		s = settings.Default()
	}
	v := &Validator{
		settings: s.Clone(),
	}
	for _, o := range options {
		o(v)
	}
	return v
}

// Settings returns a copy of the settings in use.
func (v *Validator) Settings() *settings.ValidationSettings {
	return v.settings.Clone()
}

// Validate validates a conversation with the default settings.
func Validate(input any, s *settings.ValidationSettings) *Result {
	return NewValidator(s).Validate(input)
}

// Validate runs all checks over an already decoded conversation. Every problem is
// recorded in the result; only a root that is not a sequence stops the pass early.
func (v *Validator) Validate(input any) *Result {
	r := NewResult()
	v.validateInto(r, input)
	return r
}

// ValidateDocument validates the output of the data source adapter. Decode
// problems come first as structural errors; per-turn checks run on whatever
// records could be decoded unless the whole document failed to parse.
func (v *Validator) ValidateDocument(doc *serde.Document) *Result {
	r := NewResult()
	if doc == nil {
		r.AddError(ValidationError{
			Kind:       KindStructural,
			Message:    "No document to validate",
			Suggestion: "Provide a JSON array or JSONL dataset.",
			Position:   1,
		})
		return r
	}

	for _, p := range doc.Problems {
		r.AddError(ValidationError{
			Kind:       KindStructural,
			Message:    p.Message,
			Suggestion: "Fix the JSON syntax error.",
			Position:   p.Line,
		})
	}
	if doc.Aborted() {
		return r
	}

	v.validateInto(r, doc.Root)
	return r
}

// ValidateFile loads and validates a dataset file. A file that cannot be read
// results in a single structural error.
func (v *Validator) ValidateFile(path string) *Result {
	doc, err := serde.LoadFile(path)
	if err != nil {
		r := NewResult()
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			r.AddError(ValidationError{
				Kind:       KindStructural,
				Message:    fmt.Sprintf("File not found: %s", path),
				Suggestion: "Check the file path and ensure the file exists.",
				Position:   1,
			})
			return r
		}
		r.AddError(ValidationError{
			Kind:       KindStructural,
			Message:    fmt.Sprintf("Could not read file %s: %v", path, err),
			Suggestion: "Check the file permissions and encoding.",
			Position:   1,
		})
		return r
	}
	return v.ValidateDocument(doc)
}

func (v *Validator) validateInto(r *Result, input any) {
	conv, ok := turns.AsConversation(input)
	if !ok {
		r.AddError(ValidationError{
			Kind:       KindStructural,
			Message:    fmt.Sprintf("Root data structure must be an array of turns, got %s", turns.TypeName(input)),
			Suggestion: "Wrap your data in square brackets [] to create a JSON array, or use one JSON object per line.",
			Position:   1,
		})
		return
	}

	r.TotalTurns = len(conv)
	v.checkTurnCount(r, len(conv))

	p := &pass{
		settings: v.settings,
		tokens:   v.tokens,
		result:   r,
		expected: 1,
	}
	for i, record := range conv {
		p.checkTurn(i+1, record)
	}
}

func (v *Validator) checkTurnCount(r *Result, n int) {
	s := v.settings
	switch {
	case n == 0:
		r.AddError(ValidationError{
			Kind:       KindStructural,
			Message:    "Conversation has no turns",
			Suggestion: "Add at least one turn to the conversation.",
			Position:   1,
		})
	case n < s.MinTurns:
		r.AddError(ValidationError{
			Kind:       KindStructural,
			Message:    fmt.Sprintf("Conversation has %d turn(s), at least %d required", n, s.MinTurns),
			Suggestion: fmt.Sprintf("Add turns until the conversation has at least %d.", s.MinTurns),
			Position:   1,
		})
	case s.MaxTurns > 0 && n > s.MaxTurns:
		r.AddError(ValidationError{
			Kind:       KindStructural,
			Message:    fmt.Sprintf("Conversation has %d turns, at most %d allowed", n, s.MaxTurns),
			Suggestion: fmt.Sprintf("Split the conversation into chunks of at most %d turns.", s.MaxTurns),
			Position:   s.MaxTurns + 1,
		})
	}
}
