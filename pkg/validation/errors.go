package validation

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrorKind categorizes a validation failure. The set is closed.
type ErrorKind string

const (
	KindStructural           ErrorKind = "structural_error"       // root not a sequence, turn count, unreadable or unparseable input
	KindRequiredFieldMissing ErrorKind = "required_field_missing" // required field absent
	KindInvalidFieldType     ErrorKind = "invalid_field_type"     // field present with the wrong type
	KindInvalidFieldValue    ErrorKind = "invalid_field_value"    // disallowed speaker, score out of range, role conflict
	KindSequence             ErrorKind = "sequence_error"         // turn_id ordering
	KindToolValidation       ErrorKind = "tool_validation_error"  // incomplete tool triad
	KindContent              ErrorKind = "content_error"          // length bounds
)

// AllKinds returns every error kind in declaration order.
func AllKinds() []ErrorKind {
	return []ErrorKind{
		KindStructural,
		KindRequiredFieldMissing,
		KindInvalidFieldType,
		KindInvalidFieldValue,
		KindSequence,
		KindToolValidation,
		KindContent,
	}
}

var titleCaser = cases.Title(language.English)

// Title returns the human readable heading of the kind, e.g. "Sequence Error".
func (k ErrorKind) Title() string {
	return titleCaser.String(strcase.ToDelimited(string(k), ' '))
}

func (k ErrorKind) Valid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind parses the snake case identifier of a kind.
func ParseKind(s string) (ErrorKind, error) {
	k := ErrorKind(strings.TrimSpace(s))
	if !k.Valid() {
		return "", errors.Errorf("unknown error kind %q", s)
	}
	return k, nil
}

// ParseKindTitle is the inverse of ErrorKind.Title.
func ParseKindTitle(title string) (ErrorKind, error) {
	return ParseKind(strcase.ToSnake(strings.TrimSpace(title)))
}

// ValidationError is a single diagnostic. Position is the 1-based position of the
// offending turn in the input (or the source line for parse failures). TurnID is
// set when the turn carried an integer turn_id, Field when a specific field is at
// fault.
type ValidationError struct {
	Kind       ErrorKind `json:"kind" yaml:"kind"`
	Message    string    `json:"message" yaml:"message"`
	Suggestion string    `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	TurnID     *int      `json:"turn_id" yaml:"turn_id"`
	Field      string    `json:"field,omitempty" yaml:"field,omitempty"`
	Position   int       `json:"position" yaml:"position"`
}

func (e ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] position %d", e.Kind, e.Position))
	if e.TurnID != nil {
		sb.WriteString(fmt.Sprintf(" (turn %d)", *e.TurnID))
	}
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(" %s", e.Field))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// Result is the outcome of one validation run.
type Result struct {
	IsValid    bool              `json:"is_valid" yaml:"is_valid"`
	TotalTurns int               `json:"total_turns" yaml:"total_turns"`
	Errors     []ValidationError `json:"errors" yaml:"errors"`
	Warnings   []string          `json:"warnings" yaml:"warnings"`
}

// NewResult returns an empty, valid result.
func NewResult() *Result {
	return &Result{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}
}

// AddError records an error; the result is invalid from then on.
func (r *Result) AddError(e ValidationError) {
	r.Errors = append(r.Errors, e)
	r.IsValid = false
}

// AddWarning records a warning. Warnings never affect validity.
func (r *Result) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// ByKind returns all errors of the given kind, in encounter order.
func (r *Result) ByKind(kind ErrorKind) []ValidationError {
	var ret []ValidationError
	for _, e := range r.Errors {
		if e.Kind == kind {
			ret = append(ret, e)
		}
	}
	return ret
}

// Kinds returns the distinct kinds present, in order of first occurrence.
func (r *Result) Kinds() []ErrorKind {
	seen := map[ErrorKind]bool{}
	ret := []ErrorKind{}
	for _, e := range r.Errors {
		if seen[e.Kind] {
			continue
		}
		seen[e.Kind] = true
		ret = append(ret, e.Kind)
	}
	return ret
}

func (r *Result) CountByKind() map[ErrorKind]int {
	ret := map[ErrorKind]int{}
	for _, e := range r.Errors {
		ret[e.Kind]++
	}
	return ret
}

// Err returns nil for a valid result and a *FailedError otherwise.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &FailedError{Result: r}
}

// FailedError wraps an invalid result so it can travel as an error.
type FailedError struct {
	Result *Result
}

func (e *FailedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d validation error(s)", len(e.Result.Errors)))
	for _, ve := range e.Result.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(ve.Error())
	}
	return sb.String()
}
