package validation

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/turncheck/pkg/settings"
	"github.com/go-go-golems/turncheck/pkg/turns"
)

// pass is the state of a single forward walk over a conversation. expected is the
// turn_id the next integer id should carry.
type pass struct {
	settings *settings.ValidationSettings
	tokens   TokenCounter
	result   *Result
	expected int
}

// turnContext identifies the turn being checked.
type turnContext struct {
	position int
	turn     turns.Turn
	turnID   *int
}

func (p *pass) add(tc *turnContext, kind ErrorKind, field, message, suggestion string) {
	p.result.AddError(ValidationError{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
		TurnID:     tc.turnID,
		Field:      field,
		Position:   tc.position,
	})
}

func (p *pass) checkTurn(position int, record any) {
	turn, ok := turns.AsTurn(record)
	if !ok {
		p.result.AddError(ValidationError{
			Kind:       KindInvalidFieldType,
			Message:    fmt.Sprintf("Turn %d must be an object, got %s", position, turns.TypeName(record)),
			Suggestion: "Ensure each conversation turn is a JSON object with key-value pairs.",
			Position:   position,
		})
		return
	}

	tc := &turnContext{position: position, turn: turn}
	p.checkTurnID(tc)
	p.checkGlobalRequired(tc)
	if speaker, ok := p.checkSpeaker(tc); ok {
		p.checkRole(tc, speaker)
	}
	p.checkTools(tc)
	p.checkContent(tc)
	p.checkConfidence(tc)
	p.warnUnknownFields(tc)
}

func (p *pass) requires(field string) bool {
	for _, f := range p.settings.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

// checkGlobalRequired covers required fields other than turn_id and speaker,
// which have dedicated checks.
func (p *pass) checkGlobalRequired(tc *turnContext) {
	for _, field := range p.settings.RequiredFields {
		if field == turns.FieldTurnID || field == turns.FieldSpeaker {
			continue
		}
		if !tc.turn.Has(field) {
			p.add(tc, KindRequiredFieldMissing, field,
				fmt.Sprintf("Missing required field: %s", field),
				fmt.Sprintf("Add a '%s' field.", field))
		}
	}
}

func (p *pass) warnUnknownFields(tc *turnContext) {
	if !p.settings.WarnUnknownFields {
		return
	}
	known := p.settings.KnownFields()
	var unknown []string
	for _, k := range tc.turn.Keys() {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		p.result.AddWarning("Turn %d has unknown field(s): %s", tc.position, strings.Join(unknown, ", "))
	}
}
