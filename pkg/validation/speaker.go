package validation

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/turncheck/pkg/turns"
)

// checkSpeaker returns the speaker when it is usable for role checks.
func (p *pass) checkSpeaker(tc *turnContext) (string, bool) {
	raw, ok := tc.turn.Get(turns.FieldSpeaker)
	if !ok {
		if p.requires(turns.FieldSpeaker) {
			p.add(tc, KindRequiredFieldMissing, turns.FieldSpeaker,
				"Missing required field: speaker",
				fmt.Sprintf("Add a 'speaker' field with one of: %s.", strings.Join(p.settings.AllowedSpeakers, ", ")))
		}
		return "", false
	}

	speaker, ok := raw.(string)
	if !ok {
		p.add(tc, KindInvalidFieldType, turns.FieldSpeaker,
			fmt.Sprintf("speaker must be a string, got %s", turns.TypeName(raw)),
			"Change speaker to a string value.")
		return "", false
	}

	if !p.settings.IsAllowedSpeaker(speaker) {
		p.add(tc, KindInvalidFieldValue, turns.FieldSpeaker,
			fmt.Sprintf("Invalid speaker value '%s'. Must be one of [%s]", speaker, strings.Join(p.settings.AllowedSpeakers, ", ")),
			suggestValue(speaker, p.settings.AllowedSpeakers))
		return "", false
	}

	return speaker, true
}

// checkRole applies the speaker specific field rules.
func (p *pass) checkRole(tc *turnContext, speaker string) {
	isReply := p.settings.IsReplySpeaker(speaker)

	// Globally required fields are reported by checkGlobalRequired.
	required := p.settings.RequiredFor(speaker)
	if isReply {
		required = append([]string{turns.FieldAssistantReply}, required...)
	}
	seen := map[string]bool{}
	for _, field := range required {
		if seen[field] || p.requires(field) || field == turns.FieldTurnID || field == turns.FieldSpeaker {
			continue
		}
		seen[field] = true
		if !tc.turn.Has(field) {
			p.add(tc, KindRequiredFieldMissing, field,
				fmt.Sprintf("Turns by '%s' must include '%s' field", speaker, field),
				fmt.Sprintf("Add a '%s' field to %s turns.", field, speaker))
		}
	}

	raw, hasReply := tc.turn.Get(turns.FieldAssistantReply)
	switch {
	case isReply && hasReply:
		if _, ok := raw.(string); !ok {
			p.add(tc, KindInvalidFieldType, turns.FieldAssistantReply,
				fmt.Sprintf("assistant_reply must be a string, got %s", turns.TypeName(raw)),
				"Change assistant_reply to a string value.")
		}
	case !isReply && hasReply && p.settings.ReplySpeaker != "":
		p.add(tc, KindInvalidFieldValue, turns.FieldAssistantReply,
			fmt.Sprintf("Turns by '%s' must not include 'assistant_reply' field", speaker),
			fmt.Sprintf("Remove the 'assistant_reply' field, or set speaker to '%s'.", p.settings.ReplySpeaker))
	}
}
