package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-go-golems/turncheck/pkg/turns"
)

// checkContent enforces the length bounds of the free-text fields. Lengths are
// counted in code points. A bound of zero is disabled.
func (p *pass) checkContent(tc *turnContext) {
	s := p.settings
	for _, field := range turns.ContentFields() {
		raw, ok := tc.turn.Get(field)
		if !ok {
			continue
		}
		text, isString := raw.(string)
		if !isString {
			// assistant_reply types are reported by the role check
			if field == turns.FieldMessage {
				p.add(tc, KindInvalidFieldType, field,
					fmt.Sprintf("message must be a string, got %s", turns.TypeName(raw)),
					"Change message to a string value.")
			}
			continue
		}

		n := utf8.RuneCountInString(text)
		switch {
		case s.MinMessageLength > 0 && n < s.MinMessageLength:
			p.add(tc, KindContent, field,
				fmt.Sprintf("%s is too short: %d character(s), minimum is %d", field, n, s.MinMessageLength),
				fmt.Sprintf("Provide at least %d character(s) in %s.", s.MinMessageLength, field))
		case s.MaxMessageLength > 0 && n > s.MaxMessageLength:
			p.add(tc, KindContent, field,
				fmt.Sprintf("%s is too long: %d characters, maximum is %d", field, n, s.MaxMessageLength),
				fmt.Sprintf("Shorten %s to at most %d characters.", field, s.MaxMessageLength))
		}

		if field == turns.FieldAssistantReply {
			p.checkReplyTokens(tc, text)
		}
	}
}

// checkConfidence requires confidence_score, when present, to be a number in [0, 1].
func (p *pass) checkConfidence(tc *turnContext) {
	raw, ok := tc.turn.Get(turns.FieldConfidenceScore)
	if !ok {
		return
	}
	f, isNumber := turns.FloatValue(raw)
	if !isNumber {
		p.add(tc, KindInvalidFieldValue, turns.FieldConfidenceScore,
			fmt.Sprintf("confidence_score must be a number, got %s", turns.TypeName(raw)),
			"Use a number between 0.0 and 1.0.")
		return
	}
	if !(f >= 0 && f <= 1) {
		p.add(tc, KindInvalidFieldValue, turns.FieldConfidenceScore,
			fmt.Sprintf("confidence_score %v is outside [0.0, 1.0]", f),
			"Use a number between 0.0 and 1.0.")
	}
}

func (p *pass) checkReplyTokens(tc *turnContext, text string) {
	if p.tokens == nil || p.settings.MaxReplyTokens <= 0 {
		return
	}
	n, err := p.tokens.Count(text)
	if err != nil {
		p.result.AddWarning("Turn %d: could not count tokens: %v", tc.position, err)
		return
	}
	if n > p.settings.MaxReplyTokens {
		p.result.AddWarning("Turn %d: assistant_reply has %d tokens, soft limit is %d",
			tc.position, n, p.settings.MaxReplyTokens)
	}
}
