package validation

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/turncheck/pkg/turns"
)

// checkTools validates the tool triad. Completeness is checked against the
// configured group: once any member is present, missing = group - present.
// Type checks apply to every present field independently.
func (p *pass) checkTools(tc *turnContext) {
	t := tc.turn
	hasUsed := t.Has(turns.FieldToolUsed)

	if !hasUsed && (t.Has(turns.FieldToolInput) || t.Has(turns.FieldToolOutput)) {
		p.add(tc, KindToolValidation, turns.FieldToolUsed,
			"tool_input or tool_output present but tool_used is missing",
			"Add a 'tool_used' field naming the tool that was called.")
	}

	group := p.settings.ToolFieldsRequiredTogether
	var present, missing []string
	for _, field := range group {
		if t.Has(field) {
			present = append(present, field)
		} else {
			missing = append(missing, field)
		}
	}
	if len(present) > 0 && len(missing) > 0 {
		p.add(tc, KindToolValidation, missing[0],
			fmt.Sprintf("Tool fields %s must be used together. Missing: %s",
				strings.Join(group, ", "), strings.Join(missing, ", ")),
			fmt.Sprintf("Add the missing field(s): %s", strings.Join(missing, ", ")))
	}

	if raw, ok := t.Get(turns.FieldToolUsed); ok {
		if _, isString := raw.(string); !isString {
			p.add(tc, KindInvalidFieldType, turns.FieldToolUsed,
				fmt.Sprintf("tool_used must be a string, got %s", turns.TypeName(raw)),
				"Change tool_used to the tool name as a string.")
		}
	}
	for _, field := range []string{turns.FieldToolInput, turns.FieldToolOutput} {
		raw, ok := t.Get(field)
		if !ok {
			continue
		}
		if _, isMap := turns.MapValue(raw); !isMap {
			p.add(tc, KindInvalidFieldType, field,
				fmt.Sprintf("%s must be an object, got %s", field, turns.TypeName(raw)),
				fmt.Sprintf("Change %s to a JSON object.", field))
		}
	}
}
