package validation

import (
	"fmt"

	"github.com/go-go-golems/turncheck/pkg/turns"
)

// checkTurnID validates presence, type and ordering of turn_id.
//
// After any integer id the expectation moves to id+1, whether or not the id
// matched. A single gap or duplicate therefore produces one sequence error and
// the following turns are judged against the id just seen. A non-integer id does
// not move the expectation.
func (p *pass) checkTurnID(tc *turnContext) {
	raw, ok := tc.turn.Get(turns.FieldTurnID)
	if !ok {
		if p.requires(turns.FieldTurnID) {
			p.add(tc, KindRequiredFieldMissing, turns.FieldTurnID,
				"Missing required field: turn_id",
				"Add a 'turn_id' field with an integer value.")
		}
		return
	}

	id, ok := turns.IntValue(raw)
	if !ok {
		p.add(tc, KindInvalidFieldType, turns.FieldTurnID,
			fmt.Sprintf("turn_id must be an integer, got %s", turns.TypeName(raw)),
			"Change turn_id to an integer value.")
		return
	}

	tc.turnID = &id
	if id != p.expected {
		p.add(tc, KindSequence, turns.FieldTurnID,
			fmt.Sprintf("Expected turn_id %d, got %d", p.expected, id),
			fmt.Sprintf("Update turn_id to %d to maintain sequence.", p.expected))
	}
	p.expected = id + 1
}
