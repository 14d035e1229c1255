package a

import "github.com/go-go-golems/turncheck/pkg/turns"

func okConst(t turns.Turn, field string) {
	_ = t[turns.FieldTurnID]
	_ = t.Has(turns.FieldSpeaker)
	_, _ = t.Get(field)

	const local = "local"
	_ = t[local]

	_ = turns.Turn{turns.FieldTurnID: 1}
}

func okPlainMap(m map[string]any) {
	_ = m["turn_id"]
}

func badIndex(t turns.Turn) {
	_ = t["speeker"] // want `turn field "speeker" must be a constant, not a string literal`
}

func badAccessor(t turns.Turn) {
	_, _ = t.String("message") // want `turn field "message" must be a constant, not a string literal`
}

func badLiteral() turns.Turn {
	return turns.Turn{
		turns.FieldTurnID: 1,
		"speaker":         "user", // want `turn field "speaker" must be a constant, not a string literal`
	}
}
