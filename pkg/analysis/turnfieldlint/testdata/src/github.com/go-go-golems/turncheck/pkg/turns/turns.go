package turns

// Minimal stand-in for the real package so the analyzer tests do not depend on it.

type Turn map[string]any

const (
	FieldTurnID  = "turn_id"
	FieldSpeaker = "speaker"
)

func (t Turn) Has(field string) bool {
	_, ok := t[field]
	return ok
}

func (t Turn) Get(field string) (any, bool) {
	v, ok := t[field]
	return v, ok
}

func (t Turn) String(field string) (string, bool) {
	s, ok := t[field].(string)
	return s, ok
}
