package turns

// Canonical field names of a turn record.
const (
	FieldTurnID          = "turn_id"
	FieldSpeaker         = "speaker"
	FieldMessage         = "message"
	FieldAssistantReply  = "assistant_reply"
	FieldToolUsed        = "tool_used"
	FieldToolInput       = "tool_input"
	FieldToolOutput      = "tool_output"
	FieldConfidenceScore = "confidence_score"
)

// Default speaker values
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// ToolFields returns the tool triad in canonical order.
func ToolFields() []string {
	return []string{FieldToolUsed, FieldToolInput, FieldToolOutput}
}

// ContentFields are the free-text fields subject to length bounds.
func ContentFields() []string {
	return []string{FieldMessage, FieldAssistantReply}
}

// CanonicalFields lists every field a turn record may carry.
func CanonicalFields() []string {
	return []string{
		FieldTurnID,
		FieldSpeaker,
		FieldMessage,
		FieldAssistantReply,
		FieldToolUsed,
		FieldToolInput,
		FieldToolOutput,
		FieldConfidenceScore,
	}
}
