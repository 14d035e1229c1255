package turns

import (
	"github.com/invopop/jsonschema"
)

// Record documents the shape of a well-formed turn. It only exists to derive the
// published JSON schema; validation works on Turn maps.
type Record struct {
	TurnID          int            `json:"turn_id" jsonschema:"required,minimum=1,description=Sequential id starting at 1"`
	Speaker         string         `json:"speaker" jsonschema:"required"`
	Message         string         `json:"message,omitempty" jsonschema:"description=Text of non-reply turns"`
	AssistantReply  string         `json:"assistant_reply,omitempty" jsonschema:"description=Text of reply turns"`
	ToolUsed        string         `json:"tool_used,omitempty"`
	ToolInput       map[string]any `json:"tool_input,omitempty"`
	ToolOutput      map[string]any `json:"tool_output,omitempty"`
	ConfidenceScore *float64       `json:"confidence_score,omitempty" jsonschema:"minimum=0,maximum=1"`
}

// Schema returns the JSON schema of a conversation: an array of turn records.
// When speakers is not empty, the speaker property is restricted to it.
func Schema(speakers []string) *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	item := reflector.Reflect(&Record{})
	item.Version = ""
	if len(speakers) > 0 {
		if speaker, ok := item.Properties.Get(FieldSpeaker); ok {
			speaker.Enum = make([]interface{}, 0, len(speakers))
			for _, s := range speakers {
				speaker.Enum = append(speaker.Enum, s)
			}
		}
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Conversation",
		Description: "Ordered turns of a multi-turn conversation",
		Type:        "array",
		Items:       item,
	}
}
