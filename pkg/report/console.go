package report

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/turncheck/pkg/validation"
)

const ruleWidth = 60

// RenderConsole renders a flat listing of errors in encounter order.
func RenderConsole(result *validation.Result) string {
	var sb strings.Builder

	if !result.HasErrors() {
		sb.WriteString(fmt.Sprintf("✅ %s (%d turn(s) checked)\n", Summary(result), result.TotalTurns))
	} else {
		sb.WriteString(fmt.Sprintf("❌ %s:\n", Summary(result)))
		sb.WriteString(strings.Repeat("=", ruleWidth))
		sb.WriteString("\n\n")

		for _, e := range result.Errors {
			sb.WriteString(fmt.Sprintf("🔴 Position %d (%s)\n", e.Position, turnLabel(e)))
			sb.WriteString(fmt.Sprintf("   Error: %s\n", e.Message))
			sb.WriteString(fmt.Sprintf("   Type: %s\n", e.Kind))
			if e.Field != "" {
				sb.WriteString(fmt.Sprintf("   Field: %s\n", e.Field))
			}
			if e.Suggestion != "" {
				sb.WriteString(fmt.Sprintf("   💡 Suggestion: %s\n", e.Suggestion))
			}
			sb.WriteString("\n")
		}
	}

	if len(result.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("⚠️  %d warning(s):\n", len(result.Warnings)))
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("   - %s\n", w))
		}
	}

	return sb.String()
}
