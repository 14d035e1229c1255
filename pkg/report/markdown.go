package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/go-go-golems/turncheck/pkg/validation"
)

// RenderMarkdown renders errors grouped by kind. Each group is a level 2 heading
// carrying the kind title; no other level 2 headings are emitted, so
// ParseMarkdownKinds recovers exactly the kinds present.
func RenderMarkdown(result *validation.Result) string {
	var sb strings.Builder
	sb.WriteString("# Validation Report\n\n")

	if !result.HasErrors() {
		sb.WriteString(fmt.Sprintf("✅ **%s** %d turn(s) checked.\n", Summary(result), result.TotalTurns))
	} else {
		sb.WriteString(fmt.Sprintf("❌ **%s**\n\n", Summary(result)))

		for _, g := range GroupByKind(result) {
			sb.WriteString(fmt.Sprintf("## %s\n\n", g.Title))
			for _, e := range g.Errors {
				sb.WriteString(fmt.Sprintf("- **Position %d** (%s)", e.Position, turnLabel(e)))
				if e.Field != "" {
					sb.WriteString(fmt.Sprintf(", field `%s`", e.Field))
				}
				sb.WriteString("\n")
				sb.WriteString(fmt.Sprintf("  - Error: %s\n", escapeInline(e.Message)))
				if e.Suggestion != "" {
					sb.WriteString(fmt.Sprintf("  - 💡 Suggestion: %s\n", escapeInline(e.Suggestion)))
				}
			}
			sb.WriteString("\n")
		}
	}

	if len(result.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\n**Warnings (%d)**\n\n", len(result.Warnings)))
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", escapeInline(w)))
		}
	}

	return sb.String()
}

// escapeInline keeps messages on one line so they cannot open new blocks.
func escapeInline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseMarkdownKinds returns the error kinds named by the level 2 headings of a
// markdown report, in document order.
func ParseMarkdownKinds(markdown string) ([]validation.ErrorKind, error) {
	source := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	ret := []validation.ErrorKind{}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 2 {
			return ast.WalkContinue, nil
		}
		title := string(h.Text(source))
		kind, err := validation.ParseKindTitle(title)
		if err != nil {
			return ast.WalkStop, errors.Wrapf(err, "unexpected heading %q", title)
		}
		ret = append(ret, kind)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Style renders markdown for a terminal. "none" returns the input unchanged,
// "auto" picks a style based on the terminal background.
func Style(markdown string, style string) (string, error) {
	switch style {
	case "", "none":
		return markdown, nil
	case "auto":
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return "", errors.Wrap(err, "could not create markdown renderer")
		}
		return r.Render(markdown)
	}
	styled, err := glamour.Render(markdown, style)
	if err != nil {
		return "", errors.Wrapf(err, "could not render markdown with style %s", style)
	}
	return styled, nil
}
