package report

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-go-golems/turncheck/pkg/validation"
)

// Format selects a report renderer.
type Format string

const (
	FormatConsole  Format = "console"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatTemplate Format = "template"
)

// Formats lists the formats that Render handles without extra input.
func Formats() []Format {
	return []Format{FormatConsole, FormatMarkdown, FormatJSON}
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "", "text", "plain":
		return FormatConsole, nil
	case "md":
		return FormatMarkdown, nil
	case FormatConsole, FormatMarkdown, FormatJSON, FormatTemplate:
		return f, nil
	}
	return "", errors.Errorf("invalid format %q (expected console, markdown, json or template)", s)
}

// Render renders a result. Rendering never re-runs validation.
func Render(result *validation.Result, format Format) (string, error) {
	if result == nil {
		return "", errors.New("no result to render")
	}
	switch format {
	case FormatConsole:
		return RenderConsole(result), nil
	case FormatMarkdown:
		return RenderMarkdown(result), nil
	case FormatJSON:
		return RenderJSON(result)
	case FormatTemplate:
		return "", errors.New("template format needs a template, use RenderTemplate")
	}
	return "", errors.Errorf("unknown format %q", format)
}

// Summary is the one-line verdict shared by all renderers.
func Summary(result *validation.Result) string {
	if !result.HasErrors() {
		return "All checks passed! Dataset is properly formatted."
	}
	return fmt.Sprintf("Found %d validation error(s) in %d turn(s)", len(result.Errors), result.TotalTurns)
}

// Group holds the errors of one kind.
type Group struct {
	Kind   validation.ErrorKind         `json:"kind"`
	Title  string                       `json:"title"`
	Errors []validation.ValidationError `json:"errors"`
}

// GroupByKind groups errors by kind, ordered by first occurrence.
func GroupByKind(result *validation.Result) []Group {
	ret := []Group{}
	for _, k := range result.Kinds() {
		ret = append(ret, Group{
			Kind:   k,
			Title:  k.Title(),
			Errors: result.ByKind(k),
		})
	}
	return ret
}

func turnLabel(e validation.ValidationError) string {
	if e.TurnID == nil {
		return "unknown turn"
	}
	return fmt.Sprintf("turn %d", *e.TurnID)
}
