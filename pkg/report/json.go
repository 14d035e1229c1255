package report

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"

	"github.com/go-go-golems/turncheck/pkg/validation"
)

// Document is the data handed to JSON output and custom templates.
type Document struct {
	*validation.Result
	Summary string  `json:"summary"`
	Groups  []Group `json:"groups"`
}

func newDocument(result *validation.Result) *Document {
	return &Document{
		Result:  result,
		Summary: Summary(result),
		Groups:  GroupByKind(result),
	}
}

func RenderJSON(result *validation.Result) (string, error) {
	b, err := json.MarshalIndent(newDocument(result), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "could not encode report")
	}
	return string(b) + "\n", nil
}

// RenderTemplate renders a result with a user supplied text/template. The
// template receives a Document and has the sprig functions available.
func RenderTemplate(result *validation.Result, tmpl string) (string, error) {
	t, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return "", errors.Wrap(err, "could not parse report template")
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, newDocument(result)); err != nil {
		return "", errors.Wrap(err, "could not render report template")
	}
	return buf.String(), nil
}
