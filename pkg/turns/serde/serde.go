package serde

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/turncheck/pkg/turns"
)

// Format identifies how a dataset document was decoded.
type Format string

const (
	FormatJSONArray Format = "json_array"
	FormatJSON      Format = "json"
	FormatJSONL     Format = "jsonl"
	FormatYAML      Format = "yaml"
)

const maxLineSize = 10 * 1024 * 1024

// Problem is a decode failure tied to a 1-based line of the source document.
type Problem struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Document is the result of decoding a dataset.
//
// Root is the decoded top-level value handed to the validator. In array and YAML
// mode it is whatever the document contained; in line-delimited mode it is the
// ordered sequence of lines that decoded successfully. Root is nil when the whole
// document failed to parse.
type Document struct {
	Path     string    `json:"path,omitempty"`
	Format   Format    `json:"format"`
	Root     any       `json:"-"`
	Problems []Problem `json:"problems,omitempty"`
}

// Aborted reports whether decoding failed before any records could be produced.
func (d *Document) Aborted() bool {
	return d.Root == nil && len(d.Problems) > 0
}

// LoadFile reads and decodes a dataset file. Only I/O failures are returned as
// errors; malformed content is described by Document.Problems.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read dataset %s", path)
	}

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc = DecodeYAML(data)
	default:
		doc = Decode(data)
	}
	doc.Path = path
	return doc, nil
}

// Decode parses a JSON array or JSONL dataset.
//
// Content whose first non-blank character is '[' is parsed as a single array and
// any syntax error aborts the load. Otherwise, content spanning several lines that
// holds exactly one JSON value is kept as that value, so a pretty-printed object is
// reported as a non-sequence root. Everything else is line-delimited: each non-blank
// line is decoded on its own and bad lines are skipped.
func Decode(data []byte) *Document {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimSpace(data)

	if bytes.HasPrefix(trimmed, []byte("[")) {
		v, err := decodeSingle(data)
		if err != nil {
			return &Document{
				Format:   FormatJSONArray,
				Problems: []Problem{{Line: lineOf(data, err), Message: fmt.Sprintf("invalid JSON: %v", err)}},
			}
		}
		return &Document{Format: FormatJSONArray, Root: v}
	}

	if bytes.Count(trimmed, []byte("\n")) > 0 {
		if v, err := decodeSingle(data); err == nil {
			return &Document{Format: FormatJSON, Root: v}
		}
	}

	return decodeLines(data)
}

func decodeLines(data []byte) *Document {
	doc := &Document{Format: FormatJSONL}
	records := turns.Conversation{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := decodeSingle([]byte(line))
		if err != nil {
			log.Debug().Int("line", lineNo).Err(err).Msg("skipping malformed JSONL line")
			doc.Problems = append(doc.Problems, Problem{
				Line:    lineNo,
				Message: fmt.Sprintf("invalid JSON on line %d: %v", lineNo, err),
			})
			continue
		}
		records = append(records, v)
	}
	if err := scanner.Err(); err != nil {
		doc.Problems = append(doc.Problems, Problem{
			Line:    lineNo + 1,
			Message: fmt.Sprintf("could not read line %d: %v", lineNo+1, err),
		})
	}

	doc.Root = records
	return doc
}

// DecodeYAML parses a YAML document holding a sequence of turn mappings.
//
// Floats are converted to decimal json.Number values so that `turn_id: 1.0` is
// rejected as a non-integer exactly like it is in JSON.
func DecodeYAML(data []byte) *Document {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return &Document{
			Format:   FormatYAML,
			Problems: []Problem{{Line: yamlErrorLine(err.Error()), Message: fmt.Sprintf("invalid YAML: %v", err)}},
		}
	}
	if v == nil {
		v = turns.Conversation{}
	}
	return &Document{Format: FormatYAML, Root: yamlFloatsToNumbers(v)}
}

func yamlFloatsToNumbers(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return x
		}
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return json.Number(s)
	case []any:
		for i := range x {
			x[i] = yamlFloatsToNumbers(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = yamlFloatsToNumbers(x[k])
		}
	case map[any]any:
		for k := range x {
			x[k] = yamlFloatsToNumbers(x[k])
		}
	}
	return v
}

// decodeSingle decodes exactly one JSON value, keeping numbers as json.Number so
// that integers and decimals stay distinguishable.
func decodeSingle(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return nil, &trailingDataError{offset: dec.InputOffset()}
		}
		return nil, err
	}
	return v, nil
}

type trailingDataError struct {
	offset int64
}

func (e *trailingDataError) Error() string {
	return fmt.Sprintf("unexpected data after top-level value at offset %d", e.offset)
}

// lineOf maps a decoder error back to a 1-based line in data.
func lineOf(data []byte, err error) int {
	var offset int64 = -1

	var se *json.SyntaxError
	var ue *json.UnmarshalTypeError
	var te *trailingDataError
	switch {
	case errors.As(err, &se):
		offset = se.Offset
	case errors.As(err, &ue):
		offset = ue.Offset
	case errors.As(err, &te):
		offset = te.offset
	case errors.Is(err, io.ErrUnexpectedEOF):
		offset = int64(len(data))
	}
	if offset < 0 {
		return 1
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

func yamlErrorLine(msg string) int {
	// yaml.v3 reports "yaml: line N: ..."
	var line int
	if i := strings.Index(msg, "line "); i >= 0 {
		if _, err := fmt.Sscanf(msg[i:], "line %d", &line); err == nil && line > 0 {
			return line
		}
	}
	return 1
}
