package event

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Document is an ordered list of event records.
type Document struct {
	Events []Record `json:"events" yaml:"events"`
}

// Violation is one schema failure in a document.
type Violation struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	var b strings.Builder
	if v.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", v.Line, v.Column)
	}
	if v.Path != "" {
		b.WriteString(v.Path + ": ")
	}
	b.WriteString(v.Message)
	return b.String()
}

// SchemaError lists every schema violation of a document.
type SchemaError struct {
	Source     string
	Violations []Violation
}

func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("%s: %d schema violation(s):\n  %s", e.Source, len(e.Violations), strings.Join(lines, "\n  "))
}

// ValidateDocument checks data against the embedded event schema.
// Schema failures are returned as a *SchemaError.
func ValidateDocument(data []byte) error {
	return validate("document", data)
}

func validate(source string, data []byte) error {
	file, err := cueyaml.Extract(source, data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile event schema: %w", err)
	}

	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("build %s: %w", source, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Document")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Source: source, Violations: violations(source, err)}
	}
	return nil
}

// violations flattens CUE errors, preferring positions inside the document
// over positions inside the schema.
func violations(source string, err error) []Violation {
	var out []Violation
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		for _, pos := range cueerrors.Positions(e) {
			if pos.Filename() == source {
				v.Line, v.Column = pos.Line(), pos.Column()
				break
			}
		}
		out = append(out, v)
	}
	return out
}

// Parse validates data and decodes it into typed events. Unknown fields are
// rejected.
func Parse(data []byte) ([]Event, error) {
	return parse("document", data)
}

// LoadFile reads and parses an event document.
func LoadFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return parse(path, data)
}

func parse(source string, data []byte) ([]Event, error) {
	doc, err := decode(source, data)
	if err != nil {
		return nil, err
	}
	return Convert(doc.Events)
}

func decode(source string, data []byte) (*Document, error) {
	if err := validate(source, data); err != nil {
		return nil, err
	}
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return &doc, nil
}

// Convert turns records into typed events, stopping at the first failure.
func Convert(records []Record) ([]Event, error) {
	events := make([]Event, 0, len(records))
	for i, r := range records {
		ev, err := r.Event()
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Index = i
			}
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
