// Package validation compiles JSON Schemas and reports instance violations
// in a readable form.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
	name   string
}

// Compile compiles a Draft 2020-12 schema document.
func Compile(name string, document []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(name, bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}
	s, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &Schema{schema: s, name: name}, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// embedded schemas.
func MustCompile(name string, document []byte) *Schema {
	s, err := Compile(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateJSON validates a JSON document.
func (s *Schema) ValidateJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("invalid JSON: %w", errors.New("invalid character after top-level value"))
	}
	return s.Validate(instance)
}

// ValidateYAML converts a YAML document to JSON and validates it.
func (s *Schema) ValidateYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return s.ValidateJSON(js)
}

// Validate validates an already decoded instance.
func (s *Schema) Validate(instance any) error {
	err := s.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return &Error{Schema: s.name, Messages: messages(verr)}
	}
	return fmt.Errorf("schema %s: %w", s.name, err)
}

// Error lists every violation found in an instance.
type Error struct {
	Schema   string
	Messages []string
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	return fmt.Sprintf("%d violations:\n    - %s", len(e.Messages), strings.Join(e.Messages, "\n    - "))
}

// messages flattens the cause tree into "location: message" lines.
func messages(err *jsonschema.ValidationError) []string {
	var out []string
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		// Interior nodes only summarize their causes.
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			out = append(out, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)
	return out
}
