package recipe

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://experimenter.local/schemas/experimentRecipe.json"

//go:embed experimentRecipe.json
var schemaJSON []byte

// Schema returns the raw experimentRecipe.json document.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func recipeSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft7
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("failed to load recipe schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Violation is one failing location in a document.
type Violation struct {
	InstanceLocation string `json:"instance_location"`
	Message          string `json:"message"`
}

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		loc := v.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		parts[i] = loc + ": " + v.Message
	}
	return "recipe does not match schema: " + strings.Join(parts, "; ")
}

// Validate checks doc against experimentRecipe.json. doc may be raw JSON
// bytes or any value that marshals to JSON.
func Validate(doc any) error {
	schema, err := recipeSchema()
	if err != nil {
		return err
	}

	var raw []byte
	switch d := doc.(type) {
	case []byte:
		raw = d
	case json.RawMessage:
		raw = d
	default:
		raw, err = json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode recipe: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("failed to decode recipe: %w", err)
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	out := &ValidationError{}
	collectViolations(ve, out)
	return out
}

// collectViolations keeps the leaves of the error tree, which carry the
// specific failure.
func collectViolations(ve *jsonschema.ValidationError, out *ValidationError) {
	if len(ve.Causes) == 0 {
		out.Violations = append(out.Violations, Violation{
			InstanceLocation: ve.InstanceLocation,
			Message:          ve.Message,
		})
		return
	}
	for _, c := range ve.Causes {
		collectViolations(c, out)
	}
}
