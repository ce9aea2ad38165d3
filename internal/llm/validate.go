package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationResult is the outcome of validating one model response.
// Validation failure is a normal control-flow signal for the escalation
// loop, not an error.
type ValidationResult struct {
	Valid  bool
	Data   *ResumeData
	Errors []string // populated on failure
	Raw    string   // original model output, for diagnostics
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func resumeSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(BuildResumeJSONSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("resume.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("resume.json")
	})
	return compiledSchema, schemaErr
}

// ValidateResponse strips markdown fences, parses the JSON, and validates it
// against the resume schema. Never returns an error: malformed output is a
// validation failure like any other.
func ValidateResponse(raw string) ValidationResult {
	stripped := stripMarkdownFences(raw)

	var parsed any
	if err := json.Unmarshal([]byte(stripped), &parsed); err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("invalid JSON: %v", err)}, Raw: raw}
	}

	schema, err := resumeSchema()
	if err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("schema unavailable: %v", err)}, Raw: raw}
	}

	if err := schema.Validate(parsed); err != nil {
		return ValidationResult{Errors: formatValidationError(err), Raw: raw}
	}

	var data ResumeData
	if err := json.Unmarshal([]byte(stripped), &data); err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("unmarshal resume data: %v", err)}, Raw: raw}
	}
	return ValidationResult{Valid: true, Data: &data, Raw: raw}
}

// stripMarkdownFences removes ```json ... ``` code fences if present.
func stripMarkdownFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimRight(text[:len(text)-3], " \t\r\n")
	}
	return strings.TrimSpace(text)
}

// formatValidationError flattens a jsonschema error tree into readable
// "path: message" strings, e.g. "/experience/0: missing properties: 'start_date'".
func formatValidationError(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}
