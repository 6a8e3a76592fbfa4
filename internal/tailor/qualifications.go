package tailor

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed qualifications_schema.json
var qualificationsSchema []byte

// Qualification is one weighted requirement extracted from a job description.
type Qualification struct {
	Qualification string `json:"qualification"`
	Weight        int    `json:"weight"`
}

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("qualifications.json", bytes.NewReader(qualificationsSchema)); err != nil {
		panic(fmt.Sprintf("load qualifications schema: %v", err))
	}
	schema, err := compiler.Compile("qualifications.json")
	if err != nil {
		panic(fmt.Sprintf("compile qualifications schema: %v", err))
	}
	return schema
}

// ParseQualifications parses and validates model output as a weighted
// qualification list. Markdown code fences and surrounding prose are
// stripped before parsing.
func ParseQualifications(content string) ([]Qualification, error) {
	raw := extractJSONArray(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse qualifications: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("qualifications do not match schema: %w", err)
	}

	var quals []Qualification
	if err := json.Unmarshal([]byte(raw), &quals); err != nil {
		return nil, fmt.Errorf("decode qualifications: %w", err)
	}
	return quals, nil
}

// extractJSONArray pulls the outermost JSON array out of model output that
// may be wrapped in code fences or explanation text.
func extractJSONArray(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if len(lines) >= 2 {
			lines = lines[1:]
			if strings.TrimSpace(lines[len(lines)-1]) == "```" {
				lines = lines[:len(lines)-1]
			}
			trimmed = strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start < 0 || end < start {
		return ""
	}
	return trimmed[start : end+1]
}
