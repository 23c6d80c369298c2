// Package schemas checks the applicant profile document against its JSON Schema before it is decoded.
package schemas

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed profile.schema.json
var profileSchemaJSON string

var (
	profileSchemaOnce sync.Once
	profileSchema     *gojsonschema.Schema
	profileSchemaErr  error
)

// Problem is one schema violation, located by a dotted path into the profile.
type Problem struct {
	Field   string
	Message string
}

// ProfileError lists every violation found in a profile document.
type ProfileError struct {
	Problems []Problem
}

func (e *ProfileError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "profile validation failed (%d problem(s)):", len(e.Problems))
	for _, p := range e.Problems {
		fmt.Fprintf(&sb, "\n  - %s: %s", p.Field, p.Message)
	}
	return sb.String()
}

// Fields returns the paths of all violations.
func (e *ProfileError) Fields() []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p.Field
	}
	return out
}

// SchemaError means a schema could not be compiled; it is a programming error, not bad input.
type SchemaError struct {
	Name  string
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema %s: %v", e.Name, e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// ValidateProfile checks a decoded profile document (maps, slices and scalars, as produced by
// yaml.Unmarshal into any) against the embedded profile schema.
func ValidateProfile(doc any) error {
	profileSchemaOnce.Do(func() {
		profileSchema, profileSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchemaJSON))
	})
	if profileSchemaErr != nil {
		return &SchemaError{Name: "profile.schema.json", Cause: profileSchemaErr}
	}
	return check(profileSchema, gojsonschema.NewGoLoader(doc))
}

// Validate compiles schemaJSON and checks doc against it.
func Validate(schemaJSON string, doc any) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return &SchemaError{Name: "(inline)", Cause: err}
	}
	return check(schema, gojsonschema.NewGoLoader(doc))
}

func check(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) error {
	result, err := schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	pe := &ProfileError{Problems: make([]Problem, 0, len(result.Errors()))}
	for _, re := range result.Errors() {
		field := re.Field()
		if field == "" || field == "(root)" {
			field = "(root)"
		}
		pe.Problems = append(pe.Problems, Problem{Field: field, Message: re.Description()})
	}
	sort.SliceStable(pe.Problems, func(i, j int) bool { return pe.Problems[i].Field < pe.Problems[j].Field })
	return pe
}
