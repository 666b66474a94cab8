// Package schema generates and enforces the JSON schema for persisted
// session documents. The schema is reflected from the session types, so it
// always matches what the store actually writes.
package schema

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	jsonschemavalidate "github.com/santhosh-tekuri/jsonschema/v5"

	perrors "github.com/mattsolo1/grove-pilot/errors"
	"github.com/mattsolo1/grove-pilot/session"
)

const schemaResource = "pilot://session.schema.json"

// Generate returns the JSON schema for session files, pretty-printed.
func Generate() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := reflector.Reflect(&session.Session{})
	s.Title = "Pilot Session"
	s.Description = "A persisted pilot session with its checkpoints"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, perrors.Wrap(err, perrors.ErrCodeInternal, "failed to marshal session schema")
	}
	return data, nil
}

// Validator checks session documents against the generated schema.
type Validator struct {
	schema *jsonschemavalidate.Schema
}

// NewValidator compiles the session schema.
func NewValidator() (*Validator, error) {
	data, err := Generate()
	if err != nil {
		return nil, err
	}

	compiler := jsonschemavalidate.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(data)); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrCodeInternal, "failed to load session schema")
	}
	compiled, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.ErrCodeInternal, "failed to compile session schema")
	}

	return &Validator{schema: compiled}, nil
}

// ValidateBytes checks a raw JSON document.
func (v *Validator) ValidateBytes(name string, data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return perrors.SchemaInvalid(name, err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return perrors.SchemaInvalid(name, err)
	}
	return nil
}

// ValidateFile checks a session file on disk.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return perrors.Persistence("read session file", path, err)
	}
	return v.ValidateBytes(path, data)
}
