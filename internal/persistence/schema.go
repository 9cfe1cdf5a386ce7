package persistence

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/antiquity/internal/engine"
)

//go:embed bundle.schema.json
var bundleSchemaJSON string

var bundleSchema = jsonschema.MustCompileString("bundle.schema.json", bundleSchemaJSON)

// DecodeBundle validates raw JSON against the bundle schema and decodes it.
func DecodeBundle(raw []byte) (engine.Bundle, error) {
	var b engine.Bundle
	if err := ValidateBundle(raw); err != nil {
		return b, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&b); err != nil {
		return b, fmt.Errorf("decode bundle: %w", err)
	}
	return b, nil
}

// ValidateBundle checks raw JSON against the bundle schema.
func ValidateBundle(raw []byte) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse bundle: %w", err)
	}
	if err := bundleSchema.Validate(doc); err != nil {
		return fmt.Errorf("invalid bundle: %w", err)
	}
	return nil
}
