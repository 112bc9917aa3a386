package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// validateExample checks the document's registry example against its schema.
func validateExample(document Document) error {
	schemaLoader := gojsonschema.NewGoLoader(document.Schema)
	documentLoader := gojsonschema.NewGoLoader(document.Example)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errMsg := fmt.Sprintf("example does not satisfy %s:\n", document.Name)
		for _, desc := range result.Errors() {
			errMsg += fmt.Sprintf("  - %s: %s\n", desc.Field(), desc.Description())
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// writeDocument writes one schema document as indented JSON.
func writeDocument(filename string, document Document) error {
	data, err := json.MarshalIndent(document.Schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
