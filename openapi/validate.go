// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"context"
	"fmt"

	kinopenapi3 "github.com/getkin/kin-openapi/openapi3"
)

// Validate checks that the rendered OpenAPI 3 document of s is valid.
func Validate(ctx context.Context, s *Specification) error {
	b, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("render openapi document: %w", err)
	}
	return ValidateDocument(ctx, b)
}

// ValidateDocument checks that b is a valid OpenAPI 3 document in
// either JSON or YAML form.
func ValidateDocument(ctx context.Context, b []byte) error {
	loader := kinopenapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(b)
	if err != nil {
		return fmt.Errorf("load openapi document: %w", err)
	}

	err = doc.Validate(ctx)
	if err != nil {
		return fmt.Errorf("validate openapi document: %w", err)
	}
	return nil
}
