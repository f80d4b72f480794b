// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/z5labs/trellis/internal/ordered"
)

type pathItem = ordered.Map[string, Operation]

// Specification is the in-memory documentation of a service.
//
// A Specification returned by [Collector.End] is frozen and every
// mutation of it fails with [ErrFrozen].
type Specification struct {
	Info Info

	paths      ordered.Map[string, *pathItem]
	components Components
	frozen     bool
}

// NewSpecification initializes an empty, mutable [Specification].
func NewSpecification(info Info) *Specification {
	return &Specification{Info: info}
}

// Frozen reports whether s can no longer be mutated.
func (s *Specification) Frozen() bool {
	return s.frozen
}

func (s *Specification) freeze() {
	s.frozen = true
}

// Paths returns every documented path in the order it was first documented.
func (s *Specification) Paths() []string {
	return s.paths.Keys()
}

// Methods returns the lower cased methods documented for path.
func (s *Specification) Methods(path string) []string {
	item, ok := s.paths.Get(path)
	if !ok {
		return nil
	}
	return item.Keys()
}

// Operation returns a copy of the operation documented for path and method.
func (s *Specification) Operation(path, method string) (Operation, bool) {
	item, ok := s.paths.Get(path)
	if !ok {
		return Operation{}, false
	}
	op, ok := item.Get(strings.ToLower(method))
	if !ok {
		return Operation{}, false
	}
	return op.clone(), true
}

// Components returns a copy of the registered components.
func (s *Specification) Components() *Components {
	return s.components.clone()
}

// AddOperation documents op for path and method. Documenting an equal
// operation again is a no-op while a different one fails with an
// [OperationConflictError].
func (s *Specification) AddOperation(path, method string, op Operation) error {
	if s.frozen {
		return ErrFrozen
	}

	method = strings.ToLower(method)

	item, ok := s.paths.Get(path)
	if !ok {
		item = &pathItem{}
		s.paths.Set(path, item)
	}

	existing, ok := item.Get(method)
	if !ok {
		item.Set(method, op.clone())
		return nil
	}

	diff, err := diffOperations(existing, op)
	if err != nil {
		return err
	}
	if diff != "" {
		return &OperationConflictError{
			Path:   path,
			Method: strings.ToUpper(method),
			Diff:   diff,
		}
	}
	return nil
}

// AddComponents merges comps into the registered components.
func (s *Specification) AddComponents(comps *Components) error {
	if s.frozen {
		return ErrFrozen
	}
	return s.components.Merge(comps)
}

// diffOperations compares the canonical JSON documents of two operations.
// The order of tags, parameters and responses is significant.
func diffOperations(a, b Operation) (string, error) {
	ab, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	if bytes.Equal(ab, bb) {
		return "", nil
	}

	var av, bv any
	err = json.Unmarshal(ab, &av)
	if err != nil {
		return "", err
	}
	err = json.Unmarshal(bb, &bv)
	if err != nil {
		return "", err
	}
	diff := cmp.Diff(av, bv)
	if diff == "" {
		diff = fmt.Sprintf("key order differs:\n-\t%s\n+\t%s", ab, bb)
	}
	return diff, nil
}
