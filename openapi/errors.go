// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"errors"
	"fmt"
)

var (
	// ErrCollectorActive is returned by [Collector.Begin] if a collection is already running.
	ErrCollectorActive = errors.New("openapi: collector is already active")

	// ErrCollectorInactive is returned by [Collector.End] if no collection is running.
	ErrCollectorInactive = errors.New("openapi: collector is not active")

	// ErrCollectorInScope is returned by [Collector.End] if called from
	// within [Collector.Scope].
	ErrCollectorInScope = errors.New("openapi: collector can not end within a scope")

	// ErrFrozen is returned when mutating a [Specification] which has been
	// handed out by [Collector.End].
	ErrFrozen = errors.New("openapi: specification is frozen")

	// ErrOperationConflict is matched by every [OperationConflictError].
	ErrOperationConflict = errors.New("openapi: operation conflict")

	// ErrComponentNameCollision is matched by every [ComponentNameCollisionError].
	ErrComponentNameCollision = errors.New("openapi: component name collision")

	// ErrResponseConflict is matched by every [ResponseConflictError].
	ErrResponseConflict = errors.New("openapi: response conflict")
)

// OperationConflictError is returned when two different operations are
// documented under the same path and method.
type OperationConflictError struct {
	Path   string
	Method string

	// Diff is a human readable comparison of the stored (-) and the
	// conflicting (+) operation.
	Diff string
}

func (e *OperationConflictError) Error() string {
	return fmt.Sprintf("conflicting operations documented for %s %s:\n%s", e.Method, e.Path, e.Diff)
}

// Is reports whether target is [ErrOperationConflict].
func (e *OperationConflictError) Is(target error) bool {
	return target == ErrOperationConflict
}

// ComponentNameCollisionError is returned when two different schemas are
// registered under the same component name.
type ComponentNameCollisionError struct {
	Name string
}

func (e *ComponentNameCollisionError) Error() string {
	return fmt.Sprintf("component %q is already registered with a different schema", e.Name)
}

// Is reports whether target is [ErrComponentNameCollision].
func (e *ComponentNameCollisionError) Is(target error) bool {
	return target == ErrComponentNameCollision
}

// ResponseConflictError is returned when a status key is documented twice
// with different content.
type ResponseConflictError struct {
	Status string
}

func (e *ResponseConflictError) Error() string {
	return fmt.Sprintf("response %s is already documented with different content", e.Status)
}

// Is reports whether target is [ErrResponseConflict].
func (e *ResponseConflictError) Is(target error) bool {
	return target == ErrResponseConflict
}
