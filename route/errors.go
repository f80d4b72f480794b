// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrMalformedTemplate      = errors.New("route: malformed path template")
	ErrUnboundPathParameter   = errors.New("route: unbound path parameter")
	ErrAmbiguousPathParameter = errors.New("route: ambiguous path parameter")
	ErrDuplicateBodyExtractor = errors.New("route: duplicate body extractor")
	ErrUnextractableParameter = errors.New("route: unextractable parameter")
	ErrSignatureMismatch      = errors.New("route: signature mismatch")
	ErrFilterValue            = errors.New("route: unexpected filter value")
)

// MalformedTemplateError is returned when a path template can not be compiled.
type MalformedTemplateError struct {
	Template string
	Reason   string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("malformed path template %q: %s", e.Template, e.Reason)
}

func (e *MalformedTemplateError) Is(target error) bool {
	return target == ErrMalformedTemplate
}

// UnboundPathParameterError is returned when a template parameter has no
// handler argument of the same name.
type UnboundPathParameterError struct {
	Parameter string
}

func (e *UnboundPathParameterError) Error() string {
	return fmt.Sprintf("path parameter {%s} is not bound to any handler argument", e.Parameter)
}

func (e *UnboundPathParameterError) Is(target error) bool {
	return target == ErrUnboundPathParameter
}

// AmbiguousPathParameterError is returned when more than one handler
// argument claims the same template parameter.
type AmbiguousPathParameterError struct {
	Parameter string
}

func (e *AmbiguousPathParameterError) Error() string {
	return fmt.Sprintf("path parameter {%s} is bound to more than one handler argument", e.Parameter)
}

func (e *AmbiguousPathParameterError) Is(target error) bool {
	return target == ErrAmbiguousPathParameter
}

// DuplicateBodyExtractorError is returned when a handler reads the request
// body more than once.
type DuplicateBodyExtractorError struct {
	First  Kind
	Second Kind
}

func (e *DuplicateBodyExtractorError) Error() string {
	return fmt.Sprintf("request body is extracted twice: as %s and as %s", e.First, e.Second)
}

func (e *DuplicateBodyExtractorError) Is(target error) bool {
	return target == ErrDuplicateBodyExtractor
}

// UnextractableParameterError is returned when no extraction exists for a
// handler argument of the given type.
type UnextractableParameterError struct {
	Index  int
	Kind   Kind
	Type   reflect.Type
	Reason string
}

func (e *UnextractableParameterError) Error() string {
	return fmt.Sprintf("argument %d of type %s can not be extracted as %s: %s", e.Index, e.Type, e.Kind, e.Reason)
}

func (e *UnextractableParameterError) Is(target error) bool {
	return target == ErrUnextractableParameter
}

// SignatureMismatchError is returned when the declared parameters do not
// agree with the handler func.
type SignatureMismatchError struct {
	Handler reflect.Type
	Reason  string
}

func (e *SignatureMismatchError) Error() string {
	if e.Handler == nil {
		return "handler: " + e.Reason
	}
	return fmt.Sprintf("handler %s: %s", e.Handler, e.Reason)
}

func (e *SignatureMismatchError) Is(target error) bool {
	return target == ErrSignatureMismatch
}

// BuildError identifies the route whose construction failed.
type BuildError struct {
	Method  string
	Path    string
	Handler string
	Cause   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build route %s %s (%s): %s", e.Method, e.Path, e.Handler, e.Cause)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// FilterValueError is returned while serving a request when a custom
// filter does not push exactly one value assignable to its argument.
type FilterValueError struct {
	Filter string
	Type   reflect.Type
	Reason string
}

func (e *FilterValueError) Error() string {
	return fmt.Sprintf("filter %q for argument of type %s: %s", e.Filter, e.Type, e.Reason)
}

func (e *FilterValueError) Is(target error) bool {
	return target == ErrFilterValue
}
