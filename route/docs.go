// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"net/http"
	"reflect"
	"regexp"
	"strconv"

	"github.com/swaggest/jsonschema-go"
	"github.com/z5labs/trellis/filter"
	"github.com/z5labs/trellis/openapi"
)

// Documenter may be implemented by [filter.Extractor] types to document
// the request parameters they read.
type Documenter interface {
	Document(*openapi.Operation, *openapi.Components) error
}

var (
	documenterType = reflect.TypeFor[Documenter]()
	replyType      = reflect.TypeFor[filter.Reply]()
	errorType      = reflect.TypeFor[error]()
)

var anonymousFunc = regexp.MustCompile(`^func\d+$`)

func (r *Route) document(plan Plan, comps *openapi.Components) (openapi.Operation, error) {
	op := openapi.Operation{
		Tags:        append([]string(nil), r.opts.tags...),
		OperationID: r.opts.operationID,
		Summary:     r.opts.summary,
		Description: r.opts.description,
		Deprecated:  r.opts.deprecated,
	}
	if op.OperationID == "" {
		if name := handlerName(r.handler); !anonymousFunc.MatchString(name) {
			op.OperationID = name
		}
	}

	for _, b := range plan.bindings {
		err := documentBinding(&op, b, comps)
		if err != nil {
			return op, err
		}
	}
	for _, body := range plan.BodyTypes() {
		err := documentBody(&op, body, comps)
		if err != nil {
			return op, err
		}
	}

	err := r.documentResponses(&op, comps)
	return op, err
}

func documentBinding(op *openapi.Operation, b Binding, comps *openapi.Components) error {
	switch b.As {
	case PathParam:
		return addParameter(op, comps, b.name, openapi.InPath, true, b.Type)
	case QueryString:
		if b.Type.Kind() != reflect.Struct {
			return nil
		}
		return addFields(op, comps, openapi.InQuery, b.Type)
	case HeaderValue:
		return addParameter(op, comps, b.name, openapi.InHeader, b.Type.Kind() != reflect.Pointer, b.Type)
	case CookieValue:
		return addParameter(op, comps, b.name, openapi.InCookie, b.Type.Kind() != reflect.Pointer, b.Type)
	case Untagged:
		return documentSelf(op, b.Type, comps)
	}
	return nil
}

// documentBody documents the request body. Form fields are documented as
// formData parameters and folded into a request body when rendered.
func documentBody(op *openapi.Operation, body BodyType, comps *openapi.Components) error {
	switch body.Kind {
	case FormBody:
		return addFields(op, comps, openapi.InFormData, body.Type)
	case JSONBody:
		s, err := openapi.Describe(body.Type, comps)
		if err != nil {
			return err
		}
		op.RequestBody = &openapi.RequestBody{
			Required: true,
			Content:  openapi.ContentOf("application/json", &s),
		}
	case RawBody:
		mediaType, s := rawContent(body.Type)
		op.RequestBody = &openapi.RequestBody{
			Required: true,
			Content:  openapi.ContentOf(mediaType, &s),
		}
	}
	return nil
}

func documentSelf(op *openapi.Operation, t reflect.Type, comps *openapi.Components) error {
	switch {
	case t.Implements(documenterType):
		return reflect.Zero(t).Interface().(Documenter).Document(op, comps)
	case reflect.PointerTo(t).Implements(documenterType):
		return reflect.New(t).Interface().(Documenter).Document(op, comps)
	}
	return nil
}

func addParameter(op *openapi.Operation, comps *openapi.Components, name string, in openapi.Location, required bool, t reflect.Type) error {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	s, err := openapi.Describe(t, comps)
	if err != nil {
		return err
	}
	op.Parameters = append(op.Parameters, openapi.Parameter{
		Name:     name,
		In:       in,
		Required: required,
		Schema:   &s,
	})
	return nil
}

func addFields(op *openapi.Operation, comps *openapi.Components, in openapi.Location, t reflect.Type) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		key := filter.FieldKey(f)
		if key == "-" {
			continue
		}

		required, _ := strconv.ParseBool(f.Tag.Get("required"))
		err := addParameter(op, comps, key, in, required, f.Type)
		if err != nil {
			return err
		}
	}
	return nil
}

func rawContent(t reflect.Type) (string, jsonschema.Schema) {
	var s jsonschema.Schema
	s.WithType(jsonschema.String.Type())
	if t.Kind() == reflect.String {
		return "text/plain", s
	}
	s.WithFormat("binary")
	return "application/octet-stream", s
}

func (r *Route) documentResponses(op *openapi.Operation, comps *openapi.Components) error {
	var result reflect.Type
	ht := r.handler.Type()
	if ht.NumOut() > 0 && ht.Out(0) != errorType {
		result = ht.Out(0)
	}

	var err error
	switch {
	case result == nil:
		err = op.Responses.Set(strconv.Itoa(http.StatusNoContent), openapi.Response{Description: "No Content"})
	case result.Implements(replyType):
		err = op.Responses.Set("default", openapi.Response{Description: "Response"})
	default:
		var content openapi.Content
		content, err = resultContent(result, comps)
		if err != nil {
			return err
		}
		err = op.Responses.Set(strconv.Itoa(http.StatusOK), openapi.Response{
			Description: http.StatusText(http.StatusOK),
			Content:     content,
		})
	}
	if err != nil {
		return err
	}

	for _, resp := range r.opts.responses {
		var content openapi.Content
		if resp.typ != nil {
			s, err := openapi.Describe(resp.typ, comps)
			if err != nil {
				return err
			}
			content = openapi.ContentOf("application/json", &s)
		}

		err := op.Responses.Set(resp.status, openapi.Response{
			Description: resp.description,
			Content:     content,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func resultContent(t reflect.Type, comps *openapi.Components) (openapi.Content, error) {
	switch {
	case t == stringType:
		var s jsonschema.Schema
		s.WithType(jsonschema.String.Type())
		return openapi.ContentOf("text/plain", &s), nil
	case t == bytesType:
		_, s := rawContent(t)
		return openapi.ContentOf("application/octet-stream", &s), nil
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s, err := openapi.Describe(t, comps)
	if err != nil {
		return openapi.Content{}, err
	}
	return openapi.ContentOf("application/json", &s), nil
}
