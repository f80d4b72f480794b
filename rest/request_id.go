// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/swaggest/jsonschema-go"
	"github.com/z5labs/trellis/filter"
	"github.com/z5labs/trellis/openapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries the id of a request in both directions.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID is a middleware ensuring every request has an id. A client
// supplied id is kept, otherwise a UUIDv7 is generated. The id is echoed
// in the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = newRequestID()
		}

		w.Header().Set(RequestIDHeader, id)
		trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("http.request.id", id))

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RequestIDFrom returns the id assigned by [RequestID].
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// RequestIDValue is the id of the current request. Declare it as an
// untagged handler argument, with [route.Extract], to receive it.
type RequestIDValue string

// ExtractFrom implements [filter.Extractor].
func (v *RequestIDValue) ExtractFrom(c *filter.Context) error {
	id, ok := RequestIDFrom(c.Context())
	if !ok {
		id = c.Request.Header.Get(RequestIDHeader)
	}
	*v = RequestIDValue(id)
	return nil
}

// Document documents the optional request id header.
func (RequestIDValue) Document(op *openapi.Operation, comps *openapi.Components) error {
	var s jsonschema.Schema
	s.WithType(jsonschema.String.Type())

	op.Parameters = append(op.Parameters, openapi.Parameter{
		Name:   RequestIDHeader,
		In:     openapi.InHeader,
		Schema: &s,
	})
	return nil
}
