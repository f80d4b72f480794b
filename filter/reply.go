// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
)

// Reply is the response computed by a filter chain.
type Reply interface {
	WriteResponse(context.Context, http.ResponseWriter) error
}

// Text is a text/plain 200 OK reply.
type Text string

// WriteResponse implements the [Reply] interface.
func (t Text) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(t))
	return err
}

// Bytes is an application/octet-stream 200 OK reply.
type Bytes []byte

// WriteResponse implements the [Reply] interface.
func (b Bytes) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(b)
	return err
}

// JSONReply encodes Value as the JSON response body.
type JSONReply struct {
	Status int
	Value  any
}

// WriteResponse implements the [Reply] interface.
func (j JSONReply) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	status := j.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	return enc.Encode(j.Value)
}

// Status is a reply without a body.
type Status int

// WriteResponse implements the [Reply] interface.
func (s Status) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	w.WriteHeader(int(s))
	return nil
}

// NoContent is the reply of handlers which return nothing.
const NoContent = Status(http.StatusNoContent)

var (
	replyType = reflect.TypeFor[Reply]()
	errorType = reflect.TypeFor[error]()
)

// ReplyOf converts a value returned by a handler into a [Reply].
func ReplyOf(v any) Reply {
	switch x := v.(type) {
	case nil:
		return NoContent
	case Reply:
		return x
	case string:
		return Text(x)
	case []byte:
		return Bytes(x)
	default:
		return JSONReply{Value: x}
	}
}

// CheckResults reports whether handler results of the given types can be
// converted by [Invoke]. At most one value may be returned, optionally
// followed by an error.
func CheckResults(ts []reflect.Type) error {
	switch len(ts) {
	case 0:
		return nil
	case 1:
		return nil
	case 2:
		if ts[1] != errorType {
			return fmt.Errorf("second result must be an error: got %s", ts[1])
		}
		if ts[0] == errorType {
			return fmt.Errorf("first of two results can not be an error")
		}
		return nil
	default:
		return fmt.Errorf("handlers return at most 2 results: got %d", len(ts))
	}
}

// Invoke terminates a filter chain by calling fn with the arguments args
// builds from the extracted values. The results of fn are converted with
// [ReplyOf] and a trailing non-nil error aborts the request.
func Invoke(fn reflect.Value, args func([]any) []reflect.Value) Filter {
	return Handle(func(c *Context) (Reply, error) {
		results := fn.Call(args(c.Values()))
		return replyOfResults(results)
	})
}

func replyOfResults(results []reflect.Value) (Reply, error) {
	if n := len(results); n > 0 && results[n-1].Type() == errorType {
		errV := results[n-1]
		results = results[:n-1]
		if !errV.IsNil() {
			return nil, errV.Interface().(error)
		}
	}

	if len(results) == 0 {
		return NoContent, nil
	}

	v := results[0]
	if v.Kind() == reflect.Pointer && v.IsNil() && !v.Type().Implements(replyType) {
		return NoContent, nil
	}
	return ReplyOf(v.Interface()), nil
}
