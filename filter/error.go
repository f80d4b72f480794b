// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// HttpResponseWriter is an interface for errors that can write their own HTTP responses.
// When an error implementing this interface is returned from a filter chain,
// its WriteHttpResponse method is called to generate the HTTP response.
type HttpResponseWriter interface {
	WriteHttpResponse(context.Context, http.ResponseWriter)
}

// ErrorHandler handles errors that occur during request processing.
type ErrorHandler interface {
	OnError(context.Context, http.ResponseWriter, error)
}

// ErrorHandlerFunc is a function adapter that implements [ErrorHandler].
type ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)

// OnError implements the [ErrorHandler] interface.
func (f ErrorHandlerFunc) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	f(ctx, w, err)
}

// DefaultErrorHandler logs every error and writes the status of errors
// implementing [HttpResponseWriter]. Anything else becomes a 500.
func DefaultErrorHandler(h slog.Handler) ErrorHandlerFunc {
	log := slog.New(h)

	return func(ctx context.Context, w http.ResponseWriter, err error) {
		var rej Rejection
		if errors.As(err, &rej) {
			log.DebugContext(ctx, "rejected request", slog.Int("status", rej.Status))
		} else {
			log.ErrorContext(ctx, "sending error response", slog.Any("error", err))
		}

		var hrw HttpResponseWriter
		if errors.As(err, &hrw) {
			hrw.WriteHttpResponse(ctx, w)
			return
		}

		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Rejection signals that a request did not match a filter. Unlike other
// errors a Rejection lets [Or] try the next alternative.
type Rejection struct {
	Status int
}

func (r Rejection) Error() string {
	return fmt.Sprintf("request rejected: %s", http.StatusText(r.Status))
}

// WriteHttpResponse implements [HttpResponseWriter].
func (r Rejection) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	w.WriteHeader(r.Status)
}

// a method mismatch is more specific than an unknown path since the path
// must have matched for the method to be checked.
func (r Rejection) combine(other Rejection) Rejection {
	if rejectionRank(other.Status) > rejectionRank(r.Status) {
		return other
	}
	return r
}

func rejectionRank(status int) int {
	switch status {
	case http.StatusNotFound:
		return 0
	case http.StatusMethodNotAllowed:
		return 1
	default:
		return 2
	}
}

// AsRejection reports whether err is a [Rejection].
func AsRejection(err error) (Rejection, bool) {
	var rej Rejection
	ok := errors.As(err, &rej)
	return rej, ok
}

// NotFound is the [Rejection] for requests whose path did not match.
func NotFound() Rejection {
	return Rejection{Status: http.StatusNotFound}
}

// MethodNotAllowed is the [Rejection] for requests whose method did not match.
func MethodNotAllowed() Rejection {
	return Rejection{Status: http.StatusMethodNotAllowed}
}

// BadRequestError represents a 400 Bad Request error.
// It wraps an underlying cause (typically extraction errors).
type BadRequestError struct {
	Cause error
}

func (e BadRequestError) Error() string {
	return fmt.Sprintf("bad request error: %v", e.Cause)
}

// Unwrap returns the underlying cause of the bad request.
func (e BadRequestError) Unwrap() error {
	return e.Cause
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e BadRequestError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
}

// MissingParameterError is returned when a required parameter is missing
// from a request. It is always wrapped in a [BadRequestError].
type MissingParameterError struct {
	Parameter string
	In        string
}

func (e MissingParameterError) Error() string {
	return fmt.Sprintf("missing required request parameter in %s: %s", e.In, e.Parameter)
}

// InvalidParameterError is returned when a parameter's value can not be
// parsed into the requested type. It is always wrapped in a [BadRequestError].
type InvalidParameterError struct {
	Parameter string
	In        string
	Cause     error
}

func (e InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter value in %s: %s: %v", e.In, e.Parameter, e.Cause)
}

// Unwrap returns the parse failure.
func (e InvalidParameterError) Unwrap() error {
	return e.Cause
}

// InvalidContentTypeError is returned when the request body has an
// unexpected content type. It is always wrapped in a [BadRequestError].
type InvalidContentTypeError struct {
	ContentType string
}

func (e InvalidContentTypeError) Error() string {
	return fmt.Sprintf("invalid content type for request: %s", e.ContentType)
}

// BodyConsumedError is returned when a second filter attempts to read an
// already consumed request body.
type BodyConsumedError struct{}

func (BodyConsumedError) Error() string {
	return "request body has already been consumed"
}
