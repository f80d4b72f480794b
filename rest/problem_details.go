// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/z5labs/trellis"
	"github.com/z5labs/trellis/filter"
)

const internalErrorDetail = "An internal server error occurred."

// ProblemDetail is an RFC 7807 Problem Details response body.
//
// Embed it in an error type to reply with extension fields:
//
//	type OutOfRangeError struct {
//	    rest.ProblemDetail
//	    Max uint64 `json:"max"`
//	}
//
// Reference: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference identifying the problem type.
	Type string `json:"type"`

	// Title is a short summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code of this occurrence.
	Status int `json:"status"`

	// Detail explains this occurrence of the problem.
	Detail string `json:"detail,omitempty"`

	// Instance identifies this occurrence of the problem.
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

func (p ProblemDetail) problemStatus() int {
	return p.Status
}

type problem interface {
	error
	problemStatus() int
}

// ProblemDetailsOption configures a [ProblemDetailsErrorHandler].
type ProblemDetailsOption func(*ProblemDetailsErrorHandler)

// WithDefaultType sets the base URI problem types are resolved against.
// Defaults to "about:blank", which is used for every problem as is.
func WithDefaultType(uri string) ProblemDetailsOption {
	return func(h *ProblemDetailsErrorHandler) {
		h.defaultType = uri
	}
}

// ProblemDetailsErrorHandler is a [filter.ErrorHandler] replying with
// RFC 7807 Problem Details.
//
// Errors embedding [ProblemDetail] are sent as they are. Rejections and
// malformed requests are described by their status alone, except for the
// parameter or content type at fault. Any other error is sent as a 500
// without its message.
type ProblemDetailsErrorHandler struct {
	defaultType string
	log         *slog.Logger
}

// NewProblemDetailsErrorHandler initializes a [ProblemDetailsErrorHandler].
func NewProblemDetailsErrorHandler(opts ...ProblemDetailsOption) *ProblemDetailsErrorHandler {
	h := &ProblemDetailsErrorHandler{
		defaultType: "about:blank",
		log:         trellis.Logger(instrumentationName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnError implements the [filter.ErrorHandler] interface.
func (h *ProblemDetailsErrorHandler) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	var p problem
	if errors.As(err, &p) {
		h.log.WarnContext(ctx, "sending problem details", slog.Any("error", err))
		h.write(ctx, w, p.problemStatus(), p)
		return
	}

	pd := h.describe(err)
	if pd.Status >= http.StatusInternalServerError {
		h.log.ErrorContext(ctx, "sending error response", slog.Any("error", err))
	} else {
		h.log.DebugContext(ctx, "sending error response", slog.Any("error", err))
	}
	h.write(ctx, w, pd.Status, pd)
}

func (h *ProblemDetailsErrorHandler) describe(err error) ProblemDetail {
	if rej, ok := filter.AsRejection(err); ok {
		return h.problemOf(rej.Status, "")
	}

	var bad filter.BadRequestError
	if errors.As(err, &bad) {
		return h.problemOf(http.StatusBadRequest, requestDetail(bad.Cause))
	}

	return h.problemOf(http.StatusInternalServerError, internalErrorDetail)
}

func requestDetail(err error) string {
	var missing filter.MissingParameterError
	if errors.As(err, &missing) {
		return missing.Error()
	}
	var invalid filter.InvalidParameterError
	if errors.As(err, &invalid) {
		return "invalid parameter value in " + invalid.In + ": " + invalid.Parameter
	}
	var contentType filter.InvalidContentTypeError
	if errors.As(err, &contentType) {
		return contentType.Error()
	}
	return ""
}

func (h *ProblemDetailsErrorHandler) problemOf(status int, detail string) ProblemDetail {
	title := http.StatusText(status)
	return ProblemDetail{
		Type:   h.typeURI(title),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

func (h *ProblemDetailsErrorHandler) typeURI(title string) string {
	if h.defaultType == "about:blank" {
		return h.defaultType
	}
	return h.defaultType + strings.ReplaceAll(strings.ToLower(title), " ", "-")
}

func (h *ProblemDetailsErrorHandler) write(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to encode problem details", slog.Any("error", err))
	}
}
