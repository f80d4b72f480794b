// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package trellis compiles declaratively described HTTP routes into request
// extraction pipelines and, alongside, into an OpenAPI document.
//
// The building blocks live in sub-packages:
//   - route: path templates, parameter binding and route groups
//   - openapi: the documentation collector and document model
//   - filter: the composable request matching and extraction runtime
//   - rest: an [net/http.Handler] serving routes and their documentation
package trellis

import (
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// Logger returns a [slog.Logger] which emits records through the
// globally registered OpenTelemetry log provider.
func Logger(name string) *slog.Logger {
	return otelslog.NewLogger(name)
}

// LogHandler returns the [slog.Handler] backing [Logger].
func LogHandler(name string) slog.Handler {
	return otelslog.NewHandler(name)
}
