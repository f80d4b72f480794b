// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package openapi collects the documentation of routes into an in-memory
// specification which can be rendered as an OpenAPI 3 document.
package openapi
