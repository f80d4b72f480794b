// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package route compiles handlers into request pipelines.
//
// A route pairs a path template, such as "/sum/{a}/{b}", with a handler
// func and a [Param] for each of its arguments. Building the route checks
// that every template parameter is bound to exactly one argument and that
// every other argument can be extracted, then lays out a [Pipeline]
// which parses the path, matches the method, extracts the remaining
// arguments and calls the handler.
//
// Routes are grouped below common prefixes with [Router]. Building with
// an active [openapi.Collector], as [Document] does, records an operation
// for every route as well.
package route
