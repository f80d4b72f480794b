// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest serves compiled routes over HTTP alongside their OpenAPI
// document.
//
// # Quick Start
//
//	sum := func(a, b uint64) string { return strconv.FormatUint(a+b, 10) }
//
//	api, err := rest.NewApi("Math API", "v1.0.0", []route.Service{
//	    route.Router("/math", []route.Service{
//	        route.Get("/sum/{a}/{b}", sum, route.Arg("a"), route.Arg("b")),
//	    }, route.WithTags("math")),
//	})
//	if err != nil {
//	    return err
//	}
//	http.ListenAndServe(":8080", api)
//
// Besides the routes, every [Api] serves:
//   - the OpenAPI document at GET /openapi.json and GET /openapi.yaml
//   - health checks at GET /health/liveness and GET /health/readiness
//
// # Errors
//
// Failed and rejected requests are answered with RFC 7807 Problem Details
// by default. See [ProblemDetailsErrorHandler].
//
// # Running
//
// [Run] reads a [trellis.Config] from a bedrock config source and serves
// an [Api] with OpenTelemetry initialized from it. The server shuts down
// gracefully on SIGINT or SIGTERM. [Builder] exposes the same app as a
// [bedrock.AppBuilder] for composing with other builders.
package rest
