// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app assembles the math api.
package app

import (
	"bytes"
	"context"
	_ "embed"

	bedrockcfg "github.com/z5labs/bedrock/config"
	"github.com/z5labs/trellis"
	"github.com/z5labs/trellis/example/mathapi/endpoint"
	"github.com/z5labs/trellis/health"
	"github.com/z5labs/trellis/rest"
	"github.com/z5labs/trellis/route"
)

//go:embed config.yaml
var config []byte

// Config returns the configuration layered over [trellis.DefaultConfig].
func Config() bedrockcfg.Source {
	return trellis.ConfigSource(bytes.NewReader(config))
}

// Services lists every route of the math api.
func Services() []route.Service {
	return []route.Service{
		route.Router("/math", []route.Service{
			route.Get(
				"/sum/{a}/{b}",
				endpoint.Sum,
				route.Arg("a"),
				route.Arg("b"),
				route.Summary("Add two numbers"),
			),
			route.Post(
				"/product",
				endpoint.Product,
				route.Form(),
				route.Summary("Multiply two numbers"),
			),
			route.Get(
				"/divide/{a}/{b}",
				endpoint.Divide,
				route.Arg("a"),
				route.Arg("b"),
				route.Summary("Divide two numbers"),
				route.Response[rest.ProblemDetail]("422", "Division by zero"),
			),
		}, route.WithTags("math")),
	}
}

// Init builds the math api. It becomes ready once built.
func Init(ctx context.Context, cfg trellis.Config) (*rest.Api, error) {
	var ready health.Binary

	api, err := rest.NewApi(
		cfg.OpenApi.Title,
		cfg.OpenApi.Version,
		Services(),
		rest.Description(cfg.OpenApi.Description),
		rest.Readiness(&ready),
	)
	if err != nil {
		return nil, err
	}

	ready.MarkHealthy()
	return api, nil
}
