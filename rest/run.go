// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"log/slog"
	"os"
	"syscall"

	"github.com/z5labs/trellis"
	"github.com/z5labs/trellis/internal/httpserver"

	"github.com/z5labs/bedrock"
	"github.com/z5labs/bedrock/app"
	"github.com/z5labs/bedrock/appbuilder"
	"github.com/z5labs/bedrock/config"
	"github.com/z5labs/bedrock/lifecycle"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// BuildFunc initializes the [Api] served by [Run].
type BuildFunc func(context.Context, trellis.Config) (*Api, error)

// Builder wraps build into a [bedrock.AppBuilder] which serves the [Api]
// over HTTP. OpenTelemetry is initialized before build is called and shut
// down after the server stops. Panics are recovered into errors and the
// server stops on SIGINT or SIGTERM.
func Builder(build BuildFunc) bedrock.AppBuilder[trellis.Config] {
	return appbuilder.LifecycleContext(
		appbuilder.OTel(
			appbuilder.Recover(
				bedrock.AppBuilderFunc[trellis.Config](func(ctx context.Context, cfg trellis.Config) (bedrock.App, error) {
					api, err := build(ctx, cfg)
					if err != nil {
						return nil, err
					}

					ls, err := cfg.HTTP.Listener(ctx)
					if err != nil {
						return nil, err
					}

					log := trellis.Logger(instrumentationName)
					log.InfoContext(ctx, "serving api", slog.String("addr", ls.Addr().String()))

					h := otelhttp.NewHandler(
						api,
						"trellis",
						otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
					)

					var base bedrock.App = httpserver.NewApp(
						ls,
						h,
						httpserver.ErrorLog(log.Handler()),
						httpserver.Timeouts(
							cfg.HTTP.ReadHeaderTimeout,
							cfg.HTTP.ReadTimeout,
							cfg.HTTP.WriteTimeout,
							cfg.HTTP.IdleTimeout,
						),
						httpserver.ShutdownTimeout(cfg.HTTP.ShutdownTimeout),
					)
					base = app.Recover(base)
					base = app.InterruptOn(base, os.Interrupt, syscall.SIGTERM)
					return base, nil
				}),
			),
		),
		&lifecycle.Context{},
	)
}

// Run reads a [trellis.Config] from src, builds the [Api] and serves it on
// the configured port until ctx is cancelled or the process is
// interrupted.
func Run(ctx context.Context, src config.Source, build BuildFunc) error {
	a, err := appbuilder.FromConfig(Builder(build)).Build(ctx, src)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
