// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"os"
	"path/filepath"

	"github.com/z5labs/trellis/config"

	"go.opentelemetry.io/otel/sdk"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

func detectResource(ctx context.Context, cfg config.Resource) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithDetectors(
			telemetrySDK{},
			resource.StringDetector(semconv.SchemaURL, semconv.HostNameKey, os.Hostname),
			resource.StringDetector(semconv.SchemaURL, semconv.ServiceNameKey, func() (string, error) {
				return serviceName(cfg.ServiceName), nil
			}),
			resource.StringDetector(semconv.SchemaURL, semconv.ServiceVersionKey, func() (string, error) {
				return cfg.ServiceVersion, nil
			}),
		),
	)
}

// serviceName follows the otel convention of unknown_service:<executable>
// when no name is configured.
func serviceName(name string) string {
	if name != "" {
		return name
	}
	exe, err := os.Executable()
	if err != nil {
		return "unknown_service:go"
	}
	return "unknown_service:" + filepath.Base(exe)
}

type telemetrySDK struct{}

func (telemetrySDK) Detect(context.Context) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.TelemetrySDKName("opentelemetry"),
		semconv.TelemetrySDKLanguageGo,
		semconv.TelemetrySDKVersion(sdk.Version()),
	), nil
}
