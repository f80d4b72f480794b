// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package trellis

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/z5labs/trellis/config"
	"github.com/z5labs/trellis/internal/otel"

	bedrockcfg "github.com/z5labs/bedrock/config"
	"github.com/z5labs/bedrock/lifecycle"
)

// ConfigSource standardizes the template for configuration of trellis
// services. The [io.Reader] is expected to be YAML with support for Go
// templating. Two template functions are available:
//   - env - substitutes an environment variable, nil if unset
//   - default - define a default value in case the original value is nil
func ConfigSource(r io.Reader) bedrockcfg.Source {
	return bedrockcfg.FromYaml(
		bedrockcfg.RenderTextTemplate(
			r,
			bedrockcfg.TemplateFunc("env", func(key string) any {
				v, ok := os.LookupEnv(key)
				if ok {
					return v
				}
				return nil
			}),
			bedrockcfg.TemplateFunc("default", func(def, v any) any {
				if v == nil {
					return def
				}
				return v
			}),
		),
	)
}

//go:embed default_config.yaml
var defaultConfig []byte

// DefaultConfig returns the config source backing the zero [Config] values.
func DefaultConfig() bedrockcfg.Source {
	return ConfigSource(bytes.NewReader(defaultConfig))
}

// ReadConfig layers srcs, later ones overriding earlier ones, and
// unmarshals the result into a T.
func ReadConfig[T any](srcs ...bedrockcfg.Source) (T, error) {
	var cfg T
	m, err := bedrockcfg.Read(bedrockcfg.MultiSource(srcs...))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	err = m.Unmarshal(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Config defines the common configuration for trellis based services.
type Config struct {
	OpenApi OpenApi     `config:"openapi"`
	HTTP    HTTP        `config:"http"`
	OTel    config.OTel `config:"otel"`
}

// OpenApi configures the info section of the generated document.
type OpenApi struct {
	Title       string `config:"title"`
	Version     string `config:"version"`
	Description string `config:"description"`
}

// HTTP configures the listener and server.
type HTTP struct {
	Port              uint          `config:"port"`
	ReadHeaderTimeout time.Duration `config:"read_header_timeout"`
	ReadTimeout       time.Duration `config:"read_timeout"`
	WriteTimeout      time.Duration `config:"write_timeout"`
	IdleTimeout       time.Duration `config:"idle_timeout"`
	ShutdownTimeout   time.Duration `config:"shutdown_timeout"`
}

// Listener opens a TCP listener on the configured port.
func (h HTTP) Listener(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", h.Port))
}

// InitializeOTel implements the [appbuilder.OTelInitializer] interface.
// The providers are flushed and shut down after the app has run, if ctx
// carries a [lifecycle.Context].
//
// [appbuilder.OTelInitializer]: https://pkg.go.dev/github.com/z5labs/bedrock/appbuilder#OTelInitializer
func (cfg Config) InitializeOTel(ctx context.Context) error {
	shutdown, err := otel.Initialize(ctx, cfg.OTel)
	if err != nil {
		return err
	}

	lc, ok := lifecycle.FromContext(ctx)
	if !ok {
		return nil
	}
	lc.OnPostRun(lifecycle.HookFunc(shutdown))
	return nil
}
