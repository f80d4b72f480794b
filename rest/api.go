// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/z5labs/trellis"
	"github.com/z5labs/trellis/filter"
	"github.com/z5labs/trellis/health"
	"github.com/z5labs/trellis/openapi"
	"github.com/z5labs/trellis/route"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/z5labs/trellis/rest"

// ApiOptions holds the values used when constructing an [Api].
type ApiOptions struct {
	description string
	readiness   health.Monitor
	liveness    health.Monitor
	handler     []filter.HandlerOption
	middleware  []func(http.Handler) http.Handler
}

// ApiOption configures an [Api].
type ApiOption interface {
	ApplyApiOption(*ApiOptions)
}

type apiOptionFunc func(*ApiOptions)

func (f apiOptionFunc) ApplyApiOption(ao *ApiOptions) {
	f(ao)
}

// Description sets the description of the generated OpenAPI document.
func Description(desc string) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.description = desc
	})
}

// Readiness reports m at GET /health/readiness. Readiness tells an
// orchestrator whether traffic should be routed to the service.
//
// See [Kubernetes health checks] for more details.
//
// [Kubernetes health checks]: https://kubernetes.io/docs/concepts/configuration/liveness-readiness-startup-probes/
func Readiness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.readiness = m
	})
}

// Liveness reports m at GET /health/liveness. Liveness tells an
// orchestrator whether the service should be restarted.
func Liveness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.liveness = m
	})
}

// OnError replaces the [ProblemDetailsErrorHandler] used for failed and
// rejected requests.
func OnError(eh filter.ErrorHandler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.handler = append(ao.handler, filter.OnError(eh))
	})
}

// Meters records request metrics with mp instead of the global provider.
func Meters(mp metric.MeterProvider) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.handler = append(ao.handler, filter.MeterProvider(mp))
	})
}

// Middleware wraps every endpoint of the [Api], including its health and
// documentation endpoints. Middlewares apply after [RequestID].
func Middleware(mws ...func(http.Handler) http.Handler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.middleware = append(ao.middleware, mws...)
	})
}

// Api is an [http.Handler] serving a set of [route.Service]s alongside the
// OpenAPI document describing them.
//
// Every Api provides:
//   - the OpenAPI document at GET /openapi.json and GET /openapi.yaml
//   - a liveness check at GET /health/liveness
//   - a readiness check at GET /health/readiness
//
// Every other request is matched against the services.
type Api struct {
	router *chi.Mux
	spec   *openapi.Specification
}

// NewApi compiles services and documents them under the given title and
// version. Any route failing to compile is reported and no Api is returned.
func NewApi(title, version string, services []route.Service, opts ...ApiOption) (*Api, error) {
	log := trellis.Logger(instrumentationName)

	ao := &ApiOptions{
		readiness: health.Always,
		liveness:  health.Always,
		handler: []filter.HandlerOption{
			filter.OnError(NewProblemDetailsErrorHandler()),
		},
	}
	for _, opt := range opts {
		opt.ApplyApiOption(ao)
	}

	f, spec, err := route.Document(
		openapi.Info{
			Title:       title,
			Version:     version,
			Description: ao.description,
		},
		services...,
	)
	if err != nil {
		return nil, err
	}

	jsonDoc, err := spec.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("render openapi document as json: %w", err)
	}
	yamlDoc, err := spec.YAML()
	if err != nil {
		return nil, fmt.Errorf("render openapi document as yaml: %w", err)
	}

	mux := chi.NewMux()
	mux.Use(RequestID)
	mux.Use(ao.middleware...)

	mux.Get("/openapi.json", serveDocument(log, "application/json", jsonDoc))
	mux.Get("/openapi.yaml", serveDocument(log, "application/yaml", yamlDoc))
	mux.Method(http.MethodGet, "/health/liveness", healthHandler(log, ao.liveness))
	mux.Method(http.MethodGet, "/health/readiness", healthHandler(log, ao.readiness))

	routes := filter.Handler(f, ao.handler...)
	mux.Handle("/", routes)
	mux.Handle("/*", routes)

	log.Info(
		"initialized api",
		slog.String("title", title),
		slog.String("version", version),
		slog.Int("paths", len(spec.Paths())),
	)

	return &Api{
		router: mux,
		spec:   spec,
	}, nil
}

// Spec returns the frozen document served by the Api.
func (api *Api) Spec() *openapi.Specification {
	return api.spec
}

// ServeHTTP implements the [http.Handler] interface.
func (api *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

func serveDocument(log *slog.Logger, contentType string, doc []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, err := w.Write(doc)
		if err == nil {
			return
		}
		log.ErrorContext(
			r.Context(),
			"failed to write openapi document",
			slog.String("content_type", contentType),
			slog.Any("error", err),
		)
	}
}
