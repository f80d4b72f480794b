// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package filter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5labs/sdk-go/try"
	"github.com/z5labs/trellis"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/z5labs/trellis/filter"

// HandlerOption configures a [Handler].
type HandlerOption interface {
	ApplyHandlerOption(*HandlerOptions)
}

// HandlerOptions holds the configuration of a [Handler].
type HandlerOptions struct {
	errHandler ErrorHandler
	meters     metric.MeterProvider
}

type handlerOptionFunc func(*HandlerOptions)

func (f handlerOptionFunc) ApplyHandlerOption(ho *HandlerOptions) {
	f(ho)
}

// OnError registers the [ErrorHandler] for every failed request.
func OnError(eh ErrorHandler) HandlerOption {
	return handlerOptionFunc(func(ho *HandlerOptions) {
		ho.errHandler = eh
	})
}

// MeterProvider sets where request metrics are recorded. The global
// provider is used by default.
func MeterProvider(mp metric.MeterProvider) HandlerOption {
	return handlerOptionFunc(func(ho *HandlerOptions) {
		ho.meters = mp
	})
}

type handler struct {
	tracer     trace.Tracer
	log        *slog.Logger
	errHandler ErrorHandler
	filter     Filter

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// Handler serves requests by running f against a fresh [Context] for
// each one and writing the resulting [Reply].
func Handler(f Filter, opts ...HandlerOption) http.Handler {
	ho := &HandlerOptions{
		errHandler: DefaultErrorHandler(trellis.LogHandler(instrumentationName)),
		meters:     otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt.ApplyHandlerOption(ho)
	}

	h := &handler{
		tracer:     otel.Tracer(instrumentationName),
		log:        trellis.Logger(instrumentationName),
		errHandler: ho.errHandler,
		filter:     f,
	}

	meter := ho.meters.Meter(instrumentationName)

	var err error
	h.requests, err = meter.Int64Counter(
		"filter.requests",
		metric.WithDescription("Requests served by a filter, by outcome."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		h.log.Error("failed to create request counter", slog.Any("error", err))
	}

	h.duration, err = meter.Float64Histogram(
		"filter.duration",
		metric.WithDescription("Time spent applying a filter and writing its reply."),
		metric.WithUnit("s"),
	)
	if err != nil {
		h.log.Error("failed to create duration histogram", slog.Any("error", err))
	}

	return h
}

const (
	outcomeReplied  = "replied"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

func (h *handler) record(ctx context.Context, start time.Time, err error) {
	outcome := outcomeReplied
	if err != nil {
		outcome = outcomeFailed
		if _, ok := AsRejection(err); ok {
			outcome = outcomeRejected
		}
	}

	attrs := metric.WithAttributes(attribute.String("filter.outcome", outcome))
	h.requests.Add(ctx, 1, attrs)
	h.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	spanCtx, span := h.tracer.Start(r.Context(), "filter.Handler")
	defer span.End()

	r = r.WithContext(spanCtx)
	start := time.Now()

	var err error
	defer func() {
		h.record(spanCtx, start, err)
		if err == nil {
			return
		}

		span.RecordError(err)
		if _, ok := AsRejection(err); !ok {
			span.SetStatus(codes.Error, err.Error())
		}
		h.errHandler.OnError(spanCtx, w, err)
	}()
	defer try.Recover(&err)

	c := NewContext(r)
	err = h.filter.Apply(c)
	if err != nil {
		return
	}

	reply := c.Reply()
	if reply == nil {
		err = NotFound()
		return
	}

	span.SetAttributes(attribute.Int("filter.values", len(c.Values())))

	h.writeReply(c, w, reply)
}

// Headers may already be sent once a reply fails so the failure is only logged.
func (h *handler) writeReply(c *Context, w http.ResponseWriter, reply Reply) {
	spanCtx, span := h.tracer.Start(c.Context(), "filter.writeReply")
	defer span.End()

	err := reply.WriteResponse(spanCtx, w)
	if err != nil {
		span.RecordError(err)
		h.log.ErrorContext(spanCtx, "failed to write reply", slog.Any("error", err))
	}
}
