// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel initializes the OpenTelemetry SDK from [config.OTel].
package otel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/z5labs/trellis/concurrent"
	"github.com/z5labs/trellis/config"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// UnknownOTLPConnTypeError is returned for an unsupported [config.OTLPConnType].
type UnknownOTLPConnTypeError struct {
	Type config.OTLPConnType
}

func (e UnknownOTLPConnTypeError) Error() string {
	return fmt.Sprintf("unknown otlp conn type: %q", e.Type)
}

// UnknownExporterTypeError is returned for an unsupported [config.ExporterType].
type UnknownExporterTypeError struct {
	Type config.ExporterType
}

func (e UnknownExporterTypeError) Error() string {
	return fmt.Sprintf("unknown exporter type: %q", e.Type)
}

// UnknownProcessorTypeError is returned for an unsupported [config.ProcessorType].
type UnknownProcessorTypeError struct {
	Type config.ProcessorType
}

func (e UnknownProcessorTypeError) Error() string {
	return fmt.Sprintf("unknown processor type: %q", e.Type)
}

// Shutdown flushes and stops every provider installed by [Initialize].
type Shutdown func(context.Context) error

// Initialize builds trace, meter and logger providers from cfg and installs
// them globally. Nothing is installed if any of them fails to build.
func Initialize(ctx context.Context, cfg config.OTel) (Shutdown, error) {
	r, err := detectResource(ctx, cfg.Resource)
	if err != nil {
		return nil, err
	}

	conns := concurrent.NewCache[string, *grpc.ClientConn]()

	tp, err := newTracerProvider(ctx, cfg.Trace, r, conns)
	if err != nil {
		return nil, err
	}

	mp, err := newMeterProvider(ctx, cfg.Metric, r, conns)
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx))
	}

	lp, err := newLoggerProvider(ctx, cfg.Log, r, conns)
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetMeterProvider(mp)
	global.SetLoggerProvider(lp)

	err = runtime.Start(
		runtime.WithMeterProvider(mp),
		runtime.WithMinimumReadMemStatsInterval(time.Second),
	)
	if err != nil {
		return nil, err
	}

	var once sync.Once
	var shutdownErr error
	return func(ctx context.Context) error {
		once.Do(func() {
			shutdownErr = errors.Join(
				tp.Shutdown(ctx),
				mp.Shutdown(ctx),
				lp.Shutdown(ctx),
			)
		})
		return shutdownErr
	}, nil
}

func clientConn(cfg config.OTLP, conns *concurrent.Cache[string, *grpc.ClientConn]) (*grpc.ClientConn, error) {
	return conns.GetOr(cfg.Target, func() (*grpc.ClientConn, error) {
		return grpc.NewClient(
			cfg.Target,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
	})
}

func newTracerProvider(ctx context.Context, cfg config.Trace, r *resource.Resource, conns *concurrent.Cache[string, *grpc.ClientConn]) (*trace.TracerProvider, error) {
	exp, err := newSpanExporter(ctx, cfg.Exporter, conns)
	if err != nil {
		return nil, err
	}

	var sp trace.SpanProcessor
	switch cfg.Processor.Type {
	case config.SimpleProcessorType:
		sp = trace.NewSimpleSpanProcessor(exp)
	case config.BatchProcessorType:
		sp = trace.NewBatchSpanProcessor(
			exp,
			trace.WithBatchTimeout(cfg.Processor.Batch.ExportInterval),
			trace.WithMaxExportBatchSize(cfg.Processor.Batch.MaxSize),
		)
	default:
		return nil, UnknownProcessorTypeError{Type: cfg.Processor.Type}
	}

	tp := trace.NewTracerProvider(
		trace.WithSpanProcessor(sp),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplingRatio))),
		trace.WithResource(r),
	)
	return tp, nil
}

func newSpanExporter(ctx context.Context, cfg config.Exporter, conns *concurrent.Cache[string, *grpc.ClientConn]) (trace.SpanExporter, error) {
	switch cfg.Type {
	case config.NoExporterType:
		return noopSpanExporter{}, nil
	case config.OTLPExporterType:
	default:
		return nil, UnknownExporterTypeError{Type: cfg.Type}
	}

	switch cfg.OTLP.Type {
	case config.OTLPGRPC:
		cc, err := clientConn(cfg.OTLP, conns)
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(cc))
	case config.OTLPHTTP:
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.OTLP.Target))
	default:
		return nil, UnknownOTLPConnTypeError{Type: cfg.OTLP.Type}
	}
}

func newMeterProvider(ctx context.Context, cfg config.Metric, r *resource.Resource, conns *concurrent.Cache[string, *grpc.ClientConn]) (*metric.MeterProvider, error) {
	exp, err := newMetricExporter(ctx, cfg.Exporter, conns)
	if err != nil {
		return nil, err
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = time.Minute
	}

	reader := metric.NewPeriodicReader(
		exp,
		metric.WithInterval(interval),
		metric.WithProducer(runtime.NewProducer()),
	)

	mp := metric.NewMeterProvider(
		metric.WithReader(reader),
		metric.WithResource(r),
	)
	return mp, nil
}

func newMetricExporter(ctx context.Context, cfg config.Exporter, conns *concurrent.Cache[string, *grpc.ClientConn]) (metric.Exporter, error) {
	switch cfg.Type {
	case config.NoExporterType:
		return noopMetricExporter{}, nil
	case config.OTLPExporterType:
	default:
		return nil, UnknownExporterTypeError{Type: cfg.Type}
	}

	switch cfg.OTLP.Type {
	case config.OTLPGRPC:
		cc, err := clientConn(cfg.OTLP, conns)
		if err != nil {
			return nil, err
		}
		return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(cc))
	case config.OTLPHTTP:
		return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(cfg.OTLP.Target))
	default:
		return nil, UnknownOTLPConnTypeError{Type: cfg.OTLP.Type}
	}
}

func newLoggerProvider(ctx context.Context, cfg config.Log, r *resource.Resource, conns *concurrent.Cache[string, *grpc.ClientConn]) (*log.LoggerProvider, error) {
	exp, err := newLogExporter(ctx, cfg.Exporter, conns)
	if err != nil {
		return nil, err
	}

	var lp log.Processor
	switch cfg.Processor.Type {
	case config.SimpleProcessorType:
		lp = log.NewSimpleProcessor(exp)
	case config.BatchProcessorType:
		lp = log.NewBatchProcessor(
			exp,
			log.WithExportInterval(cfg.Processor.Batch.ExportInterval),
			log.WithExportMaxBatchSize(cfg.Processor.Batch.MaxSize),
		)
	default:
		return nil, UnknownProcessorTypeError{Type: cfg.Processor.Type}
	}

	provider := log.NewLoggerProvider(
		log.WithProcessor(newFilteringProcessor(lp, cfg.Levels)),
		log.WithResource(r),
	)
	return provider, nil
}

func newLogExporter(ctx context.Context, cfg config.Exporter, conns *concurrent.Cache[string, *grpc.ClientConn]) (log.Exporter, error) {
	switch cfg.Type {
	case config.NoExporterType:
		return &slogExporter{
			handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		}, nil
	case config.OTLPExporterType:
	default:
		return nil, UnknownExporterTypeError{Type: cfg.Type}
	}

	switch cfg.OTLP.Type {
	case config.OTLPGRPC:
		cc, err := clientConn(cfg.OTLP, conns)
		if err != nil {
			return nil, err
		}
		return otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(cc))
	case config.OTLPHTTP:
		return otlploghttp.New(ctx, otlploghttp.WithEndpoint(cfg.OTLP.Target))
	default:
		return nil, UnknownOTLPConnTypeError{Type: cfg.OTLP.Type}
	}
}
