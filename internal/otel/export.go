// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
)

// slogExporter writes log records through a [slog.Handler].
type slogExporter struct {
	handler slog.Handler
}

func (e *slogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	for _, record := range records {
		err := e.handler.Handle(ctx, toSlogRecord(record))
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *slogExporter) ForceFlush(context.Context) error { return nil }

func (e *slogExporter) Shutdown(context.Context) error { return nil }

func toSlogRecord(record sdklog.Record) slog.Record {
	// otel severities are offset by 9 from slog levels and spaced equally
	const offset = log.SeverityInfo - log.Severity(slog.LevelInfo)

	sr := slog.NewRecord(
		record.Timestamp(),
		slog.Level(record.Severity()-offset),
		record.Body().AsString(),
		0,
	)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		sr.AddAttrs(slog.Attr{Key: kv.Key, Value: toSlogValue(kv.Value)})
		return true
	})
	if record.TraceID().IsValid() {
		sr.AddAttrs(slog.Group(
			"otel",
			slog.String("trace_id", record.TraceID().String()),
			slog.String("span_id", record.SpanID().String()),
		))
	}
	return sr
}

func toSlogValue(v log.Value) slog.Value {
	switch v.Kind() {
	case log.KindBool:
		return slog.BoolValue(v.AsBool())
	case log.KindInt64:
		return slog.Int64Value(v.AsInt64())
	case log.KindFloat64:
		return slog.Float64Value(v.AsFloat64())
	case log.KindString:
		return slog.StringValue(v.AsString())
	case log.KindBytes:
		return slog.AnyValue(v.AsBytes())
	case log.KindSlice:
		vs := v.AsSlice()
		out := make([]any, len(vs))
		for i, item := range vs {
			out[i] = toSlogValue(item).Any()
		}
		return slog.AnyValue(out)
	case log.KindMap:
		kvs := v.AsMap()
		attrs := make([]slog.Attr, 0, len(kvs))
		for _, kv := range kvs {
			attrs = append(attrs, slog.Attr{Key: kv.Key, Value: toSlogValue(kv.Value)})
		}
		return slog.GroupValue(attrs...)
	default:
		return slog.StringValue(v.String())
	}
}

type noopSpanExporter struct{}

func (noopSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }

func (noopSpanExporter) Shutdown(context.Context) error { return nil }

type noopMetricExporter struct{}

func (noopMetricExporter) Aggregation(kind metric.InstrumentKind) metric.Aggregation {
	return metric.DefaultAggregationSelector(kind)
}

func (noopMetricExporter) Temporality(kind metric.InstrumentKind) metricdata.Temporality {
	return metric.DefaultTemporalitySelector(kind)
}

func (noopMetricExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }

func (noopMetricExporter) ForceFlush(context.Context) error { return nil }

func (noopMetricExporter) Shutdown(context.Context) error { return nil }
