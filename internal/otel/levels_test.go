// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/log/logtest"
)

type emitted struct {
	name     string
	severity log.Severity
}

type recordingProcessor struct {
	names []emitted
}

func (p *recordingProcessor) OnEmit(_ context.Context, record *sdklog.Record) error {
	p.names = append(p.names, emitted{
		name:     record.InstrumentationScope().Name,
		severity: record.Severity(),
	})
	return nil
}

func (p *recordingProcessor) Shutdown(context.Context) error { return nil }

func (p *recordingProcessor) ForceFlush(context.Context) error { return nil }

func emit(t *testing.T, p sdklog.Processor, name string, sev log.Severity) {
	t.Helper()

	record := logtest.RecordFactory{
		Severity:             sev,
		InstrumentationScope: &instrumentation.Scope{Name: name},
	}.NewRecord()
	require.NoError(t, p.OnEmit(t.Context(), &record))
}

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]log.Severity{
		"debug":   log.SeverityDebug,
		"INFO":    log.SeverityInfo,
		"warn":    log.SeverityWarn,
		"Warning": log.SeverityWarn,
		"error":   log.SeverityError,
		"verbose": log.SeverityDebug,
		"":        log.SeverityDebug,
	}

	for input, expected := range testCases {
		t.Run("will parse "+input, func(t *testing.T) {
			require.Equal(t, expected, parseLogLevel(input))
		})
	}
}

func TestLevelProcessor_OnEmit(t *testing.T) {
	t.Run("will drop records below the configured level", func(t *testing.T) {
		inner := &recordingProcessor{}
		p := newFilteringProcessor(inner, map[string]string{
			"github.com/z5labs/trellis": "warn",
		})

		emit(t, p, "github.com/z5labs/trellis", log.SeverityInfo)
		emit(t, p, "github.com/z5labs/trellis", log.SeverityWarn)
		emit(t, p, "github.com/z5labs/trellis", log.SeverityError)

		require.Equal(t, []emitted{
			{name: "github.com/z5labs/trellis", severity: log.SeverityWarn},
			{name: "github.com/z5labs/trellis", severity: log.SeverityError},
		}, inner.names)
	})

	t.Run("will match logger names by prefix", func(t *testing.T) {
		inner := &recordingProcessor{}
		p := newFilteringProcessor(inner, map[string]string{
			"github.com/z5labs/trellis": "error",
		})

		emit(t, p, "github.com/z5labs/trellis/filter", log.SeverityWarn)

		require.Empty(t, inner.names)
	})

	t.Run("will prefer the longest matching prefix", func(t *testing.T) {
		inner := &recordingProcessor{}
		p := newFilteringProcessor(inner, map[string]string{
			"github.com/z5labs":               "error",
			"github.com/z5labs/trellis/route": "debug",
		})

		emit(t, p, "github.com/z5labs/trellis/route", log.SeverityDebug)
		emit(t, p, "github.com/z5labs/trellis/filter", log.SeverityDebug)

		require.Equal(t, []emitted{
			{name: "github.com/z5labs/trellis/route", severity: log.SeverityDebug},
		}, inner.names)
	})

	t.Run("will pass through records of unconfigured loggers", func(t *testing.T) {
		inner := &recordingProcessor{}
		p := newFilteringProcessor(inner, nil)

		emit(t, p, "other", log.SeverityDebug)

		require.Equal(t, []emitted{{name: "other", severity: log.SeverityDebug}}, inner.names)
	})
}
