// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type levelRule struct {
	prefix   string
	severity log.Severity
}

// levelProcessor drops records below the minimum severity configured for
// their logger name. Rules match by prefix, longest first. Loggers without
// a matching rule are never filtered.
type levelProcessor struct {
	sdklog.Processor

	rules []levelRule
}

func newFilteringProcessor(inner sdklog.Processor, levels map[string]string) *levelProcessor {
	rules := make([]levelRule, 0, len(levels))
	for name, level := range levels {
		rules = append(rules, levelRule{
			prefix:   name,
			severity: parseLogLevel(level),
		})
	}
	slices.SortFunc(rules, func(a, b levelRule) int {
		return cmp.Compare(len(b.prefix), len(a.prefix))
	})

	return &levelProcessor{
		Processor: inner,
		rules:     rules,
	}
}

// parseLogLevel maps a level name to a severity. Unknown names map to debug.
func parseLogLevel(level string) log.Severity {
	switch strings.ToLower(level) {
	case "info":
		return log.SeverityInfo
	case "warn", "warning":
		return log.SeverityWarn
	case "error":
		return log.SeverityError
	default:
		return log.SeverityDebug
	}
}

func (p *levelProcessor) OnEmit(ctx context.Context, record *sdklog.Record) error {
	floor, ok := p.minimum(record.InstrumentationScope().Name)
	if ok && record.Severity() < floor {
		return nil
	}
	return p.Processor.OnEmit(ctx, record)
}

func (p *levelProcessor) minimum(name string) (log.Severity, bool) {
	for _, rule := range p.rules {
		if strings.HasPrefix(name, rule.prefix) {
			return rule.severity, true
		}
	}
	return 0, false
}
