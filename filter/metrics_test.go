// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package filter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHandler_metrics(t *testing.T) {
	t.Run("will count requests by outcome", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

		h := Handler(sumFilter(), MeterProvider(mp))
		for _, target := range []string{"/sum/1/2", "/sum/3/4", "/product/1/2"} {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		}

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(t.Context(), &rm))
		require.Len(t, rm.ScopeMetrics, 1)
		require.Equal(t, instrumentationName, rm.ScopeMetrics[0].Scope.Name)

		counts := make(map[string]int64)
		var durations uint64
		for _, m := range rm.ScopeMetrics[0].Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					outcome, ok := dp.Attributes.Value(attribute.Key("filter.outcome"))
					require.True(t, ok)
					counts[outcome.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					durations += dp.Count
				}
			}
		}

		require.Equal(t, map[string]int64{
			outcomeReplied:  2,
			outcomeRejected: 1,
		}, counts)
		require.Equal(t, uint64(3), durations)
	})
}
