// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package concurrent

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOr(t *testing.T) {
	t.Run("will compute a missing value once", func(t *testing.T) {
		c := NewCache[string, int]()

		var calls atomic.Int64
		var wg conc.WaitGroup
		for range 16 {
			wg.Go(func() {
				v, err := c.GetOr("a", func() (int, error) {
					calls.Add(1)
					return 1, nil
				})
				if err != nil || v != 1 {
					panic("unexpected cache result")
				}
			})
		}
		wg.Wait()

		require.Equal(t, int64(1), calls.Load())
		require.Equal(t, 1, c.Len())

		v, ok := c.Get("a")
		require.True(t, ok)
		require.Equal(t, 1, v)
	})

	t.Run("will not cache a failed computation", func(t *testing.T) {
		c := NewCache[string, int]()

		fail := errors.New("failed")
		_, err := c.GetOr("a", func() (int, error) {
			return 0, fail
		})
		require.ErrorIs(t, err, fail)

		_, ok := c.Get("a")
		require.False(t, ok)
		require.Zero(t, c.Len())
	})
}
