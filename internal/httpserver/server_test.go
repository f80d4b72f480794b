// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type failingListener struct {
	err error
}

func (l failingListener) Accept() (net.Conn, error) {
	return nil, l.err
}

func (failingListener) Close() error {
	return nil
}

func (failingListener) Addr() net.Addr {
	return &net.TCPAddr{}
}

func TestApp_Run(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the listener fails to accept a connection", func(t *testing.T) {
			acceptErr := errors.New("accept failed")

			a := NewApp(failingListener{err: acceptErr}, http.NotFoundHandler())

			err := a.Run(t.Context())
			require.ErrorIs(t, err, acceptErr)
		})
	})

	t.Run("will stop without an error", func(t *testing.T) {
		t.Run("if the context is cancelled before running", func(t *testing.T) {
			ls, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(t.Context())
			cancel()

			a := NewApp(ls, http.NotFoundHandler())
			require.NoError(t, a.Run(ctx))
		})

		t.Run("if the context is cancelled while serving", func(t *testing.T) {
			ls, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer cancel()
				io.WriteString(w, "pong")
			})

			a := NewApp(
				ls,
				h,
				Timeouts(time.Second, 5*time.Second, 5*time.Second, time.Minute),
				ShutdownTimeout(time.Second),
			)

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				errCh <- a.Run(ctx)
			}()

			resp, err := http.Get(fmt.Sprintf("http://%s/ping", a.Addr()))
			require.NoError(t, err)
			defer resp.Body.Close()

			b, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, "pong", string(b))

			require.NoError(t, <-errCh)
		})
	})
}
