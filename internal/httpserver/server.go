// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httpserver runs an [http.Server] until its context is cancelled.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options configures the underlying [http.Server].
type Options struct {
	errorLog          slog.Handler
	readHeaderTimeout time.Duration
	readTimeout       time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
}

// Option configures an [App].
type Option interface {
	ApplyOption(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) ApplyOption(o *Options) {
	f(o)
}

// ErrorLog routes errors logged by the [http.Server] to h.
func ErrorLog(h slog.Handler) Option {
	return optionFunc(func(o *Options) {
		o.errorLog = h
	})
}

// Timeouts sets the read header, read, write and idle timeouts of the
// server. A zero duration leaves the corresponding timeout disabled.
func Timeouts(readHeader, read, write, idle time.Duration) Option {
	return optionFunc(func(o *Options) {
		o.readHeaderTimeout = readHeader
		o.readTimeout = read
		o.writeTimeout = write
		o.idleTimeout = idle
	})
}

// ShutdownTimeout bounds how long in-flight requests are waited on once
// the server begins shutting down. Non-positive durations are ignored.
func ShutdownTimeout(d time.Duration) Option {
	return optionFunc(func(o *Options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	})
}

// App serves HTTP requests accepted from a [net.Listener].
type App struct {
	ls              net.Listener
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewApp initializes an [App].
func NewApp(ls net.Listener, h http.Handler, opts ...Option) *App {
	o := &Options{
		errorLog:        slog.DiscardHandler,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt.ApplyOption(o)
	}

	return &App{
		ls:              ls,
		shutdownTimeout: o.shutdownTimeout,
		server: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: o.readHeaderTimeout,
			ReadTimeout:       o.readTimeout,
			WriteTimeout:      o.writeTimeout,
			IdleTimeout:       o.idleTimeout,
			ErrorLog:          slog.NewLogLogger(o.errorLog, slog.LevelError),
		},
	}
}

// Addr returns the address the server accepts connections on.
func (a *App) Addr() net.Addr {
	return a.ls.Addr()
}

// Run serves requests until ctx is cancelled or the listener fails.
func (a *App) Run(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.server.Serve(a.ls)
	})
	eg.Go(func() error {
		<-egCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(egCtx), a.shutdownTimeout)
		defer cancel()

		return a.server.Shutdown(shutdownCtx)
	})

	err := eg.Wait()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
