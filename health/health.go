// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health reports whether a service is alive and ready to serve routes.
package health

import (
	"context"
	"errors"
	"sync/atomic"
)

// Monitor reports the current health of something a service depends on.
type Monitor interface {
	Healthy(context.Context) (bool, error)
}

// MonitorFunc adapts a func to a [Monitor].
type MonitorFunc func(context.Context) (bool, error)

// Healthy implements [Monitor].
func (f MonitorFunc) Healthy(ctx context.Context) (bool, error) {
	return f(ctx)
}

// Always is a [Monitor] which is always healthy.
var Always Monitor = MonitorFunc(func(context.Context) (bool, error) {
	return true, nil
})

// Binary is a [Monitor] toggled between healthy and unhealthy. The zero
// value is unhealthy. It is safe for concurrent use.
type Binary struct {
	healthy atomic.Bool
}

// MarkHealthy flips b to healthy.
func (b *Binary) MarkHealthy() {
	b.healthy.Store(true)
}

// MarkUnhealthy flips b to unhealthy.
func (b *Binary) MarkUnhealthy() {
	b.healthy.Store(false)
}

// Healthy implements [Monitor].
func (b *Binary) Healthy(context.Context) (bool, error) {
	return b.healthy.Load(), nil
}

// AndMonitor is healthy only while all of its monitors are. It stops at the
// first unhealthy or failing monitor.
type AndMonitor []Monitor

// And combines ms into an [AndMonitor].
func And(ms ...Monitor) AndMonitor {
	return AndMonitor(ms)
}

// Healthy implements [Monitor].
func (am AndMonitor) Healthy(ctx context.Context) (bool, error) {
	for _, m := range am {
		ok, err := m.Healthy(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// OrMonitor is healthy as soon as one of its monitors is. Failures of the
// monitors checked before are joined only when none is healthy.
type OrMonitor []Monitor

// Or combines ms into an [OrMonitor].
func Or(ms ...Monitor) OrMonitor {
	return OrMonitor(ms)
}

// Healthy implements [Monitor].
func (om OrMonitor) Healthy(ctx context.Context) (bool, error) {
	var errs []error
	for _, m := range om {
		ok, err := m.Healthy(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}
