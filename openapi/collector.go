// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"slices"
	"strings"
)

type frame struct {
	prefix string
	tags   []string
}

// Collector gathers documentation while routes are being built.
//
// A Collector is either active, between [Collector.Begin] and
// [Collector.End], or inactive. While inactive every recording method is a
// no-op, which is also true for a nil *Collector, so route construction
// never needs to know if documentation is being collected.
//
// Scopes form a stack of path prefixes and tags which are applied to
// every operation recorded within them. A Collector is not safe for
// concurrent use.
type Collector struct {
	spec   *Specification
	frames []frame
}

// NewCollector returns an inactive [Collector].
func NewCollector() *Collector {
	return &Collector{}
}

// Active reports whether c is collecting documentation.
func (c *Collector) Active() bool {
	return c != nil && len(c.frames) > 0
}

// Begin starts collecting documentation into a new [Specification].
func (c *Collector) Begin(info Info) error {
	if c.Active() {
		return ErrCollectorActive
	}

	c.spec = NewSpecification(info)
	c.frames = append(c.frames[:0], frame{})
	return nil
}

// End stops collecting and returns the frozen [Specification]. It fails
// with [ErrCollectorInScope] if called from within [Collector.Scope].
func (c *Collector) End() (*Specification, error) {
	if !c.Active() {
		return nil, ErrCollectorInactive
	}
	if len(c.frames) > 1 {
		return nil, ErrCollectorInScope
	}

	spec := c.spec
	spec.freeze()

	c.spec = nil
	c.frames = nil
	return spec, nil
}

// Prefix returns the path prefix of the innermost scope.
func (c *Collector) Prefix() string {
	if !c.Active() {
		return ""
	}
	return c.top().prefix
}

func (c *Collector) top() frame {
	return c.frames[len(c.frames)-1]
}

// Scope runs f within a nested scope whose prefix and tags extend those
// of the enclosing scope. The scope is always left once f returns,
// even if it fails or panics. An inactive Collector simply runs f.
func (c *Collector) Scope(prefix string, tags []string, f func() error) error {
	if !c.Active() {
		return f()
	}

	parent := c.top()
	depth := len(c.frames)
	c.frames = append(c.frames, frame{
		prefix: joinPath(parent.prefix, prefix),
		tags:   append(slices.Clip(parent.tags), tags...),
	})
	defer func() {
		if len(c.frames) >= depth {
			c.frames = c.frames[:depth]
		}
	}()

	return f()
}

// Record documents op for the path, relative to the current scope, and
// method. The tags of the current scope are appended to the op's own.
func (c *Collector) Record(path, method string, op Operation) error {
	if !c.Active() {
		return nil
	}

	fr := c.top()
	op = op.clone()
	op.Tags = append(op.Tags, fr.tags...)

	return c.spec.AddOperation(joinPath(fr.prefix, path), method, op)
}

// RecordComponents registers reusable schemas.
func (c *Collector) RecordComponents(comps *Components) error {
	if !c.Active() || comps == nil {
		return nil
	}
	return c.spec.AddComponents(comps)
}

func joinPath(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == "" || path == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}
