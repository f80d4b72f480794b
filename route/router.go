// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"errors"

	"github.com/z5labs/trellis/filter"
	"github.com/z5labs/trellis/openapi"
)

// RouterOption configures a [Group].
type RouterOption interface {
	ApplyRouterOption(*RouterOptions)
}

// RouterOptions holds the configuration of a [Group].
type RouterOptions struct {
	tags []string
}

type routerOptionFunc func(*RouterOptions)

func (f routerOptionFunc) ApplyRouterOption(ro *RouterOptions) {
	f(ro)
}

// WithTags tags every operation within the group, after their own tags.
func WithTags(tags ...string) RouterOption {
	return routerOptionFunc(func(ro *RouterOptions) {
		ro.tags = append(ro.tags, tags...)
	})
}

// Group serves a set of services below a common path prefix.
type Group struct {
	prefix   string
	services []Service
	tags     []string
}

// Router groups services below prefix. Groups nest, the prefixes and
// tags of enclosing groups apply to everything within them.
func Router(prefix string, services []Service, opts ...RouterOption) *Group {
	ro := &RouterOptions{}
	for _, opt := range opts {
		opt.ApplyRouterOption(ro)
	}
	return &Group{
		prefix:   prefix,
		services: services,
		tags:     ro.tags,
	}
}

// Build implements [Service]. Services are tried in order and the first
// one matching the request serves it.
func (g *Group) Build(c *openapi.Collector) (filter.Filter, error) {
	p, err := Compile(g.prefix)
	if err != nil {
		return nil, err
	}
	if len(p.Params()) > 0 {
		return nil, &MalformedTemplateError{
			Template: g.prefix,
			Reason:   "router prefixes can not declare parameters",
		}
	}

	prefix := p.String()
	if len(p.Segments) == 0 {
		prefix = ""
	}

	var fs []filter.Filter
	err = c.Scope(prefix, g.tags, func() error {
		fs, err = buildAll(c, g.services)
		return err
	})
	if err != nil {
		return nil, err
	}

	return filter.And(p.Prefix(nil), filter.Or(fs...)), nil
}

func buildAll(c *openapi.Collector, services []Service) ([]filter.Filter, error) {
	fs := make([]filter.Filter, 0, len(services))
	var errs []error
	for _, svc := range services {
		f, err := svc.Build(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fs = append(fs, f)
	}
	return fs, errors.Join(errs...)
}

// Build composes services into a single filter without documenting them.
func Build(services ...Service) (filter.Filter, error) {
	fs, err := buildAll(nil, services)
	if err != nil {
		return nil, err
	}
	return filter.Or(fs...), nil
}

// Document composes services into a single filter and documents every
// route within them.
func Document(info openapi.Info, services ...Service) (filter.Filter, *openapi.Specification, error) {
	c := openapi.NewCollector()
	err := c.Begin(info)
	if err != nil {
		return nil, nil, err
	}

	fs, err := buildAll(c, services)
	spec, endErr := c.End()
	if err := errors.Join(err, endErr); err != nil {
		return nil, nil, err
	}
	return filter.Or(fs...), spec, nil
}

// Must panics if err is non-nil.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
