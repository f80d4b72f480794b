// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"log/slog"
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"github.com/z5labs/trellis"
	"github.com/z5labs/trellis/filter"
	"github.com/z5labs/trellis/openapi"
)

// Service is anything which builds into a [filter.Filter], documenting
// itself in the given [openapi.Collector] along the way. A nil or inactive
// Collector builds without documenting.
type Service interface {
	Build(*openapi.Collector) (filter.Filter, error)
}

// Option configures a [Route].
type Option interface {
	ApplyOption(*Options)
}

// Options holds the configuration of a [Route].
type Options struct {
	params      []Param
	summary     string
	description string
	tags        []string
	operationID string
	deprecated  bool
	responses   []response
}

type response struct {
	status      string
	description string
	typ         reflect.Type
}

type optionFunc func(*Options)

func (f optionFunc) ApplyOption(o *Options) {
	f(o)
}

// Summary sets the operation summary.
func Summary(s string) Option {
	return optionFunc(func(o *Options) {
		o.summary = s
	})
}

// Description sets the operation description.
func Description(s string) Option {
	return optionFunc(func(o *Options) {
		o.description = s
	})
}

// Tags appends tags to the operation. Tags of enclosing routers follow them.
func Tags(tags ...string) Option {
	return optionFunc(func(o *Options) {
		o.tags = append(o.tags, tags...)
	})
}

// OperationID overrides the operation id, which defaults to the name of
// the handler func.
func OperationID(id string) Option {
	return optionFunc(func(o *Options) {
		o.operationID = id
	})
}

// Deprecated marks the operation as deprecated.
func Deprecated() Option {
	return optionFunc(func(o *Options) {
		o.deprecated = true
	})
}

// Response documents an additional response whose JSON body is a T.
func Response[T any](status, description string) Option {
	return optionFunc(func(o *Options) {
		o.responses = append(o.responses, response{
			status:      status,
			description: description,
			typ:         reflect.TypeFor[T](),
		})
	})
}

// EmptyResponse documents an additional response without a body.
func EmptyResponse(status, description string) Option {
	return optionFunc(func(o *Options) {
		o.responses = append(o.responses, response{
			status:      status,
			description: description,
		})
	})
}

// Route is a single handler served at a path template for one method.
type Route struct {
	method   string
	template string
	handler  reflect.Value
	opts     Options
	log      *slog.Logger
}

// New returns a [Route] calling handler, a func, for requests with the
// given method whose path matches template. Params, given as options,
// declare how each handler argument is extracted.
func New(method, template string, handler any, opts ...Option) *Route {
	r := &Route{
		method:   strings.ToUpper(method),
		template: template,
		handler:  reflect.ValueOf(handler),
		log:      trellis.Logger("github.com/z5labs/trellis/route"),
	}
	for _, opt := range opts {
		opt.ApplyOption(&r.opts)
	}
	return r
}

// Get is shorthand for [New] with [http.MethodGet]. It also serves HEAD.
func Get(template string, handler any, opts ...Option) *Route {
	return New(http.MethodGet, template, handler, opts...)
}

// Post is shorthand for [New] with [http.MethodPost].
func Post(template string, handler any, opts ...Option) *Route {
	return New(http.MethodPost, template, handler, opts...)
}

// Put is shorthand for [New] with [http.MethodPut].
func Put(template string, handler any, opts ...Option) *Route {
	return New(http.MethodPut, template, handler, opts...)
}

// Patch is shorthand for [New] with [http.MethodPatch].
func Patch(template string, handler any, opts ...Option) *Route {
	return New(http.MethodPatch, template, handler, opts...)
}

// Delete is shorthand for [New] with [http.MethodDelete].
func Delete(template string, handler any, opts ...Option) *Route {
	return New(http.MethodDelete, template, handler, opts...)
}

// Build implements [Service].
func (r *Route) Build(c *openapi.Collector) (filter.Filter, error) {
	f, err := r.build(c)
	if err != nil {
		return nil, &BuildError{
			Method:  r.method,
			Path:    c.Prefix() + r.template,
			Handler: handlerName(r.handler),
			Cause:   err,
		}
	}
	return f, nil
}

func (r *Route) build(c *openapi.Collector) (filter.Filter, error) {
	if r.handler.Kind() != reflect.Func || r.handler.IsNil() {
		return nil, &SignatureMismatchError{Reason: "handler must be a non-nil func"}
	}

	pattern, err := Compile(r.template)
	if err != nil {
		return nil, err
	}

	slots, err := Slots(r.handler.Type(), r.opts.params)
	if err != nil {
		return nil, err
	}

	plan, err := Resolve(slots, pattern.Params())
	if err != nil {
		return nil, err
	}

	pipeline, err := Assemble(r.method, pattern, plan, r.handler)
	if err != nil {
		return nil, err
	}

	if c.Active() {
		err = r.record(c, pattern, plan)
		if err != nil {
			return nil, err
		}
	}
	return pipeline.Filter(), nil
}

func (r *Route) record(c *openapi.Collector, p Pattern, plan Plan) error {
	var comps openapi.Components
	op, err := r.document(plan, &comps)
	if err != nil {
		return err
	}

	err = c.RecordComponents(&comps)
	if err != nil {
		return err
	}

	err = c.Record(p.String(), r.method, op)
	if err != nil {
		return err
	}

	r.log.Debug(
		"recorded operation",
		slog.String("http.method", r.method),
		slog.String("http.route", c.Prefix()+p.String()),
		slog.String("operation.id", op.OperationID),
	)
	return nil
}

func handlerName(v reflect.Value) string {
	if v.Kind() != reflect.Func || v.IsNil() {
		return "<nil>"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return v.Type().String()
	}

	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
