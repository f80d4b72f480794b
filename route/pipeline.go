// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"fmt"
	"reflect"

	"github.com/z5labs/trellis/filter"
)

// Step is one stage of a [Pipeline].
type Step struct {
	Kind   Kind
	Name   string
	Type   reflect.Type
	Filter filter.Filter
}

// Pipeline is the ordered chain of filters serving a single route.
type Pipeline struct {
	Steps []Step
}

// Assemble lays out the pipeline for a route: the path is matched and its
// parameters extracted, then the method is matched, then every other
// argument is extracted in declaration order and finally the handler is
// called with its arguments back in declaration order.
func Assemble(method string, p Pattern, plan Plan, handler reflect.Value) (Pipeline, error) {
	results := make([]reflect.Type, handler.Type().NumOut())
	for i := range results {
		results[i] = handler.Type().Out(i)
	}
	err := filter.CheckResults(results)
	if err != nil {
		return Pipeline{}, &SignatureMismatchError{Handler: handler.Type(), Reason: err.Error()}
	}

	types := make(map[string]reflect.Type)
	var extractions []Step
	for _, b := range plan.bindings {
		if b.As == PathParam {
			types[b.name] = b.Type
			continue
		}

		step, err := extraction(b)
		if err != nil {
			return Pipeline{}, err
		}
		extractions = append(extractions, step)
	}

	var pl Pipeline
	pl.Steps = append(pl.Steps, p.steps(types, true)...)
	pl.Steps = append(pl.Steps, Step{Kind: MethodMatch, Name: method, Filter: filter.Method(method)})
	pl.Steps = append(pl.Steps, extractions...)

	n := len(plan.bindings)
	pl.Steps = append(pl.Steps, Step{
		Kind: HandlerCall,
		Name: handlerName(handler),
		Type: handler.Type(),
		Filter: filter.Invoke(handler, func(values []any) []reflect.Value {
			return plan.Arguments(values[len(values)-n:])
		}),
	})
	return pl, nil
}

func extraction(b Binding) (Step, error) {
	step := Step{Kind: b.As, Name: b.name, Type: b.Type}
	switch b.As {
	case Untagged:
		step.Filter = filter.Self(b.Type)
	case JSONBody:
		step.Filter = filter.JSON(b.Type)
	case FormBody:
		step.Filter = filter.Form(b.Type)
	case RawBody:
		step.Filter = filter.Body(b.Type)
	case QueryString:
		step.Filter = filter.Query(b.Type)
	case CookieValue:
		step.Filter = filter.Cookie(b.name, b.Type)
	case HeaderValue:
		step.Filter = filter.Header(b.name, b.Type)
	case CustomFilter:
		step.Filter = b.filter()
		if b.unit {
			step.Filter = filter.Discard(step.Filter)
			break
		}
		step.Filter = single(b.name, b.Type, step.Filter)
	case InjectedData:
		step.Filter = filter.Value(b.value)
	default:
		return Step{}, fmt.Errorf("route: no extraction for %s", b.As)
	}
	return step, nil
}

// single fails the request instead of misaligning the handler arguments
// when f pushes anything other than one value assignable to t.
func single(name string, t reflect.Type, f filter.Filter) filter.Filter {
	return filter.Func(func(c *filter.Context) error {
		n := len(c.Values())
		err := f.Apply(c)
		if err != nil {
			return err
		}

		pushed := c.Values()[n:]
		if len(pushed) != 1 {
			return &FilterValueError{
				Filter: name,
				Type:   t,
				Reason: fmt.Sprintf("pushed %d values instead of 1", len(pushed)),
			}
		}
		if pushed[0] == nil {
			return nil
		}
		if vt := reflect.TypeOf(pushed[0]); !vt.AssignableTo(t) {
			return &FilterValueError{
				Filter: name,
				Type:   t,
				Reason: fmt.Sprintf("pushed a value of type %s", vt),
			}
		}
		return nil
	})
}

// Filter composes the steps into a single filter.
func (pl Pipeline) Filter() filter.Filter {
	return chain(pl.Steps)
}

func chain(steps []Step) filter.Filter {
	fs := make([]filter.Filter, len(steps))
	for i, step := range steps {
		fs[i] = step.Filter
	}
	return filter.And(fs...)
}
