// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/z5labs/trellis/filter"
)

// Slot is a declared [Param] paired with the handler argument it supplies.
type Slot struct {
	Param

	// Index is the position of the param in declaration order.
	Index int

	// Arg is the handler argument the param supplies or -1 if the param
	// only exists for its side effects.
	Arg int

	Type reflect.Type
}

// Slots pairs params with the arguments of handler, a func type. Every
// param except guards supplies the next handler argument.
func Slots(handler reflect.Type, params []Param) ([]Slot, error) {
	if handler.Kind() != reflect.Func {
		return nil, &SignatureMismatchError{Handler: handler, Reason: "handler must be a func"}
	}
	if handler.IsVariadic() {
		return nil, &SignatureMismatchError{Handler: handler, Reason: "variadic handlers are not supported"}
	}

	slots := make([]Slot, 0, len(params))
	arg := 0
	for i, p := range params {
		if p.unit {
			slots = append(slots, Slot{Param: p, Index: i, Arg: -1, Type: p.typ})
			continue
		}
		if arg >= handler.NumIn() {
			return nil, &SignatureMismatchError{
				Handler: handler,
				Reason:  fmt.Sprintf("%d params declared for %d arguments", countArgs(params), handler.NumIn()),
			}
		}

		t := handler.In(arg)
		if p.kind == InjectedData && !p.typ.AssignableTo(t) {
			return nil, &SignatureMismatchError{
				Handler: handler,
				Reason:  fmt.Sprintf("data of type %s can not be passed as argument %d of type %s", p.typ, arg, t),
			}
		}

		slots = append(slots, Slot{Param: p, Index: i, Arg: arg, Type: t})
		arg++
	}
	if arg != handler.NumIn() {
		return nil, &SignatureMismatchError{
			Handler: handler,
			Reason:  fmt.Sprintf("%d params declared for %d arguments", arg, handler.NumIn()),
		}
	}
	return slots, nil
}

func countArgs(params []Param) int {
	var n int
	for _, p := range params {
		if !p.unit {
			n++
		}
	}
	return n
}

// Binding is a [Slot] whose extraction has been decided.
type Binding struct {
	Slot

	// As is the resolved kind. Untagged slots resolve to either
	// [PathParam] or stay [Untagged] for self extraction.
	As Kind
}

// Plan is the resolved extraction of every handler argument.
type Plan struct {
	bindings []Binding
	arity    int
}

// Resolve decides how each slot is extracted. Path parameters come first
// in template order, each bound to the untagged slot of the same name.
// Every other slot follows in declaration order.
func Resolve(slots []Slot, pathParams []string) (Plan, error) {
	plan := Plan{bindings: make([]Binding, 0, len(slots))}
	for _, s := range slots {
		if s.Arg >= 0 {
			plan.arity++
		}
	}

	bound := make([]bool, len(slots))
	for _, name := range pathParams {
		i, err := bindPathParam(slots, name)
		if err != nil {
			return Plan{}, err
		}

		s := slots[i]
		if !filter.Parsable(s.Type) {
			return Plan{}, &UnextractableParameterError{
				Index:  s.Index,
				Kind:   PathParam,
				Type:   s.Type,
				Reason: "path parameters must be parsable from a single string",
			}
		}
		bound[i] = true
		plan.bindings = append(plan.bindings, Binding{Slot: s, As: PathParam})
	}

	var body *Binding
	for i, s := range slots {
		if bound[i] {
			continue
		}

		err := checkExtractable(s)
		if err != nil {
			return Plan{}, err
		}

		b := Binding{Slot: s, As: s.kind}
		if b.As.consumesBody() {
			if body != nil {
				return Plan{}, &DuplicateBodyExtractorError{First: body.As, Second: b.As}
			}
			body = &b
		}
		plan.bindings = append(plan.bindings, b)
	}
	return plan, nil
}

func bindPathParam(slots []Slot, name string) (int, error) {
	found := -1
	for i, s := range slots {
		if s.kind != Untagged || s.name != name {
			continue
		}
		if found >= 0 {
			return 0, &AmbiguousPathParameterError{Parameter: name}
		}
		found = i
	}
	if found < 0 {
		return 0, &UnboundPathParameterError{Parameter: name}
	}
	return found, nil
}

var bytesType = reflect.TypeFor[[]byte]()

func checkExtractable(s Slot) error {
	unextractable := func(reason string) error {
		return &UnextractableParameterError{Index: s.Index, Kind: s.kind, Type: s.Type, Reason: reason}
	}

	switch s.kind {
	case Untagged:
		if !filter.IsExtractor(s.Type) {
			return unextractable("not a path parameter and *T does not implement filter.Extractor")
		}
	case FormBody:
		if s.Type.Kind() != reflect.Struct {
			return unextractable("forms decode into structs")
		}
	case RawBody:
		if s.Type.Kind() != reflect.String && !s.Type.ConvertibleTo(bytesType) {
			return unextractable("raw bodies are read as a string or []byte")
		}
	case QueryString:
		if s.Type.Kind() != reflect.String && s.Type.Kind() != reflect.Struct {
			return unextractable("queries are read as a string or decoded into a struct")
		}
	case HeaderValue, CookieValue:
		if !parsableValues(s.Type) {
			return unextractable("values must be parsable from strings")
		}
	case CustomFilter:
		if s.filter == nil {
			return unextractable("no filter given")
		}
	}
	return nil
}

func parsableValues(t reflect.Type) bool {
	if t.Kind() == reflect.Slice && t != bytesType {
		return filter.Parsable(t.Elem())
	}
	return filter.Parsable(t)
}

// Bindings returns every binding in extraction order.
func (p Plan) Bindings() []Binding {
	return slices.Clone(p.bindings)
}

// CallOrder maps each extraction position to the declaration index of
// the param extracted there.
func (p Plan) CallOrder() []int {
	order := make([]int, len(p.bindings))
	for i, b := range p.bindings {
		order[i] = b.Index
	}
	return order
}

// Arguments arranges values, one per binding in extraction order, into
// the handler's argument list. Values of guards are dropped.
func (p Plan) Arguments(values []any) []reflect.Value {
	args := make([]reflect.Value, p.arity)
	for i, b := range p.bindings {
		if b.Arg < 0 {
			continue
		}

		v := values[i]
		if v == nil {
			args[b.Arg] = reflect.Zero(b.Type)
			continue
		}
		args[b.Arg] = reflect.ValueOf(v)
	}
	return args
}

// BodyType is a request body consuming argument of a [Plan].
type BodyType struct {
	Kind Kind
	Type reflect.Type
}

// BodyTypes lists the arguments consuming the request body, in extraction
// order. A resolved plan has at most one.
func (p Plan) BodyTypes() []BodyType {
	var bs []BodyType
	for _, b := range p.bindings {
		if b.As.consumesBody() {
			bs = append(bs, BodyType{Kind: b.As, Type: b.Type})
		}
	}
	return bs
}
