// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"reflect"

	"github.com/z5labs/trellis/filter"
)

// Kind identifies how a step of a [Pipeline] behaves. Most kinds describe
// how a handler argument is extracted.
type Kind int

const (
	// Untagged arguments are bound to a path parameter of the same name or
	// else extract themselves via [filter.Extractor].
	Untagged Kind = iota
	PathParam
	JSONBody
	FormBody
	RawBody
	QueryString
	CookieValue
	HeaderValue
	CustomFilter
	InjectedData

	PathLiteral
	PathEnd
	MethodMatch
	HandlerCall
)

var kindNames = [...]string{
	Untagged:     "untagged",
	PathParam:    "path parameter",
	JSONBody:     "json body",
	FormBody:     "form body",
	RawBody:      "raw body",
	QueryString:  "query",
	CookieValue:  "cookie",
	HeaderValue:  "header",
	CustomFilter: "custom filter",
	InjectedData: "injected data",
	PathLiteral:  "path literal",
	PathEnd:      "end of path",
	MethodMatch:  "method",
	HandlerCall:  "handler call",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func (k Kind) consumesBody() bool {
	return k == JSONBody || k == FormBody || k == RawBody
}

// Param declares one handler argument, in the order the handler declares
// them. It is also an [Option] so params are passed alongside other route
// options.
type Param struct {
	kind   Kind
	name   string
	filter func() filter.Filter
	value  any
	typ    reflect.Type
	unit   bool
}

// Kind returns how the argument is extracted.
func (p Param) Kind() Kind { return p.kind }

// Name returns the identifier, header, cookie or filter name of the argument.
func (p Param) Name() string { return p.name }

// ApplyOption implements [Option].
func (p Param) ApplyOption(o *Options) {
	o.params = append(o.params, p)
}

// Arg declares an untagged argument named name. It binds to the path
// parameter of the same name, if any.
func Arg(name string) Param {
	return Param{kind: Untagged, name: name}
}

// Extract declares an unnamed argument whose type implements [filter.Extractor].
func Extract() Param {
	return Param{kind: Untagged}
}

// JSON declares an argument decoded from a JSON request body.
func JSON() Param {
	return Param{kind: JSONBody}
}

// Form declares an argument decoded from a url encoded form body.
func Form() Param {
	return Param{kind: FormBody}
}

// Body declares an argument holding the raw request body.
func Body() Param {
	return Param{kind: RawBody}
}

// Query declares an argument holding the raw query string or, for struct
// types, the decoded query values.
func Query() Param {
	return Param{kind: QueryString}
}

// Cookie declares an argument read from the named cookie.
func Cookie(name string) Param {
	return Param{kind: CookieValue, name: name}
}

// Header declares an argument read from the named header.
func Header(name string) Param {
	return Param{kind: HeaderValue, name: name}
}

// Filter declares an argument extracted by the filter f returns. The
// filter must push exactly one value.
func Filter(name string, f func() filter.Filter) Param {
	return Param{kind: CustomFilter, name: name, filter: f}
}

// Guard runs the filter f returns before the handler without passing
// anything to the handler.
func Guard(name string, f func() filter.Filter) Param {
	return Param{
		kind:   CustomFilter,
		name:   name,
		filter: f,
		typ:    unitType,
		unit:   true,
	}
}

// Data declares an argument which is always v. The same v is passed to
// every request so it must be safe for concurrent use.
func Data[T any](v T) Param {
	return Param{
		kind:  InjectedData,
		value: v,
		typ:   reflect.TypeFor[T](),
	}
}

var unitType = reflect.TypeFor[struct{}]()
