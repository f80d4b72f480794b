// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package filter

import (
	"reflect"
	"strings"
)

// Literal matches the next path segment exactly.
func Literal(segment string) Filter {
	return Func(func(c *Context) error {
		rest := c.Remaining()
		if len(rest) == 0 || rest[0] != segment {
			return NotFound()
		}
		c.pos++
		return nil
	})
}

// Param captures the next path segment and parses it into a value of type t.
// A segment which does not parse rejects the request, the same as a
// literal mismatch would, so sibling routes still get their chance.
func Param(name string, t reflect.Type) Filter {
	return Func(func(c *Context) error {
		rest := c.Remaining()
		if len(rest) == 0 {
			return NotFound()
		}

		v := reflect.New(t).Elem()
		err := setValue(v, rest[0])
		if err != nil {
			return NotFound()
		}

		c.pos++
		c.Push(v.Interface())
		return nil
	})
}

// End asserts that every path segment has been matched.
func End() Filter {
	return Func(func(c *Context) error {
		if len(c.Remaining()) > 0 {
			return NotFound()
		}
		return nil
	})
}

// Method matches the request method. HEAD requests also match GET.
func Method(method string) Filter {
	method = strings.ToUpper(method)

	return Func(func(c *Context) error {
		m := c.Request.Method
		if m == method {
			return nil
		}
		if m == "HEAD" && method == "GET" {
			return nil
		}
		return MethodNotAllowed()
	})
}
