// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package filter

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Context carries the state of a single request while it flows
// through a chain of [Filter]s. A Context is never shared between requests.
type Context struct {
	Request *http.Request

	segments  []string
	pos       int
	values    []any
	bodyTaken bool
	reply     Reply
}

// NewContext initializes a [Context] for the given request.
func NewContext(r *http.Request) *Context {
	return &Context{
		Request:  r,
		segments: splitPath(r.URL.EscapedPath()),
	}
}

func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		seg, err := url.PathUnescape(part)
		if err != nil {
			seg = part
		}
		segs = append(segs, seg)
	}
	return segs
}

// Context returns the [context.Context] of the underlying request.
func (c *Context) Context() context.Context {
	return c.Request.Context()
}

// Remaining returns the path segments which have not been matched yet.
func (c *Context) Remaining() []string {
	return c.segments[c.pos:]
}

// Values returns every value extracted so far, in extraction order.
func (c *Context) Values() []any {
	return c.values
}

// Push appends an extracted value.
func (c *Context) Push(v any) {
	c.values = append(c.values, v)
}

// TakeBody hands out the request body. The body can only be taken once
// per request, any subsequent call returns a [BodyConsumedError].
func (c *Context) TakeBody() (io.ReadCloser, error) {
	if c.bodyTaken {
		return nil, BodyConsumedError{}
	}
	c.bodyTaken = true
	if c.Request.Body == nil {
		return http.NoBody, nil
	}
	return c.Request.Body, nil
}

// SetReply records the response which will be written once the
// filter chain completes.
func (c *Context) SetReply(r Reply) {
	c.reply = r
}

// Reply returns the recorded response, if any.
func (c *Context) Reply() Reply {
	return c.reply
}

// The body is not part of a checkpoint, once taken it stays taken.
type checkpoint struct {
	pos    int
	values int
	reply  Reply
}

func (c *Context) checkpoint() checkpoint {
	return checkpoint{
		pos:    c.pos,
		values: len(c.values),
		reply:  c.reply,
	}
}

func (c *Context) restore(cp checkpoint) {
	c.pos = cp.pos
	c.values = c.values[:cp.values]
	c.reply = cp.reply
}

// Filter is a single composable unit of request matching or extraction.
//
// A Filter either matches the request and optionally pushes extracted
// values onto the [Context], or fails. Failing with a [Rejection] means the
// request simply was not meant for this filter and siblings composed with
// [Or] are tried next. Any other error aborts the request.
type Filter interface {
	Apply(*Context) error
}

// Func is an adapter to allow the use of ordinary functions as [Filter]s.
type Func func(*Context) error

// Apply implements the [Filter] interface.
func (f Func) Apply(c *Context) error {
	return f(c)
}

// And composes filters which must all succeed, in order.
func And(fs ...Filter) Filter {
	if len(fs) == 1 {
		return fs[0]
	}
	return Func(func(c *Context) error {
		for _, f := range fs {
			err := f.Apply(c)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Or tries each filter in turn until one succeeds. The [Context] is
// rolled back between attempts so a failed alternative leaves no
// extracted values or consumed path segments behind. If every alternative
// rejects the request the most specific [Rejection] is returned.
func Or(fs ...Filter) Filter {
	if len(fs) == 1 {
		return fs[0]
	}
	return Func(func(c *Context) error {
		cp := c.checkpoint()

		rejection := Rejection{Status: http.StatusNotFound}
		for _, f := range fs {
			err := f.Apply(c)
			if err == nil {
				return nil
			}

			rej, ok := AsRejection(err)
			if !ok {
				return err
			}
			rejection = rejection.combine(rej)
			c.restore(cp)
		}
		return rejection
	})
}

// Extract adapts a typed extraction function into a [Filter] which pushes
// the extracted value.
func Extract[T any](f func(*Context) (T, error)) Filter {
	return Func(func(c *Context) error {
		v, err := f(c)
		if err != nil {
			return err
		}
		c.Push(v)
		return nil
	})
}

// Value always succeeds and pushes v. The same v is shared by every request.
func Value(v any) Filter {
	return Func(func(c *Context) error {
		c.Push(v)
		return nil
	})
}

// Discard runs f for its side effects only. Whatever f extracts is
// replaced by a single struct{}{}.
func Discard(f Filter) Filter {
	return Func(func(c *Context) error {
		n := len(c.values)
		err := f.Apply(c)
		if err != nil {
			return err
		}
		c.values = append(c.values[:n], struct{}{})
		return nil
	})
}

// Handle terminates a filter chain by computing the [Reply] for the request.
func Handle(f func(*Context) (Reply, error)) Filter {
	return Func(func(c *Context) error {
		r, err := f(c)
		if err != nil {
			return err
		}
		c.SetReply(r)
		return nil
	})
}
