// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"reflect"
	"slices"
	"strings"

	"github.com/z5labs/trellis/filter"
)

// Segment is either a literal path segment or a named parameter.
type Segment struct {
	Value string
	Param bool
}

// Pattern is a compiled path template.
type Pattern struct {
	Template string
	Segments []Segment
}

// Compile parses a path template such as "/sum/{a}/{b}". Empty segments are
// ignored so "/sum//{a}/" and "/sum/{a}" compile to the same [Pattern].
// The empty template and "/" both compile to the root pattern.
func Compile(template string) (Pattern, error) {
	p := Pattern{Template: template}
	if template == "" {
		return p, nil
	}
	if !strings.HasPrefix(template, "/") {
		return p, &MalformedTemplateError{Template: template, Reason: "must start with /"}
	}

	seen := make(map[string]bool)
	for _, s := range strings.Split(template, "/") {
		if s == "" {
			continue
		}

		seg, err := parseSegment(template, s)
		if err != nil {
			return p, err
		}
		if seg.Param {
			if seen[seg.Value] {
				return p, &MalformedTemplateError{
					Template: template,
					Reason:   "parameter {" + seg.Value + "} is declared more than once",
				}
			}
			seen[seg.Value] = true
		}
		p.Segments = append(p.Segments, seg)
	}
	return p, nil
}

func parseSegment(template, s string) (Segment, error) {
	name, isParam := strings.CutPrefix(s, "{")
	if isParam {
		var closed bool
		name, closed = strings.CutSuffix(name, "}")
		if !closed {
			return Segment{}, &MalformedTemplateError{Template: template, Reason: "unclosed parameter " + s}
		}
		if name == "" {
			return Segment{}, &MalformedTemplateError{Template: template, Reason: "parameter name is empty"}
		}
	}
	if strings.ContainsAny(name, "{}") {
		return Segment{}, &MalformedTemplateError{Template: template, Reason: "unexpected brace in segment " + s}
	}
	return Segment{Value: name, Param: isParam}, nil
}

// Params returns the parameter names in template order.
func (p Pattern) Params() []string {
	var names []string
	for _, seg := range p.Segments {
		if seg.Param {
			names = append(names, seg.Value)
		}
	}
	return names
}

// String returns the normalized template.
func (p Pattern) String() string {
	if len(p.Segments) == 0 {
		return "/"
	}

	var sb strings.Builder
	for _, seg := range p.Segments {
		sb.WriteByte('/')
		if seg.Param {
			sb.WriteString("{" + seg.Value + "}")
			continue
		}
		sb.WriteString(seg.Value)
	}
	return sb.String()
}

// Join returns the pattern matching p followed by other.
func (p Pattern) Join(other Pattern) Pattern {
	segs := slices.Concat(p.Segments, other.Segments)
	j := Pattern{Segments: segs}
	j.Template = j.String()
	return j
}

// Filter matches the whole remaining path against p. Parameters are
// parsed as the type named for them in types, or string if unnamed.
func (p Pattern) Filter(types map[string]reflect.Type) filter.Filter {
	return chain(p.steps(types, true))
}

// Prefix is like [Pattern.Filter] except it leaves any remaining path
// segments unmatched.
func (p Pattern) Prefix(types map[string]reflect.Type) filter.Filter {
	return chain(p.steps(types, false))
}

var stringType = reflect.TypeFor[string]()

func (p Pattern) steps(types map[string]reflect.Type, end bool) []Step {
	steps := make([]Step, 0, len(p.Segments)+1)
	for _, seg := range p.Segments {
		if !seg.Param {
			steps = append(steps, Step{
				Kind:   PathLiteral,
				Name:   seg.Value,
				Filter: filter.Literal(seg.Value),
			})
			continue
		}

		t, ok := types[seg.Value]
		if !ok {
			t = stringType
		}
		steps = append(steps, Step{
			Kind:   PathParam,
			Name:   seg.Value,
			Type:   t,
			Filter: filter.Param(seg.Value, t),
		})
	}
	if end {
		steps = append(steps, Step{Kind: PathEnd, Filter: filter.End()})
	}
	return steps
}
