// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/z5labs/trellis/filter"
)

func resolve(t *testing.T, template string, handler any, params ...Param) (Plan, error) {
	t.Helper()

	p, err := Compile(template)
	require.NoError(t, err)

	slots, err := Slots(reflect.TypeOf(handler), params)
	require.NoError(t, err)

	return Resolve(slots, p.Params())
}

func values(vs []reflect.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.Interface()
	}
	return out
}

func bindingNames(plan Plan) []string {
	var names []string
	for _, b := range plan.Bindings() {
		names = append(names, b.Name())
	}
	return names
}

func TestResolve(t *testing.T) {
	t.Run("will keep the declaration order if it matches the template", func(t *testing.T) {
		sum := func(a, b uint) uint { return a + b }

		plan, err := resolve(t, "/sum/{a}/{b}", sum, Arg("a"), Arg("b"))
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, bindingNames(plan))
		require.Equal(t, []int{0, 1}, plan.CallOrder())

		for _, b := range plan.Bindings() {
			require.Equal(t, PathParam, b.As)
			require.Equal(t, reflect.TypeFor[uint](), b.Type)
		}
	})

	t.Run("will extract path parameters in template order", func(t *testing.T) {
		named := func(value uint8, name string) string { return name }

		plan, err := resolve(t, "/{name}/{value}", named, Arg("value"), Arg("name"))
		require.NoError(t, err)
		require.Equal(t, []string{"name", "value"}, bindingNames(plan))
		require.Equal(t, []int{1, 0}, plan.CallOrder())

		t.Run("and call the handler in declaration order", func(t *testing.T) {
			args := plan.Arguments([]any{"x", uint8(5)})
			require.Equal(t, []any{uint8(5), "x"}, values(args))
		})
	})

	t.Run("will restore the declaration order of five permuted parameters", func(t *testing.T) {
		five := func(e, c, a, d, b string) {}

		plan, err := resolve(t, "/{a}/{b}/{c}/{d}/{e}", five, Arg("e"), Arg("c"), Arg("a"), Arg("d"), Arg("b"))
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c", "d", "e"}, bindingNames(plan))
		require.Equal(t, []int{2, 4, 1, 3, 0}, plan.CallOrder())

		args := plan.Arguments([]any{"A", "B", "C", "D", "E"})
		require.Equal(t, []any{"E", "C", "A", "D", "B"}, values(args))
	})

	t.Run("will extract every other param after the path parameters", func(t *testing.T) {
		upload := func(body []byte, key apiKey, id string, region string) {}

		plan, err := resolve(t, "/files/{id}", upload, Body(), Extract(), Arg("id"), Header("X-Region"))
		require.NoError(t, err)
		require.Equal(t, []int{2, 0, 1, 3}, plan.CallOrder())

		kinds := []Kind{}
		for _, b := range plan.Bindings() {
			kinds = append(kinds, b.As)
		}
		require.Equal(t, []Kind{PathParam, RawBody, Untagged, HeaderValue}, kinds)
		require.Equal(t, []BodyType{{Kind: RawBody, Type: reflect.TypeFor[[]byte]()}}, plan.BodyTypes())

		args := plan.Arguments([]any{"42", []byte("data"), apiKey("secret"), "eu"})
		require.Equal(t, []any{[]byte("data"), apiKey("secret"), "42", "eu"}, values(args))
	})

	t.Run("will drop guards from the handler arguments", func(t *testing.T) {
		get := func(id string) {}
		guard := func() filter.Filter { return filter.End() }

		plan, err := resolve(t, "/{id}", get, Guard("auth", guard), Arg("id"))
		require.NoError(t, err)
		require.Equal(t, []int{1, 0}, plan.CallOrder())

		args := plan.Arguments([]any{"42", struct{}{}})
		require.Equal(t, []any{"42"}, values(args))
	})

	t.Run("will pass the zero value for nil values", func(t *testing.T) {
		get := func(region *string) {}

		plan, err := resolve(t, "/", get, Header("X-Region"))
		require.NoError(t, err)

		args := plan.Arguments([]any{nil})
		require.Len(t, args, 1)
		require.True(t, args[0].IsNil())
	})

	t.Run("will return an UnboundPathParameterError", func(t *testing.T) {
		t.Run("if no argument has the parameter name", func(t *testing.T) {
			get := func(b string) {}

			_, err := resolve(t, "/{a}", get, Arg("b"))
			require.ErrorIs(t, err, ErrUnboundPathParameter)

			var uerr *UnboundPathParameterError
			require.ErrorAs(t, err, &uerr)
			require.Equal(t, "a", uerr.Parameter)
		})

		t.Run("if the argument with the parameter name is tagged", func(t *testing.T) {
			get := func(a string) {}

			_, err := resolve(t, "/{a}", get, Header("a"))
			require.ErrorIs(t, err, ErrUnboundPathParameter)
		})
	})

	t.Run("will return an AmbiguousPathParameterError", func(t *testing.T) {
		t.Run("if two arguments have the parameter name", func(t *testing.T) {
			get := func(a, b string) {}

			_, err := resolve(t, "/{a}", get, Arg("a"), Arg("a"))
			require.ErrorIs(t, err, ErrAmbiguousPathParameter)
		})
	})

	t.Run("will return a DuplicateBodyExtractorError", func(t *testing.T) {
		t.Run("if a json body and a raw body are both declared", func(t *testing.T) {
			create := func(u user, raw []byte) {}

			_, err := resolve(t, "/users", create, JSON(), Body())
			require.ErrorIs(t, err, ErrDuplicateBodyExtractor)

			var derr *DuplicateBodyExtractorError
			require.ErrorAs(t, err, &derr)
			require.Equal(t, JSONBody, derr.First)
			require.Equal(t, RawBody, derr.Second)
		})

		t.Run("if two forms are declared", func(t *testing.T) {
			create := func(a, b login) {}

			_, err := resolve(t, "/login", create, Form(), Form())
			require.ErrorIs(t, err, ErrDuplicateBodyExtractor)
		})
	})

	t.Run("will return an UnextractableParameterError", func(t *testing.T) {
		testCases := []struct {
			Name    string
			Handler any
			Params  []Param
		}{
			{
				Name:    "if an untagged argument does not extract itself",
				Handler: func(u user) {},
				Params:  []Param{Arg("u")},
			},
			{
				Name:    "if a path parameter can not be parsed",
				Handler: func(u user) {},
				Params:  []Param{Arg("a")},
			},
			{
				Name:    "if a form is not a struct",
				Handler: func(s string) {},
				Params:  []Param{Form()},
			},
			{
				Name:    "if a raw body is not bytes or a string",
				Handler: func(n int) {},
				Params:  []Param{Body()},
			},
			{
				Name:    "if a query is not a string or a struct",
				Handler: func(n int) {},
				Params:  []Param{Query()},
			},
			{
				Name:    "if a header is not parsable",
				Handler: func(u user) {},
				Params:  []Param{Header("X-User")},
			},
			{
				Name:    "if a filter is nil",
				Handler: func(u user) {},
				Params:  []Param{Filter("user", nil)},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				template := "/"
				if testCase.Params[0].Name() == "a" {
					template = "/{a}"
				}

				_, err := resolve(t, template, testCase.Handler, testCase.Params...)
				require.ErrorIs(t, err, ErrUnextractableParameter)

				var uerr *UnextractableParameterError
				require.ErrorAs(t, err, &uerr)
				require.NotEmpty(t, uerr.Error())
			})
		}
	})
}

func TestSlots(t *testing.T) {
	t.Run("will return a SignatureMismatchError", func(t *testing.T) {
		testCases := []struct {
			Name    string
			Handler any
			Params  []Param
		}{
			{
				Name:    "if the handler is not a func",
				Handler: "sum",
			},
			{
				Name:    "if fewer params than arguments are declared",
				Handler: func(a, b int) {},
				Params:  []Param{Arg("a")},
			},
			{
				Name:    "if more params than arguments are declared",
				Handler: func(a int) {},
				Params:  []Param{Arg("a"), Arg("b")},
			},
			{
				Name:    "if the handler is variadic",
				Handler: func(a ...int) {},
				Params:  []Param{Arg("a")},
			},
			{
				Name:    "if data can not be passed as the argument",
				Handler: func(n int) {},
				Params:  []Param{Data("n")},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				_, err := Slots(reflect.TypeOf(testCase.Handler), testCase.Params)
				require.ErrorIs(t, err, ErrSignatureMismatch)
			})
		}
	})

	t.Run("will accept data assignable to the argument", func(t *testing.T) {
		var s store = &memoryStore{}
		handler := func(s store) {}

		slots, err := Slots(reflect.TypeOf(handler), []Param{Data(s)})
		require.NoError(t, err)
		require.Len(t, slots, 1)
		require.Equal(t, reflect.TypeFor[store](), slots[0].Type)
	})

	t.Run("will not count guards as arguments", func(t *testing.T) {
		handler := func(a int) {}
		guard := func() filter.Filter { return filter.End() }

		slots, err := Slots(reflect.TypeOf(handler), []Param{Guard("g", guard), Arg("a"), Guard("h", guard)})
		require.NoError(t, err)
		require.Equal(t, []int{-1, 0, -1}, []int{slots[0].Arg, slots[1].Arg, slots[2].Arg})
		require.Equal(t, []int{0, 1, 2}, []int{slots[0].Index, slots[1].Index, slots[2].Index})
	})
}
