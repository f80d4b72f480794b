// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/z5labs/trellis/filter"
)

func applyPath(t *testing.T, f filter.Filter, path string) (*filter.Context, error) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.URL.Path = path
	r.URL.RawPath = ""
	c := filter.NewContext(r)
	return c, f.Apply(c)
}

func TestCompile(t *testing.T) {
	t.Run("will split the template into literals and parameters", func(t *testing.T) {
		p, err := Compile("/sum/{a}/{b}")
		require.NoError(t, err)
		require.Equal(t, []Segment{
			{Value: "sum"},
			{Value: "a", Param: true},
			{Value: "b", Param: true},
		}, p.Segments)
		require.Equal(t, []string{"a", "b"}, p.Params())
		require.Equal(t, "/sum/{a}/{b}", p.String())
	})

	t.Run("will ignore empty segments", func(t *testing.T) {
		p, err := Compile("//sum//{a}/")
		require.NoError(t, err)
		require.Equal(t, "/sum/{a}", p.String())
	})

	t.Run("will compile the root pattern", func(t *testing.T) {
		for _, template := range []string{"", "/", "//"} {
			p, err := Compile(template)
			require.NoError(t, err)
			require.Empty(t, p.Segments)
			require.Equal(t, "/", p.String())

			_, err = applyPath(t, p.Filter(nil), "/")
			require.NoError(t, err)

			_, err = applyPath(t, p.Filter(nil), "/extra")
			require.Error(t, err)
		}
	})

	t.Run("will return a MalformedTemplateError", func(t *testing.T) {
		testCases := map[string]string{
			"if the template does not start with a slash": "sum/{a}",
			"if a parameter name is empty":                "/sum/{}",
			"if a parameter is declared twice":            "/sum/{a}/{a}",
			"if a parameter is not closed":                "/sum/{a",
			"if a literal contains a brace":               "/sum/a}",
			"if a parameter is embedded in a literal":     "/sum-{a}",
		}

		for name, template := range testCases {
			t.Run(name, func(t *testing.T) {
				_, err := Compile(template)
				require.ErrorIs(t, err, ErrMalformedTemplate)

				var merr *MalformedTemplateError
				require.ErrorAs(t, err, &merr)
				require.Equal(t, template, merr.Template)
				require.Contains(t, merr.Error(), template)
			})
		}
	})
}

func TestPattern_Filter(t *testing.T) {
	templates := []string{
		"/",
		"/sum",
		"/sum/{a}/{b}",
		"/{name}/{value}",
		"/users/{id}/posts",
	}

	for _, template := range templates {
		t.Run("will match "+template+" itself", func(t *testing.T) {
			p, err := Compile(template)
			require.NoError(t, err)

			_, err = applyPath(t, p.Filter(nil), template)
			require.NoError(t, err)
		})

		t.Run("will reject "+template+" with a trailing segment", func(t *testing.T) {
			p, err := Compile(template)
			require.NoError(t, err)

			_, err = applyPath(t, p.Filter(nil), template+"/extra")
			rej, ok := filter.AsRejection(err)
			require.True(t, ok)
			require.Equal(t, http.StatusNotFound, rej.Status)
		})
	}

	t.Run("will parse parameters as the given types", func(t *testing.T) {
		p, err := Compile("/sum/{a}/{b}")
		require.NoError(t, err)

		f := p.Filter(map[string]reflect.Type{
			"a": reflect.TypeFor[uint64](),
		})

		c, err := applyPath(t, f, "/sum/1/two")
		require.NoError(t, err)
		require.Equal(t, []any{uint64(1), "two"}, c.Values())
	})
}

func TestPattern_Prefix(t *testing.T) {
	t.Run("will leave the remaining segments unmatched", func(t *testing.T) {
		p, err := Compile("/math")
		require.NoError(t, err)

		c, err := applyPath(t, p.Prefix(nil), "/math/sum/1/2")
		require.NoError(t, err)
		require.Equal(t, []string{"sum", "1", "2"}, c.Remaining())
	})
}

func TestPattern_Join(t *testing.T) {
	t.Run("will append the segments of the other pattern", func(t *testing.T) {
		prefix, err := Compile("/math")
		require.NoError(t, err)

		p, err := Compile("/sum/{a}/{b}")
		require.NoError(t, err)

		joined := prefix.Join(p)
		require.Equal(t, "/math/sum/{a}/{b}", joined.String())
		require.Equal(t, joined.String(), joined.Template)
		require.Equal(t, []string{"a", "b"}, joined.Params())
	})
}
