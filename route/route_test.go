// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggest/jsonschema-go"
	"github.com/z5labs/trellis/filter"
	"github.com/z5labs/trellis/openapi"
)

type apiKey string

func (k *apiKey) ExtractFrom(c *filter.Context) error {
	v := c.Request.Header.Get("X-Api-Key")
	if v == "" {
		return filter.Rejection{Status: http.StatusUnauthorized}
	}
	*k = apiKey(v)
	return nil
}

func (apiKey) Document(op *openapi.Operation, comps *openapi.Components) error {
	var s jsonschema.Schema
	s.WithType(jsonschema.String.Type())

	op.Parameters = append(op.Parameters, openapi.Parameter{
		Name:     "X-Api-Key",
		In:       openapi.InHeader,
		Required: true,
		Schema:   &s,
	})
	return nil
}

type user struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type login struct {
	Username string `form:"username" required:"true"`
	Password string `form:"password" required:"true"`
}

type store interface {
	Add(string)
	Len() int
}

type memoryStore struct {
	mu    sync.Mutex
	names []string
}

func (s *memoryStore) Add(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
}

func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

func sum(a, b uint64) string {
	return fmt.Sprint(a + b)
}

func serve(t *testing.T, f filter.Filter, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	filter.Handler(f).ServeHTTP(w, r)
	return w
}

func TestRoute_Build(t *testing.T) {
	t.Run("will serve the handler at its path", func(t *testing.T) {
		f, err := Get("/sum/{a}/{b}", sum, Arg("a"), Arg("b")).Build(nil)
		require.NoError(t, err)

		w := serve(t, f, httptest.NewRequest(http.MethodGet, "/sum/1/2", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "3", w.Body.String())
	})

	t.Run("will call the handler in declaration order", func(t *testing.T) {
		named := func(value uint8, name string) string {
			return fmt.Sprintf("%s=%d", name, value)
		}

		f, err := Get("/{name}/{value}", named, Arg("value"), Arg("name")).Build(nil)
		require.NoError(t, err)

		w := serve(t, f, httptest.NewRequest(http.MethodGet, "/answer/42", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "answer=42", w.Body.String())
	})

	t.Run("will extract every kind of param", func(t *testing.T) {
		var s store = &memoryStore{}
		create := func(id string, key apiKey, u user, region *string, session string, st store) (user, error) {
			if region == nil {
				return user{}, errors.New("missing region")
			}
			st.Add(u.Name)
			return user{Name: fmt.Sprintf("%s/%s/%s/%s/%s", id, key, u.Name, *region, session), Age: st.Len()}, nil
		}

		f, err := Post(
			"/users/{id}",
			create,
			Arg("id"),
			Extract(),
			JSON(),
			Header("X-Region"),
			Cookie("session"),
			Data(s),
		).Build(nil)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodPost, "/users/7", strings.NewReader(`{"name":"bob"}`))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("X-Api-Key", "secret")
		r.Header.Set("X-Region", "eu")
		r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

		w := serve(t, f, r)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"name":"7/secret/bob/eu/abc","age":1}`, w.Body.String())
	})

	t.Run("will run guards before the handler", func(t *testing.T) {
		var called bool
		get := func() { called = true }
		deny := func() filter.Filter {
			return filter.Func(func(*filter.Context) error {
				return filter.Rejection{Status: http.StatusForbidden}
			})
		}

		f, err := Get("/secret", get, Guard("deny", deny)).Build(nil)
		require.NoError(t, err)

		w := serve(t, f, httptest.NewRequest(http.MethodGet, "/secret", nil))
		require.Equal(t, http.StatusForbidden, w.Code)
		require.False(t, called)
	})

	t.Run("will pass the value of a custom filter", func(t *testing.T) {
		echo := func(tenant string) string { return tenant }
		tenant := func() filter.Filter {
			return filter.Extract(func(c *filter.Context) (string, error) {
				return c.Request.Host, nil
			})
		}

		f, err := Get("/tenant", echo, Filter("tenant", tenant)).Build(nil)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/tenant", nil)
		r.Host = "acme.example.com"

		w := serve(t, f, r)
		require.Equal(t, "acme.example.com", w.Body.String())
	})

	t.Run("will return a FilterValueError", func(t *testing.T) {
		testCases := []struct {
			Name   string
			Filter func() filter.Filter
		}{
			{
				Name: "if a custom filter pushes no value",
				Filter: func() filter.Filter {
					return filter.Func(func(*filter.Context) error { return nil })
				},
			},
			{
				Name: "if a custom filter pushes two values",
				Filter: func() filter.Filter {
					return filter.And(filter.Value("a"), filter.Value("b"))
				},
			},
			{
				Name: "if a custom filter pushes a value of another type",
				Filter: func() filter.Filter {
					return filter.Value(42)
				},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				called := false
				handler := func(a int, tenant string) string {
					called = true
					return tenant
				}

				f, err := Get("/x/{a}", handler, Arg("a"), Filter("tenant", testCase.Filter)).Build(nil)
				require.NoError(t, err)

				err = f.Apply(filter.NewContext(httptest.NewRequest(http.MethodGet, "/x/1", nil)))
				require.ErrorIs(t, err, ErrFilterValue)
				require.False(t, called)

				var verr *FilterValueError
				require.ErrorAs(t, err, &verr)
				require.Equal(t, "tenant", verr.Filter)

				w := serve(t, f, httptest.NewRequest(http.MethodGet, "/x/1", nil))
				require.Equal(t, http.StatusInternalServerError, w.Code)
			})
		}
	})

	t.Run("will reply with no content", func(t *testing.T) {
		f, err := Delete("/users/{id}", func(id int) error { return nil }, Arg("id")).Build(nil)
		require.NoError(t, err)

		w := serve(t, f, httptest.NewRequest(http.MethodDelete, "/users/1", nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("will reject requests", func(t *testing.T) {
		f, err := Get("/sum/{a}/{b}", sum, Arg("a"), Arg("b")).Build(nil)
		require.NoError(t, err)

		t.Run("if the path has a trailing segment", func(t *testing.T) {
			w := serve(t, f, httptest.NewRequest(http.MethodGet, "/sum/1/2/3", nil))
			require.Equal(t, http.StatusNotFound, w.Code)
		})

		t.Run("if a path parameter does not parse", func(t *testing.T) {
			w := serve(t, f, httptest.NewRequest(http.MethodGet, "/sum/1/two", nil))
			require.Equal(t, http.StatusNotFound, w.Code)
		})

		t.Run("if the method does not match", func(t *testing.T) {
			w := serve(t, f, httptest.NewRequest(http.MethodPut, "/sum/1/2", nil))
			require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		})
	})

	t.Run("will return a BuildError", func(t *testing.T) {
		t.Run("if the handler is nil", func(t *testing.T) {
			_, err := Get("/", nil).Build(nil)
			require.ErrorIs(t, err, ErrSignatureMismatch)

			var berr *BuildError
			require.ErrorAs(t, err, &berr)
			require.Equal(t, http.MethodGet, berr.Method)
		})

		t.Run("if the template is malformed", func(t *testing.T) {
			_, err := Get("sum", sum, Arg("a"), Arg("b")).Build(nil)
			require.ErrorIs(t, err, ErrMalformedTemplate)
		})

		t.Run("if a json body and a raw body are both declared", func(t *testing.T) {
			create := func(u user, raw []byte) {}

			_, err := Post("/users", create, JSON(), Body()).Build(nil)
			require.ErrorIs(t, err, ErrDuplicateBodyExtractor)

			var berr *BuildError
			require.ErrorAs(t, err, &berr)
			require.Equal(t, "/users", berr.Path)
			require.Contains(t, berr.Error(), "POST /users")
		})

		t.Run("if the handler returns too many results", func(t *testing.T) {
			bad := func() (int, int, error) { return 0, 0, nil }

			_, err := Get("/", bad).Build(nil)
			require.ErrorIs(t, err, ErrSignatureMismatch)
		})
	})
}

func TestRouter(t *testing.T) {
	t.Run("will serve every route below the prefix", func(t *testing.T) {
		times := func(a, b uint64) string { return fmt.Sprint(a * b) }

		f, err := Build(
			Router("/math", []Service{
				Get("/sum/{a}/{b}", sum, Arg("a"), Arg("b")),
				Get("/product/{a}/{b}", times, Arg("a"), Arg("b")),
			}),
			Get("/health", func() string { return "ok" }),
		)
		require.NoError(t, err)

		testCases := map[string]string{
			"/math/sum/2/3":     "5",
			"/math/product/2/3": "6",
			"/health":           "ok",
		}
		for path, body := range testCases {
			w := serve(t, f, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, w.Code, path)
			require.Equal(t, body, w.Body.String(), path)
		}

		w := serve(t, f, httptest.NewRequest(http.MethodGet, "/sum/2/3", nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("will reject a prefix with parameters", func(t *testing.T) {
		_, err := Build(Router("/users/{id}", nil))
		require.ErrorIs(t, err, ErrMalformedTemplate)
	})

	t.Run("will join the errors of every failing route", func(t *testing.T) {
		_, err := Build(Router("/", []Service{
			Get("bad", sum),
			Get("/{a}", sum, Arg("b"), Arg("c")),
		}))
		require.ErrorIs(t, err, ErrMalformedTemplate)
		require.ErrorIs(t, err, ErrUnboundPathParameter)
	})

	t.Run("will serve one shared filter concurrently", func(t *testing.T) {
		f, err := Build(Router("/math", []Service{
			Get("/sum/{a}/{b}", sum, Arg("a"), Arg("b")),
		}))
		require.NoError(t, err)

		h := filter.Handler(f)

		var wg conc.WaitGroup
		for i := range 50 {
			wg.Go(func() {
				w := httptest.NewRecorder()
				r := httptest.NewRequestWithContext(context.Background(), http.MethodGet, fmt.Sprintf("/math/sum/%d/1", i), nil)

				h.ServeHTTP(w, r)

				assert.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, fmt.Sprint(i+1), w.Body.String())
			})
		}
		wg.Wait()
	})
}

func TestMust(t *testing.T) {
	t.Run("will panic on error", func(t *testing.T) {
		require.Panics(t, func() {
			Must(Build(Get("bad", sum)))
		})
	})

	t.Run("will return the value", func(t *testing.T) {
		f := Must(Build(Get("/", func() string { return "root" })))

		w := serve(t, f, httptest.NewRequest(http.MethodGet, "/", nil))
		b, err := io.ReadAll(w.Body)
		require.NoError(t, err)
		require.Equal(t, "root", string(b))
	})
}
