// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mathSpecification(t *testing.T) *Specification {
	t.Helper()

	c := NewCollector()
	require.NoError(t, c.Begin(Info{Title: "Math API", Version: "v1.0.0"}))

	var comps Components
	result, err := Describe(reflect.TypeFor[sumResult](), &comps)
	require.NoError(t, err)

	err = c.Scope("/math", []string{"math"}, func() error {
		err := c.Record("/sum/{a}/{b}", http.MethodGet, sumOperation())
		if err != nil {
			return err
		}

		var responses Responses
		err = responses.Set("200", Response{
			Description: "OK",
			Content:     ContentOf("application/json", &result),
		})
		if err != nil {
			return err
		}

		return c.Record("/product", http.MethodPost, Operation{
			OperationID: "product",
			Parameters: []Parameter{
				{Name: "a", In: InFormData, Required: true, Schema: sumOperation().Parameters[0].Schema},
				{Name: "b", In: InFormData, Required: true, Schema: sumOperation().Parameters[1].Schema},
			},
			Responses: responses,
		})
	})
	require.NoError(t, err)
	require.NoError(t, c.RecordComponents(&comps))

	spec, err := c.End()
	require.NoError(t, err)
	return spec
}

func TestSpecification_OpenAPI3(t *testing.T) {
	t.Run("will render a valid openapi document", func(t *testing.T) {
		spec := mathSpecification(t)

		err := Validate(context.Background(), spec)
		require.NoError(t, err)
	})

	t.Run("will render every documented path", func(t *testing.T) {
		spec := mathSpecification(t)

		doc, err := spec.OpenAPI3()
		require.NoError(t, err)
		require.Equal(t, OpenAPIVersion, doc.Openapi)
		require.Equal(t, "Math API", doc.Info.Title)
		require.Len(t, doc.Paths.MapOfPathItemValues, 2)
		require.Contains(t, doc.Paths.MapOfPathItemValues, "/math/sum/{a}/{b}")
		require.Contains(t, doc.Paths.MapOfPathItemValues, "/math/product")
	})

	t.Run("will fold form data parameters into the request body", func(t *testing.T) {
		spec := mathSpecification(t)

		b, err := spec.MarshalJSON()
		require.NoError(t, err)

		var doc struct {
			Paths map[string]map[string]struct {
				Parameters  []any `json:"parameters"`
				RequestBody struct {
					Content map[string]any `json:"content"`
				} `json:"requestBody"`
			} `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(b, &doc))

		product := doc.Paths["/math/product"]["post"]
		require.Empty(t, product.Parameters)
		require.Contains(t, product.RequestBody.Content, "application/x-www-form-urlencoded")
	})
}

func TestSpecification_YAML(t *testing.T) {
	t.Run("will render block style yaml", func(t *testing.T) {
		spec := mathSpecification(t)

		b, err := spec.YAML()
		require.NoError(t, err)

		out := string(b)
		require.True(t, strings.HasPrefix(out, "openapi: 3.0.3\n"), out)
		require.NotContains(t, out, `"info"`)
		require.Less(t, strings.Index(out, "info:"), strings.Index(out, "paths:"))

		err = ValidateDocument(context.Background(), b)
		require.NoError(t, err)
	})

	t.Run("will sort paths by key", func(t *testing.T) {
		spec := mathSpecification(t)
		require.Equal(t, []string{"/math/sum/{a}/{b}", "/math/product"}, spec.Paths())

		b, err := spec.YAML()
		require.NoError(t, err)

		out := string(b)
		product := strings.Index(out, "/math/product")
		sum := strings.Index(out, "/math/sum/")
		require.NotEqual(t, -1, product, out)
		require.NotEqual(t, -1, sum, out)
		require.Less(t, product, sum)
	})
}
