// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"encoding/json"
	"strings"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
	"gopkg.in/yaml.v3"
)

// OpenAPIVersion is the version of the OpenAPI specification documents are rendered as.
const OpenAPIVersion = "3.0.3"

// OpenAPI3 converts s into an OpenAPI 3 document.
//
// Form data parameters are folded into an
// application/x-www-form-urlencoded request body. Paths, responses and
// media types are held in maps by the returned document so the order
// recorded in s does not survive the conversion.
func (s *Specification) OpenAPI3() (*openapi3.Spec, error) {
	spec := &openapi3.Spec{
		Openapi: OpenAPIVersion,
		Info: openapi3.Info{
			Title:   s.Info.Title,
			Version: s.Info.Version,
		},
	}
	if s.Info.Description != "" {
		spec.Info.Description = ptr.Ref(s.Info.Description)
	}

	for _, path := range s.paths.Keys() {
		item, _ := s.paths.Get(path)

		var err error
		item.Each(func(method string, op Operation) bool {
			err = spec.AddOperation(strings.ToUpper(method), path, convertOperation(op))
			return err == nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.components.schemas.Each(func(name string, schema jsonschema.Schema) bool {
		spec.ComponentsEns().SchemasEns().WithMapOfSchemaOrRefValuesItem(name, schemaOrRef(&schema))
		return true
	})

	return spec, nil
}

// MarshalJSON renders s as an OpenAPI 3 JSON document. Paths, responses
// and components are emitted sorted by key. Use [Specification.Paths] and
// [Specification.Methods] for the order they were recorded in.
func (s *Specification) MarshalJSON() ([]byte, error) {
	spec, err := s.OpenAPI3()
	if err != nil {
		return nil, err
	}
	return json.Marshal(spec)
}

// YAML renders s as an OpenAPI 3 YAML document in block style. Keys keep
// the order of [Specification.MarshalJSON], so paths and responses are
// sorted.
func (s *Specification) YAML() ([]byte, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	err = yaml.Unmarshal(b, &doc)
	if err != nil {
		return nil, err
	}
	blockStyle(&doc)

	return yaml.Marshal(&doc)
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func schemaOrRef(s *jsonschema.Schema) openapi3.SchemaOrRef {
	var sor openapi3.SchemaOrRef
	if s == nil {
		return sor
	}
	sor.FromJSONSchema(s.ToSchemaOrBool())
	return sor
}

func convertContent(c Content) map[string]openapi3.MediaType {
	content := make(map[string]openapi3.MediaType, c.Len())
	c.m.Each(func(mediaType string, mt MediaType) bool {
		sor := schemaOrRef(mt.Schema)
		content[mediaType] = openapi3.MediaType{
			Schema: &sor,
		}
		return true
	})
	return content
}

func convertOperation(op Operation) openapi3.Operation {
	o := openapi3.Operation{
		Tags: op.Tags,
	}
	if op.OperationID != "" {
		o.ID = ptr.Ref(op.OperationID)
	}
	if op.Summary != "" {
		o.Summary = ptr.Ref(op.Summary)
	}
	if op.Description != "" {
		o.Description = ptr.Ref(op.Description)
	}
	if op.Deprecated {
		o.Deprecated = ptr.Ref(true)
	}

	var form []Parameter
	for _, p := range op.Parameters {
		if p.In == InFormData {
			form = append(form, p)
			continue
		}

		param := &openapi3.Parameter{
			Name:     p.Name,
			In:       openapi3.ParameterIn(p.In),
			Required: ptr.Ref(p.Required || p.In == InPath),
		}
		if p.Description != "" {
			param.Description = ptr.Ref(p.Description)
		}
		if p.Schema != nil {
			sor := schemaOrRef(p.Schema)
			param.Schema = &sor
		}
		o.Parameters = append(o.Parameters, openapi3.ParameterOrRef{
			Parameter: param,
		})
	}

	switch {
	case op.RequestBody != nil:
		rb := &openapi3.RequestBody{
			Required: ptr.Ref(op.RequestBody.Required),
			Content:  convertContent(op.RequestBody.Content),
		}
		if op.RequestBody.Description != "" {
			rb.Description = ptr.Ref(op.RequestBody.Description)
		}
		o.RequestBody = &openapi3.RequestBodyOrRef{
			RequestBody: rb,
		}
	case len(form) > 0:
		o.RequestBody = &openapi3.RequestBodyOrRef{
			RequestBody: formRequestBody(form),
		}
	}

	responses := make(map[string]openapi3.ResponseOrRef, op.Responses.Len())
	op.Responses.m.Each(func(status string, r Response) bool {
		resp := &openapi3.Response{
			Description: r.Description,
		}
		if r.Content.Len() > 0 {
			resp.Content = convertContent(r.Content)
		}
		responses[status] = openapi3.ResponseOrRef{
			Response: resp,
		}
		return true
	})
	o.Responses = openapi3.Responses{
		MapOfResponseOrRefValues: responses,
	}

	return o
}

func formRequestBody(params []Parameter) *openapi3.RequestBody {
	var s jsonschema.Schema
	s.WithType(jsonschema.Object.Type())
	s.Properties = make(map[string]jsonschema.SchemaOrBool, len(params))

	required := false
	for _, p := range params {
		prop := jsonschema.Schema{}
		if p.Schema != nil {
			prop = *p.Schema
		}
		if p.Description != "" {
			prop.WithDescription(p.Description)
		}
		s.Properties[p.Name] = prop.ToSchemaOrBool()

		if p.Required {
			required = true
			s.Required = append(s.Required, p.Name)
		}
	}

	return &openapi3.RequestBody{
		Required: ptr.Ref(required),
		Content:  convertContent(ContentOf("application/x-www-form-urlencoded", &s)),
	}
}
