// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/swaggest/jsonschema-go"
	"github.com/z5labs/trellis/internal/ordered"
)

// Info describes the documented service.
type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Location is where a [Parameter] is carried in a request.
type Location string

const (
	InPath     Location = "path"
	InQuery    Location = "query"
	InHeader   Location = "header"
	InCookie   Location = "cookie"
	InFormData Location = "formData"
)

// Parameter documents a single request parameter.
type Parameter struct {
	Name        string             `json:"name"`
	In          Location           `json:"in"`
	Required    bool               `json:"required,omitempty"`
	Description string             `json:"description,omitempty"`
	Schema      *jsonschema.Schema `json:"schema,omitempty"`
}

// MediaType pairs a media type with the schema of its payload.
type MediaType struct {
	Schema *jsonschema.Schema `json:"schema,omitempty"`
}

// Content maps media types to their payload schema in insertion order.
type Content struct {
	m ordered.Map[string, MediaType]
}

// ContentOf returns [Content] holding a single media type.
func ContentOf(mediaType string, schema *jsonschema.Schema) Content {
	var c Content
	c.Set(mediaType, schema)
	return c
}

// Set documents the payload schema for mediaType.
func (c *Content) Set(mediaType string, schema *jsonschema.Schema) {
	c.m.Set(mediaType, MediaType{Schema: schema})
}

// Get returns the payload schema for mediaType.
func (c *Content) Get(mediaType string) (*jsonschema.Schema, bool) {
	mt, ok := c.m.Get(mediaType)
	return mt.Schema, ok
}

// MediaTypes returns the documented media types in insertion order.
func (c *Content) MediaTypes() []string {
	return c.m.Keys()
}

// Len returns the number of documented media types.
func (c *Content) Len() int {
	return c.m.Len()
}

// MarshalJSON implements the [json.Marshaler] interface.
func (c Content) MarshalJSON() ([]byte, error) {
	return c.m.MarshalJSON()
}

func (c Content) clone() Content {
	return Content{m: *c.m.Clone()}
}

// RequestBody documents the payload of a request.
type RequestBody struct {
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Content     Content `json:"content"`
}

// Response documents a single response of an [Operation].
type Response struct {
	Description string  `json:"description"`
	Content     Content `json:"content"`
}

// Responses maps status keys, e.g. "200" or "default", to their [Response]
// in insertion order.
type Responses struct {
	m ordered.Map[string, Response]
}

// Set documents the response for status. Setting a status which is
// already documented only fills in a missing description or content,
// documenting different content for it fails with a [ResponseConflictError].
func (rs *Responses) Set(status string, r Response) error {
	existing, ok := rs.m.Get(status)
	if !ok {
		rs.m.Set(status, r)
		return nil
	}

	if existing.Content.Len() > 0 && r.Content.Len() > 0 {
		equal, err := jsonEqual(existing.Content, r.Content)
		if err != nil {
			return err
		}
		if !equal {
			return &ResponseConflictError{Status: status}
		}
	}

	if existing.Description == "" {
		existing.Description = r.Description
	}
	if existing.Content.Len() == 0 {
		existing.Content = r.Content
	}
	rs.m.Set(status, existing)
	return nil
}

// Get returns the response documented for status.
func (rs *Responses) Get(status string) (Response, bool) {
	return rs.m.Get(status)
}

// Statuses returns the documented status keys in insertion order.
func (rs *Responses) Statuses() []string {
	return rs.m.Keys()
}

// Len returns the number of documented responses.
func (rs *Responses) Len() int {
	return rs.m.Len()
}

// MarshalJSON implements the [json.Marshaler] interface.
func (rs Responses) MarshalJSON() ([]byte, error) {
	return rs.m.MarshalJSON()
}

func (rs Responses) clone() Responses {
	var c Responses
	rs.m.Each(func(status string, r Response) bool {
		r.Content = r.Content.clone()
		c.m.Set(status, r)
		return true
	})
	return c
}

// Operation documents a single method on a single path.
type Operation struct {
	Tags        []string     `json:"tags,omitempty"`
	OperationID string       `json:"operationId,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Deprecated  bool         `json:"deprecated,omitempty"`
	Parameters  []Parameter  `json:"parameters,omitempty"`
	RequestBody *RequestBody `json:"requestBody,omitempty"`
	Responses   Responses    `json:"responses"`
}

func (op Operation) clone() Operation {
	c := op
	c.Tags = slices.Clone(op.Tags)
	c.Parameters = slices.Clone(op.Parameters)
	if op.RequestBody != nil {
		rb := *op.RequestBody
		rb.Content = rb.Content.clone()
		c.RequestBody = &rb
	}
	c.Responses = op.Responses.clone()
	return c
}

func jsonEqual(a, b any) (bool, error) {
	ab, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ab, bb), nil
}
