// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"github.com/swaggest/jsonschema-go"
	"github.com/z5labs/trellis/internal/ordered"
)

// Components holds named, reusable schemas in insertion order.
type Components struct {
	schemas ordered.Map[string, jsonschema.Schema]
}

// Add registers schema under name. Registering an equal schema under an
// existing name is a no-op, a different one fails with a
// [ComponentNameCollisionError].
func (c *Components) Add(name string, schema jsonschema.Schema) error {
	existing, ok := c.schemas.Get(name)
	if !ok {
		c.schemas.Set(name, schema)
		return nil
	}

	equal, err := jsonEqual(&existing, &schema)
	if err != nil {
		return err
	}
	if !equal {
		return &ComponentNameCollisionError{Name: name}
	}
	return nil
}

// Merge adds every schema of other. Nothing is added if any of them collides.
func (c *Components) Merge(other *Components) error {
	var err error
	other.schemas.Each(func(name string, schema jsonschema.Schema) bool {
		existing, ok := c.schemas.Get(name)
		if !ok {
			return true
		}

		var equal bool
		equal, err = jsonEqual(&existing, &schema)
		if err == nil && !equal {
			err = &ComponentNameCollisionError{Name: name}
		}
		return err == nil
	})
	if err != nil {
		return err
	}

	other.schemas.Each(func(name string, schema jsonschema.Schema) bool {
		if _, ok := c.schemas.Get(name); !ok {
			c.schemas.Set(name, schema)
		}
		return true
	})
	return nil
}

// Schema returns the schema registered under name.
func (c *Components) Schema(name string) (jsonschema.Schema, bool) {
	return c.schemas.Get(name)
}

// Names returns the registered names in insertion order.
func (c *Components) Names() []string {
	return c.schemas.Keys()
}

// Len returns the number of registered schemas.
func (c *Components) Len() int {
	return c.schemas.Len()
}

// MarshalJSON implements the [json.Marshaler] interface.
func (c *Components) MarshalJSON() ([]byte, error) {
	return c.schemas.MarshalJSON()
}

func (c *Components) clone() *Components {
	return &Components{schemas: *c.schemas.Clone()}
}
