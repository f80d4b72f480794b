// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package openapi

import (
	"reflect"
	"slices"
	"strings"

	"github.com/swaggest/jsonschema-go"
	"github.com/z5labs/trellis/concurrent"
)

// ComponentsPrefix is the reference prefix of schemas registered in [Components].
const ComponentsPrefix = "#/components/schemas/"

// Entity is implemented by types which describe their own schema. Named
// schemas the type depends on should be registered in the given [Components]
// and any failure to register them returned.
//
// Describe is called on the zero value of the type.
type Entity interface {
	Describe(*Components) (jsonschema.Schema, error)
}

var entityType = reflect.TypeFor[Entity]()

type definition struct {
	name   string
	schema jsonschema.Schema
}

type reflected struct {
	schema jsonschema.Schema
	defs   []definition
}

var reflectedSchemas = concurrent.NewCache[reflect.Type, reflected]()

// Describe returns the schema of values of type t. Named struct types are
// registered in comps and referenced from the returned schema.
//
// Pointers describe their element as nullable, slices and arrays as an
// array of their element and string keyed maps as an object whose
// additional properties are their element. Types implementing [Entity]
// describe themselves and anything else is reflected.
func Describe(t reflect.Type, comps *Components) (jsonschema.Schema, error) {
	switch {
	case t.Kind() == reflect.Interface:
	case t.Implements(entityType):
		return reflect.Zero(t).Interface().(Entity).Describe(comps)
	case reflect.PointerTo(t).Implements(entityType):
		return reflect.New(t).Interface().(Entity).Describe(comps)
	}

	switch t.Kind() {
	case reflect.Pointer:
		inner, err := Describe(t.Elem(), comps)
		if err != nil {
			return inner, err
		}
		return nullable(inner), nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			break
		}
		inner, err := Describe(t.Elem(), comps)
		if err != nil {
			return inner, err
		}

		var s jsonschema.Schema
		s.WithType(jsonschema.Array.Type())
		s.WithItems(*(&jsonschema.Items{}).WithSchemaOrBool(inner.ToSchemaOrBool()))
		return s, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			break
		}
		inner, err := Describe(t.Elem(), comps)
		if err != nil {
			return inner, err
		}

		var s jsonschema.Schema
		s.WithType(jsonschema.Object.Type())
		s.WithAdditionalProperties(inner.ToSchemaOrBool())
		return s, nil
	case reflect.Interface:
		return jsonschema.Schema{}, nil
	}

	r, err := reflectedSchemas.GetOr(t, func() (reflected, error) {
		return reflectSchema(t)
	})
	if err != nil {
		return jsonschema.Schema{}, err
	}

	for _, def := range r.defs {
		err := comps.Add(def.name, def.schema)
		if err != nil {
			return jsonschema.Schema{}, err
		}
	}
	return r.schema, nil
}

func reflectSchema(t reflect.Type) (reflected, error) {
	var defs []definition
	var reflector jsonschema.Reflector

	schema, err := reflector.Reflect(
		reflect.New(t).Elem().Interface(),
		jsonschema.RootRef,
		jsonschema.DefinitionsPrefix(ComponentsPrefix),
		jsonschema.CollectDefinitions(func(name string, schema jsonschema.Schema) {
			defs = append(defs, definition{name: name, schema: schema})
		}),
	)
	if err != nil {
		return reflected{}, err
	}

	slices.SortFunc(defs, func(a, b definition) int {
		return strings.Compare(a.name, b.name)
	})

	return reflected{schema: schema, defs: defs}, nil
}

// References are left untouched since siblings of a $ref are ignored.
func nullable(s jsonschema.Schema) jsonschema.Schema {
	if s.Ref != nil || s.Type == nil || s.Type.SimpleTypes == nil {
		return s
	}

	s.WithType(jsonschema.Type{
		SliceOfSimpleTypeValues: []jsonschema.SimpleType{*s.Type.SimpleTypes, jsonschema.Null},
	})
	return s
}
