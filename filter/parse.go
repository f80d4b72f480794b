// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package filter

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	timeType            = reflect.TypeFor[time.Time]()
	durationType        = reflect.TypeFor[time.Duration]()
)

// Parsable reports whether a single string can be parsed into a value of type t.
func Parsable(t reflect.Type) bool {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	if t == timeType || t == durationType {
		return true
	}

	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Pointer:
		return Parsable(t.Elem())
	default:
		return false
	}
}

// setValue sets v from its string form, converting types as needed.
// It supports:
//   - encoding.TextUnmarshaler (highest priority)
//   - time.Time (RFC 3339) and time.Duration
//   - primitive kinds and named types of them
//   - pointers to any of the above
func setValue(v reflect.Value, s string) error {
	if v.Kind() == reflect.Pointer {
		elem := reflect.New(v.Type().Elem())
		err := setValue(elem.Elem(), s)
		if err != nil {
			return err
		}
		v.Set(elem)
		return nil
	}

	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok && v.Type() != timeType {
			return u.UnmarshalText([]byte(s))
		}
	}

	switch v.Type() {
	case timeType:
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(t))
		return nil
	case durationType:
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(d))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(u)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported type: %s", v.Type())
	}
	return nil
}

// setValues sets v from every occurrence of a parameter. Slices receive all
// of them, anything else only the first.
func setValues(v reflect.Value, ss []string) error {
	if v.Kind() != reflect.Slice || v.Type().Elem().Kind() == reflect.Uint8 {
		return setValue(v, ss[0])
	}

	slice := reflect.MakeSlice(v.Type(), len(ss), len(ss))
	for i, s := range ss {
		err := setValue(slice.Index(i), s)
		if err != nil {
			return err
		}
	}
	v.Set(slice)
	return nil
}

// decodeValues decodes url values into a struct using reflection.
// It looks for "form" then "query" struct tags to map keys to fields and
// falls back to the lower cased field name. Fields tagged required:"true"
// must be present.
func decodeValues(values map[string][]string, dst reflect.Value, in string) error {
	if dst.Kind() != reflect.Struct {
		return errors.New("destination must be a struct")
	}

	t := dst.Type()
	for i := 0; i < dst.NumField(); i++ {
		field := dst.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}

		key := fieldKey(fieldType)
		if key == "-" {
			continue
		}

		ss, ok := values[key]
		if !ok || len(ss) == 0 {
			required, _ := strconv.ParseBool(fieldType.Tag.Get("required"))
			if required {
				return MissingParameterError{Parameter: key, In: in}
			}
			continue
		}

		err := setValues(field, ss)
		if err != nil {
			return InvalidParameterError{Parameter: key, In: in, Cause: err}
		}
	}
	return nil
}

func fieldKey(f reflect.StructField) string {
	for _, tag := range []string{"form", "query"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

// FieldKey returns the url value key [decodeValues] uses for a struct field.
func FieldKey(f reflect.StructField) string {
	return fieldKey(f)
}
