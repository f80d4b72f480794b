// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package filter

import (
	"encoding/json"
	"io"
	"mime"
	"reflect"

	"github.com/z5labs/sdk-go/try"
)

// Extractor is implemented by types which know how to extract
// themselves from a request. The method must have a pointer receiver.
type Extractor interface {
	ExtractFrom(*Context) error
}

var extractorType = reflect.TypeFor[Extractor]()

// IsExtractor reports whether *t implements [Extractor].
func IsExtractor(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(extractorType)
}

// Self extracts a value of type t by calling its [Extractor] implementation.
func Self(t reflect.Type) Filter {
	return Func(func(c *Context) error {
		v := reflect.New(t)
		err := v.Interface().(Extractor).ExtractFrom(c)
		if err != nil {
			return err
		}
		c.Push(v.Elem().Interface())
		return nil
	})
}

// Header extracts the named request header as a value of type t.
// Pointer typed headers are optional.
func Header(name string, t reflect.Type) Filter {
	return Func(func(c *Context) error {
		ss := c.Request.Header.Values(name)
		return pushParameter(c, name, "header", t, ss)
	})
}

// Cookie extracts the named cookie as a value of type t.
// Pointer typed cookies are optional.
func Cookie(name string, t reflect.Type) Filter {
	return Func(func(c *Context) error {
		var ss []string
		cookie, err := c.Request.Cookie(name)
		if err == nil {
			ss = append(ss, cookie.Value)
		}
		return pushParameter(c, name, "cookie", t, ss)
	})
}

func pushParameter(c *Context, name, in string, t reflect.Type, ss []string) error {
	v := reflect.New(t).Elem()
	if len(ss) == 0 {
		if t.Kind() != reflect.Pointer {
			return BadRequestError{
				Cause: MissingParameterError{
					Parameter: name,
					In:        in,
				},
			}
		}
		c.Push(v.Interface())
		return nil
	}

	err := setValues(v, ss)
	if err != nil {
		return BadRequestError{
			Cause: InvalidParameterError{
				Parameter: name,
				In:        in,
				Cause:     err,
			},
		}
	}
	c.Push(v.Interface())
	return nil
}

// Query extracts the query string. A string typed t receives the raw
// query while a struct typed t has its fields decoded from the query values.
func Query(t reflect.Type) Filter {
	return Func(func(c *Context) error {
		if t.Kind() == reflect.String {
			v := reflect.New(t).Elem()
			v.SetString(c.Request.URL.RawQuery)
			c.Push(v.Interface())
			return nil
		}

		v := reflect.New(t).Elem()
		err := decodeValues(c.Request.URL.Query(), v, "query")
		if err != nil {
			return BadRequestError{Cause: err}
		}
		c.Push(v.Interface())
		return nil
	})
}

func checkContentType(c *Context, want string) error {
	contentType := c.Request.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != want {
		return BadRequestError{
			Cause: InvalidContentTypeError{
				ContentType: contentType,
			},
		}
	}
	return nil
}

// JSON decodes the application/json request body into a value of type t.
func JSON(t reflect.Type) Filter {
	return Func(func(c *Context) (err error) {
		err = checkContentType(c, "application/json")
		if err != nil {
			return err
		}

		body, err := c.TakeBody()
		if err != nil {
			return err
		}
		defer try.Close(&err, body)

		v := reflect.New(t)
		dec := json.NewDecoder(body)
		err = dec.Decode(v.Interface())
		if err != nil {
			return BadRequestError{Cause: err}
		}
		c.Push(v.Elem().Interface())
		return nil
	})
}

// Form decodes the application/x-www-form-urlencoded request body into
// a struct of type t.
func Form(t reflect.Type) Filter {
	return Func(func(c *Context) error {
		err := checkContentType(c, "application/x-www-form-urlencoded")
		if err != nil {
			return err
		}

		_, err = c.TakeBody()
		if err != nil {
			return err
		}

		err = c.Request.ParseForm()
		if err != nil {
			return BadRequestError{Cause: err}
		}

		v := reflect.New(t).Elem()
		err = decodeValues(c.Request.PostForm, v, "formData")
		if err != nil {
			return BadRequestError{Cause: err}
		}
		c.Push(v.Interface())
		return nil
	})
}

// Body reads the raw request body as a []byte or string typed t.
func Body(t reflect.Type) Filter {
	return Func(func(c *Context) (err error) {
		body, err := c.TakeBody()
		if err != nil {
			return err
		}
		defer try.Close(&err, body)

		b, err := io.ReadAll(body)
		if err != nil {
			return err
		}

		v := reflect.New(t).Elem()
		if t.Kind() == reflect.String {
			v.SetString(string(b))
		} else {
			v.SetBytes(b)
		}
		c.Push(v.Interface())
		return nil
	})
}
