// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package try folds cleanup failures into a function's returned error.
package try

import (
	"errors"
	"io"
)

// Close closes c and joins its failure, if any, into *err. Use it in a
// defer with a named error result.
func Close(err *error, c io.Closer) {
	*err = errors.Join(*err, c.Close())
}
