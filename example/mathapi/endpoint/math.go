// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint implements the handlers of the math api.
package endpoint

import (
	"fmt"
	"net/http"

	"github.com/z5labs/trellis/rest"
)

// Result is the outcome of an arithmetic operation.
type Result struct {
	Value uint64 `json:"value"`
}

// Operands are the form encoded inputs of a binary operation.
type Operands struct {
	A uint64 `form:"a" required:"true"`
	B uint64 `form:"b" required:"true"`
}

// DivisionByZeroError is returned when dividing by zero.
type DivisionByZeroError struct {
	rest.ProblemDetail
	Dividend uint64 `json:"dividend"`
}

// Sum adds a and b.
func Sum(a, b uint64) Result {
	return Result{Value: a + b}
}

// Product multiplies the operands.
func Product(in Operands) Result {
	return Result{Value: in.A * in.B}
}

// Divide divides a by b, rounding down.
func Divide(a, b uint64) (Result, error) {
	if b == 0 {
		return Result{}, DivisionByZeroError{
			ProblemDetail: rest.ProblemDetail{
				Type:   "about:blank",
				Title:  "Division By Zero",
				Status: http.StatusUnprocessableEntity,
				Detail: fmt.Sprintf("can not divide %d by zero", a),
			},
			Dividend: a,
		}
	}
	return Result{Value: a / b}, nil
}
