// Package arithm implements the prime-order group G, its associated
// scalar ring Z_q, and the product/array composites over each that the
// shuffle proof engine in package hvzk is built from.
//
// Every element carries a reference to the Carrier (Group or Ring) that
// produced it; operations dispatch through that carrier and mixing
// elements from incompatible carriers is an *ArithmeticError, never a
// silent wrong answer. Product carriers (G^k) are built by composing
// factor carriers, not by subclassing, following the "tagged variant,
// no deep inheritance" guidance for this kind of small algebra.
package arithm

import "fmt"

// ArithmeticError signals mismatched parent carriers or mismatched
// array lengths. It always indicates an internal bug or a malicious
// caller and is never expected to be recovered from inside the core.
type ArithmeticError struct {
	Msg string
}

func (e *ArithmeticError) Error() string { return "arithm: " + e.Msg }

func arithmErrorf(format string, args ...interface{}) error {
	return &ArithmeticError{Msg: fmt.Sprintf(format, args...)}
}
