// Package power raises numbers to natural powers, once with a loop and
// once by recursing on the exponent.
package power

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Entry

// ErrExponent is returned when the recursive variant is asked for an
// exponent that never reaches the base case.
var ErrExponent = errors.New("exponent must be at least 1")

func init() {
	logger = logrus.WithField("package", "power")
}

// Iterative multiplies a running product, starting at 1, by x n times.
// For n <= 0 the loop never runs and the result is 1.
func Iterative(x float64, n int) float64 {
	result := 1.0

	for i := 0; i < n; i++ {
		result *= x
	}

	return result
}

// Recursive returns x raised to n by reducing it to x * x^(n-1) until
// n reaches 1. The recursion is exactly n calls deep.
func Recursive(x float64, n int) (float64, error) {
	if n < 1 {
		logger.WithFields(logrus.Fields{
			"x": x,
			"n": n,
		}).Debug("refusing exponent below base case")

		return 0, fmt.Errorf("power(%v, %v): %w", x, n, ErrExponent)
	}

	return recurse(x, n), nil
}

func recurse(x float64, n int) float64 {
	if n == 1 {
		return x
	}

	return x * recurse(x, n-1)
}
