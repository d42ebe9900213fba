package power

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Frame is one execution context of the recursive power: its own copy
// of x and n, suspended until the nested call it made returns.
type Frame struct {
	Depth int     `json:"depth"`
	X     float64 `json:"x"`
	N     int     `json:"n"`
}

// String renders the frame as the step it performs, e.g.
// "power(2, 4) = 2 * power(2, 3)" or, at the base, "power(2, 1) = 2".
func (f Frame) String() string {
	x := formatFloat(f.X)
	if f.N == 1 {
		return fmt.Sprintf("power(%v, 1) = %v", x, x)
	}

	return fmt.Sprintf("power(%v, %v) = %v * power(%v, %v)", x, f.N, x, x, f.N-1)
}

// Result is the outcome of a traced recursive power.
type Result struct {
	Value float64 `json:"value"`
	// Depth is the most execution contexts that were pending at once.
	Depth  int     `json:"depth"`
	Frames []Frame `json:"frames"`
}

// Steps returns the rendered frames, outermost call first.
func (r Result) Steps() []string {
	steps := make([]string, 0, len(r.Frames))
	for _, f := range r.Frames {
		steps = append(steps, f.String())
	}

	return steps
}

type tracer struct {
	stack  []Frame
	frames []Frame
	max    int
}

func (t *tracer) power(x float64, n int) float64 {
	frame := Frame{Depth: len(t.stack) + 1, X: x, N: n}
	t.stack = append(t.stack, frame)
	defer func() { t.stack = t.stack[:len(t.stack)-1] }()

	t.frames = append(t.frames, frame)
	if len(t.stack) > t.max {
		t.max = len(t.stack)
	}

	if n == 1 {
		return x
	}

	return x * t.power(x, n-1)
}

// Trace computes the same value as Recursive while recording every
// execution context it pushes onto the call stack.
func Trace(x float64, n int) (Result, error) {
	logger := logger.WithFields(logrus.Fields{
		"x": x,
		"n": n,
	})

	if n < 1 {
		logger.Debug("refusing exponent below base case")
		return Result{}, fmt.Errorf("power(%v, %v): %w", x, n, ErrExponent)
	}

	t := &tracer{
		stack:  make([]Frame, 0, n),
		frames: make([]Frame, 0, n),
	}
	v := t.power(x, n)

	logger.WithField("depth", t.max).Debug("traced recursive power")

	return Result{
		Value:  v,
		Depth:  t.max,
		Frames: t.frames,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
