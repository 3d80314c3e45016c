package ml

import (
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// Result is one loss evaluation and how long it took.
type Result struct {
	Loss    float64
	Grad    *Matrix
	Elapsed time.Duration
}

// Comparison holds the naive and vectorized results for the same inputs.
type Comparison struct {
	Naive      Result
	Vectorized Result

	LossDiff float64 // |naive - vectorized|
	GradDiff float64 // Frobenius norm of dW_naive - dW_vectorized
}

func timed(fn LossFunc, W, X *Matrix, y []int, reg float64, opts []LossOption) (Result, error) {
	start := time.Now()
	loss, grad, err := fn(W, X, y, reg, opts...)
	if err != nil {
		return Result{}, err
	}
	return Result{Loss: loss, Grad: grad, Elapsed: time.Since(start)}, nil
}

// Compare evaluates NaiveLoss and VectorizedLoss on the same inputs.
func Compare(W, X *Matrix, y []int, reg float64, opts ...LossOption) (Comparison, error) {
	naive, err := timed(NaiveLoss, W, X, y, reg, opts)
	if err != nil {
		return Comparison{}, fmt.Errorf("naive: %w", err)
	}
	vec, err := timed(VectorizedLoss, W, X, y, reg, opts)
	if err != nil {
		return Comparison{}, fmt.Errorf("vectorized: %w", err)
	}

	diff := naive.Grad.Clone()
	diff.Subtract(vec.Grad)

	return Comparison{
		Naive:      naive,
		Vectorized: vec,
		LossDiff:   math.Abs(naive.Loss - vec.Loss),
		GradDiff:   mat.Norm(diff.dense, 2),
	}, nil
}

// Speedup is how many times faster the vectorized run was.
func (c Comparison) Speedup() float64 {
	if c.Vectorized.Elapsed <= 0 {
		return math.Inf(1)
	}
	return float64(c.Naive.Elapsed) / float64(c.Vectorized.Elapsed)
}

// Match reports whether both losses and every gradient entry agree within tol,
// absolute or relative.
func (c Comparison) Match(tol float64) bool {
	if !scalar.EqualWithinAbsOrRel(c.Naive.Loss, c.Vectorized.Loss, tol, tol) {
		return false
	}
	a, b := c.Naive.Grad.data, c.Vectorized.Grad.data
	for i := range a {
		if !scalar.EqualWithinAbsOrRel(a[i], b[i], tol, tol) {
			return false
		}
	}
	return true
}

// Report prints the comparison the way a notebook cell would.
func (c Comparison) Report(w io.Writer) {
	fmt.Fprintf(w, "Naive loss: %e computed in %v\n", c.Naive.Loss, c.Naive.Elapsed)
	fmt.Fprintf(w, "Vectorized loss: %e computed in %v\n", c.Vectorized.Loss, c.Vectorized.Elapsed)
	fmt.Fprintf(w, "Loss difference: %e\n", c.LossDiff)
	fmt.Fprintf(w, "Gradient difference: %e\n", c.GradDiff)
	fmt.Fprintf(w, "Speedup: %.1fx\n", c.Speedup())
}
