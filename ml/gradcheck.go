package ml

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/diff/fd"
)

// GradCheckStep is the finite-difference step used by GradCheckSparse.
const GradCheckStep = 1e-5

// GradCheck is the outcome of one probed coordinate of W.
type GradCheck struct {
	Row, Col int
	Numeric  float64
	Analytic float64
	RelErr   float64
}

func (g GradCheck) String() string {
	return fmt.Sprintf("numerical: %f analytic: %f, relative error: %e", g.Numeric, g.Analytic, g.RelErr)
}

// RelativeError returns |a-b| / (|a|+|b|), or 0 when both are 0.
func RelativeError(a, b float64) float64 {
	denom := math.Abs(a) + math.Abs(b)
	if denom == 0 {
		return 0
	}
	return math.Abs(a-b) / denom
}

// GradCheckSparse compares the analytic gradient returned by fn against a
// central-difference estimate at numChecks coordinates of W chosen by rng.
// W is perturbed during the check and restored before returning.
func GradCheckSparse(fn LossFunc, W, X *Matrix, y []int, reg float64, numChecks int, rng *rand.Rand, opts ...LossOption) ([]GradCheck, error) {
	if numChecks < 0 {
		return nil, fmt.Errorf("gradcheck: numChecks = %d, want >= 0", numChecks)
	}
	_, analytic, err := fn(W, X, y, reg, opts...)
	if err != nil {
		return nil, err
	}

	settings := &fd.Settings{Formula: fd.Central, Step: GradCheckStep}
	checks := make([]GradCheck, 0, numChecks)

	for n := 0; n < numChecks; n++ {
		row, col := rng.IntN(W.rows), rng.IntN(W.cols)
		idx := row*W.cols + col
		orig := W.data[idx]

		var probeErr error
		f := func(v float64) float64 {
			W.data[idx] = v
			loss, _, err := fn(W, X, y, reg, opts...)
			if err != nil && probeErr == nil {
				probeErr = err
			}
			return loss
		}
		numeric := fd.Derivative(f, orig, settings)
		W.data[idx] = orig
		if probeErr != nil {
			return nil, probeErr
		}

		a := analytic.data[idx]
		checks = append(checks, GradCheck{
			Row:      row,
			Col:      col,
			Numeric:  numeric,
			Analytic: a,
			RelErr:   RelativeError(numeric, a),
		})
	}
	return checks, nil
}
