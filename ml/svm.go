package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNilMatrix             = errors.New("svm: nil matrix")
	ErrDimensionMismatch     = errors.New("svm: dimension mismatch")
	ErrLabelOutOfRange       = errors.New("svm: label out of range")
	ErrInvalidRegularization = errors.New("svm: regularization must be a finite non-negative number")
	ErrNonFinite             = errors.New("svm: non-finite matrix entry")
)

// Default settings for the structured SVM loss.
var DefaultLossConfig = LossConfig{
	Delta: 1.0,
}

// -------- TYPE DEFINITIONS -------- //
type LossOption func(*LossConfig)

// LossConfig holds the hyperparameters of the hinge loss.
type LossConfig struct {
	Delta float64 // Required gap between the correct score and every other score
}

// LossFunc is the shared signature of NaiveLoss and VectorizedLoss.
type LossFunc func(W, X *Matrix, y []int, reg float64, opts ...LossOption) (float64, *Matrix, error)

// Margin overrides the hinge margin (delta). The default is 1.
func Margin(delta float64) LossOption {
	return func(c *LossConfig) {
		c.Delta = delta
	}
}

func newLossConfig(opts []LossOption) LossConfig {
	cfg := DefaultLossConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// validateInputs checks the W [C, D], X [D, N], y [N] contract.
func validateInputs(W, X *Matrix, y []int, reg float64) error {
	if W == nil || X == nil {
		return ErrNilMatrix
	}
	if W.cols != X.rows {
		return fmt.Errorf("W is [%d, %d] but X is [%d, %d]: %w", W.rows, W.cols, X.rows, X.cols, ErrDimensionMismatch)
	}
	if X.cols != len(y) {
		return fmt.Errorf("X has %d columns but y has %d labels: %w", X.cols, len(y), ErrDimensionMismatch)
	}
	if len(y) == 0 {
		return fmt.Errorf("no training examples: %w", ErrDimensionMismatch)
	}
	for i, label := range y {
		if label < 0 || label >= W.rows {
			return fmt.Errorf("y[%d] = %d, want [0, %d): %w", i, label, W.rows, ErrLabelOutOfRange)
		}
	}
	if reg < 0 || math.IsNaN(reg) || math.IsInf(reg, 0) {
		return fmt.Errorf("reg = %v: %w", reg, ErrInvalidRegularization)
	}
	if k := firstNonFinite(W.data); k >= 0 {
		return fmt.Errorf("W[%d, %d] = %v: %w", k/W.cols, k%W.cols, W.data[k], ErrNonFinite)
	}
	if k := firstNonFinite(X.data); k >= 0 {
		return fmt.Errorf("X[%d, %d] = %v: %w", k/X.cols, k%X.cols, X.data[k], ErrNonFinite)
	}
	return nil
}

// firstNonFinite returns the index of the first NaN or ±Inf in s, or -1.
func firstNonFinite(s []float64) int {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// NaiveLoss computes the structured SVM loss and its gradient with explicit loops.
//
// W is [C, D], X is [D, N] with one sample per column, y holds N labels in [0, C).
// Returns the loss averaged over N plus 0.5*reg*||W||^2, and dW with W's shape.
func NaiveLoss(W, X *Matrix, y []int, reg float64, opts ...LossOption) (float64, *Matrix, error) {
	if err := validateInputs(W, X, y, reg); err != nil {
		return 0, nil, err
	}
	cfg := newLossConfig(opts)

	numClasses, dim := W.rows, W.cols
	numTrain := X.cols
	dW := NewMatrix(numClasses, dim)

	wData, xData, dwData := W.data, X.data, dW.data
	loss := 0.0

	for i := 0; i < numTrain; i++ {
		yi := y[i]

		// Score of the correct class: W[y_i] . X[:, i]
		correct := 0.0
		for k := 0; k < dim; k++ {
			correct += wData[yi*dim+k] * xData[k*numTrain+i]
		}

		for j := 0; j < numClasses; j++ {
			if j == yi {
				continue
			}
			score := 0.0
			for k := 0; k < dim; k++ {
				score += wData[j*dim+k] * xData[k*numTrain+i]
			}

			margin := score - correct + cfg.Delta
			if margin > 0 {
				loss += margin
				// dL/dW_j = x_i, dL/dW_yi = -x_i
				for k := 0; k < dim; k++ {
					x := xData[k*numTrain+i]
					dwData[j*dim+k] += x
					dwData[yi*dim+k] -= x
				}
			}
		}
	}

	// Average over training examples
	scale := 1.0 / float64(numTrain)
	loss *= scale

	// Regularization
	sumSq := 0.0
	for k, w := range wData {
		sumSq += w * w
		dwData[k] = dwData[k]*scale + reg*w
	}
	loss += 0.5 * reg * sumSq

	return loss, dW, nil
}

// VectorizedLoss computes the same loss and gradient as NaiveLoss with
// whole-matrix operations. It allocates several [C, N] temporaries.
func VectorizedLoss(W, X *Matrix, y []int, reg float64, opts ...LossOption) (float64, *Matrix, error) {
	if err := validateInputs(W, X, y, reg); err != nil {
		return 0, nil, err
	}
	cfg := newLossConfig(opts)

	numClasses, numTrain := W.rows, X.cols

	// 1. Scores [C, N]
	scores := NewMatrix(numClasses, numTrain)
	MatMul(W.dense, X.dense, scores)

	// 2. Broadcast correct scores down every column: ones[C, 1] x correct[1, N]
	correctRow := make([]float64, numTrain)
	for i, yi := range y {
		correctRow[i] = scores.data[yi*numTrain+i]
	}
	ones := make([]float64, numClasses)
	floats.AddConst(1, ones)
	correct := NewMatrix(numClasses, numTrain)
	MatMul(mat.NewDense(numClasses, 1, ones), mat.NewDense(1, numTrain, correctRow), correct)

	// 3-5. Margins, hinged, correct class excluded
	margins := scores.Clone()
	margins.Subtract(correct)
	floats.AddConst(cfg.Delta, margins.data)
	margins.ApplyRelu()
	for i, yi := range y {
		margins.data[yi*numTrain+i] = 0
	}

	// 6. Loss
	scale := 1.0 / float64(numTrain)
	loss := floats.Sum(margins.data)*scale + 0.5*reg*floats.Dot(W.data, W.data)

	// 7. Gradient. Each violated margin adds x_i to row j and -x_i to row y_i,
	// so the correct class row carries minus the violation count of its column.
	indicator := margins.Clone()
	indicator.ApplyFunc(func(v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	})

	counts := NewMatrix(1, numTrain)
	MatMul(mat.NewDense(1, numClasses, ones), indicator.dense, counts)
	for i, yi := range y {
		indicator.data[yi*numTrain+i] = -counts.data[i]
	}

	dW := NewMatrix(numClasses, W.cols)
	MatMul(indicator.dense, X.dense.T(), dW)
	floats.Scale(scale, dW.data)
	floats.AddScaled(dW.data, reg, W.data)

	return loss, dW, nil
}
