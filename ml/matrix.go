package ml

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Matrix represents a dense matrix with a flat data slice for performance.
type Matrix struct {
	rows, cols int
	data       []float64
	dense      *mat.Dense
}

// -------- CONSTRUCTORS ------- //
func NewMatrix(rows, cols int) *Matrix {
	data := make([]float64, rows*cols)
	return &Matrix{
		rows:  rows,
		cols:  cols,
		data:  data,
		dense: mat.NewDense(rows, cols, data),
	}
}

func NewMatrixFromSlice(rows, cols int, data []float64) *Matrix {
	if len(data) != rows*cols {
		panic("Slice length mismatch")
	}

	return &Matrix{
		rows:  rows,
		cols:  cols,
		data:  data,
		dense: mat.NewDense(rows, cols, data),
	}
}

// ColumnMatrix builds a [D, N] matrix whose columns are the given samples.
// Every row of samples must have the same length D.
func ColumnMatrix(samples [][]float64) *Matrix {
	if len(samples) == 0 {
		panic("ColumnMatrix: no samples")
	}
	n, d := len(samples), len(samples[0])
	m := NewMatrix(d, n)
	for i, s := range samples {
		if len(s) != d {
			panic(fmt.Sprintf("ColumnMatrix: sample %d has %d features, want %d", i, len(s), d))
		}
		for k, v := range s {
			m.data[k*n+i] = v
		}
	}
	return m
}

// ------- MATRIX METHODS ------ //
func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }

func (m *Matrix) At(i, j int) float64 { return m.dense.At(i, j) }

func (m *Matrix) Set(i, j int, v float64) { m.dense.Set(i, j, v) }

// Data exposes the row-major backing slice. Writes are visible through the matrix.
func (m *Matrix) Data() []float64 { return m.data }

func (m *Matrix) Clone() *Matrix {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return NewMatrixFromSlice(m.rows, m.cols, data)
}

// Randomize fills the matrix with N(0, 2/rows) samples (He init).
func (m *Matrix) Randomize() {
	scale := math.Sqrt(2.0 / float64(m.rows))
	for i := range m.data {
		m.data[i] = rand.NormFloat64() * scale
	}
}

// RandomizeNormal fills the matrix with N(0, std^2) samples drawn from rng.
func (m *Matrix) RandomizeNormal(rng *rand.Rand, std float64) {
	for i := range m.data {
		m.data[i] = rng.NormFloat64() * std
	}
}

func (m *Matrix) Reset() {
	for i := range m.data {
		m.data[i] = 0.0
	}
}

func (m *Matrix) Subtract(b *Matrix) {
	m.dense.Sub(m.dense, b.dense)
}

// ApplyRelu clamps negative entries to zero in place.
func (m *Matrix) ApplyRelu() {
	for i, v := range m.data {
		if v < 0 {
			m.data[i] = 0
		}
	}
}

func (m *Matrix) ApplyFunc(fn func(float64) float64) {
	for i := range m.data {
		m.data[i] = fn(m.data[i])
	}
}

// ------ UTILITY FUNCTIONS ------
func MatMul(a, b mat.Matrix, out *Matrix) {
	out.dense.Mul(a, b)
}

// MatMul using pure go (no BLAS)
func MatMulGo(a, b, out *Matrix) {
	const blockSize = 64
	if a.cols != b.rows || out.rows != a.rows || out.cols != b.cols {
		panic("Shape mismatch")
	}
	out.Reset()
	for i := 0; i < a.rows; i += blockSize {
		for j := 0; j < b.cols; j += blockSize {
			for k := 0; k < a.cols; k += blockSize {
				iMax, jMax, kMax := min(i+blockSize, a.rows), min(j+blockSize, b.cols), min(k+blockSize, a.cols)
				for ii := i; ii < iMax; ii++ {
					rowOffsetOut := ii * out.cols
					for kk := k; kk < kMax; kk++ {
						scalar := a.data[ii*a.cols+kk]
						rowOffsetB := kk * b.cols
						for jj := j; jj < jMax; jj++ {
							out.data[rowOffsetOut+jj] += scalar * b.data[rowOffsetB+jj]
						}
					}
				}
			}
		}
	}
}

func Flatten(input [][]float64) []float64 {
	if len(input) == 0 {
		return nil
	}
	rows, cols := len(input), len(input[0])
	flat := make([]float64, rows*cols)
	for i, row := range input {
		copy(flat[i*cols:], row)
	}
	return flat
}
