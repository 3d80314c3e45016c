package data

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Blobs draws n samples from a Gaussian mixture with one component per class.
// Class means are drawn from N(0, 1) per feature; each sample is its class mean
// plus N(0, spread^2) noise. Returns the samples as rows and their labels.
func Blobs(rng *rand.Rand, numClasses, dim, n int, spread float64) ([][]float64, []int) {
	if numClasses <= 0 || dim <= 0 || n <= 0 {
		panic("Blobs: numClasses, dim and n must be positive")
	}

	means := make([][]float64, numClasses)
	for c := range means {
		means[c] = make([]float64, dim)
		for k := range means[c] {
			means[c][k] = rng.NormFloat64()
		}
	}

	rows := make([][]float64, n)
	labels := make([]int, n)
	for i := range rows {
		label := rng.IntN(numClasses)
		row := make([]float64, dim)
		for k := range row {
			row[k] = means[label][k] + rng.NormFloat64()*spread
		}
		rows[i] = row
		labels[i] = label
	}
	return rows, labels
}

// SubtractMean centers every feature in place and returns the per-feature mean.
func SubtractMean(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	mean := make([]float64, len(rows[0]))
	for _, row := range rows {
		floats.Add(mean, row)
	}
	floats.Scale(1.0/float64(len(rows)), mean)

	for _, row := range rows {
		floats.Sub(row, mean)
	}
	return mean
}

// AppendBias returns copies of rows with a constant 1 feature appended, so
// the bias can live in the last column of W.
func AppendBias(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		r := make([]float64, len(row)+1)
		copy(r, row)
		r[len(row)] = 1.0
		out[i] = r
	}
	return out
}
