package decisiontree

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// FitStump returns the stump minimising the squared error of residual over the rows of x, with
// each leaf set to the mean residual on its side. Thresholds fall halfway between adjacent
// distinct values. ok is false if no column of x takes two distinct values.
func FitStump(x mat.Matrix, residual []float64) (stump Tree, ok bool) {
	rows, features := x.Dims()
	var total float64
	for _, r := range residual {
		total += r
	}

	var bestGain float64
	order := make([]int, rows)
	for f := 0; f < features; f++ {
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return x.At(order[a], f) < x.At(order[b], f) })

		var left float64
		for k := 1; k < rows; k++ {
			left += residual[order[k-1]]
			lo, hi := x.At(order[k-1], f), x.At(order[k], f)
			if lo == hi {
				continue
			}
			nl, nr := float64(k), float64(rows-k)
			right := total - left
			// reduction in squared error relative to predicting the overall mean
			gain := left*left/nl + right*right/nr - total*total/float64(rows)
			if !ok || gain > bestGain {
				ok, bestGain = true, gain
				stump = NewStump(features, f, (lo+hi)/2, left/nl, right/nr)
			}
		}
	}
	return stump, ok
}
