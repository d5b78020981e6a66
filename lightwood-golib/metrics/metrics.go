// Package metrics contains the scoring primitives used by the accuracy evaluator.
// Semantics follow the conventions of scikit-learn so scores are comparable
// across implementations.
package metrics

import (
	"github.com/montanaflynn/stats"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
)

var (
	// ErrLengthMismatch is returned when truth and predictions differ in length.
	ErrLengthMismatch = errors.New("metrics: truth and predictions have different lengths")
	// ErrEmpty is returned when there is nothing to score.
	ErrEmpty = errors.New("metrics: no samples to score")
)

func check(n, m int) error {
	if n != m {
		return errors.Wrapf(ErrLengthMismatch, "%d != %d", n, m)
	}
	if n == 0 {
		return ErrEmpty
	}
	return nil
}

// R2 is the coefficient of determination of yPred with respect to yTrue. It may be negative.
// When yTrue is constant the score is 1 for a perfect prediction and 0 otherwise.
func R2(yTrue, yPred []float64) (float64, error) {
	if err := check(len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	mean, err := stats.Mean(yTrue)
	if err != nil {
		return 0, err
	}
	var ssTot, ssRes float64
	for i := range yTrue {
		d := yTrue[i] - mean
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// Accuracy is the fraction of exact matches.
func Accuracy(yTrue, yPred []string) (float64, error) {
	if err := check(len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	var c int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue)), nil
}

// BalancedAccuracy is the mean recall over the classes present in yTrue.
func BalancedAccuracy(yTrue, yPred []string) (float64, error) {
	if err := check(len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	support := make(map[string]int)
	hits := make(map[string]int)
	for i, t := range yTrue {
		support[t]++
		if yPred[i] == t {
			hits[t]++
		}
	}
	var sum float64
	for class, n := range support {
		sum += float64(hits[class]) / float64(n)
	}
	return sum / float64(len(support)), nil
}

// WeightedF1 scores multi-hot rows: the F1 of every label weighted by its support in yTrue.
// Cells >= 0.5 count as set.
func WeightedF1(yTrue, yPred [][]float64) (float64, error) {
	if err := check(len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	width := len(yTrue[0])
	tp := make([]float64, width)
	fp := make([]float64, width)
	fn := make([]float64, width)
	for i := range yTrue {
		if len(yTrue[i]) != width || len(yPred[i]) != width {
			return 0, errors.Wrapf(ErrLengthMismatch, "row %d has width %d/%d, expected %d", i, len(yTrue[i]), len(yPred[i]), width)
		}
		for j := 0; j < width; j++ {
			t, p := yTrue[i][j] >= 0.5, yPred[i][j] >= 0.5
			switch {
			case t && p:
				tp[j]++
			case p:
				fp[j]++
			case t:
				fn[j]++
			}
		}
	}

	var weighted, total float64
	for j := 0; j < width; j++ {
		support := tp[j] + fn[j]
		total += support
		if denom := 2*tp[j] + fp[j] + fn[j]; denom > 0 {
			weighted += support * 2 * tp[j] / denom
		}
	}
	if total == 0 {
		return 0, nil
	}
	return weighted / total, nil
}

// Coverage is the fraction of truths t with lower <= t <= upper.
func Coverage(truth, lower, upper []float64) (float64, error) {
	if err := check(len(truth), len(lower)); err != nil {
		return 0, err
	}
	if err := check(len(truth), len(upper)); err != nil {
		return 0, err
	}
	var within int
	for i, t := range truth {
		if t >= lower[i] && t <= upper[i] {
			within++
		}
	}
	return float64(within) / float64(len(truth)), nil
}
