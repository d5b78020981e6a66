package mixer

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// UnitMixer is the trivial baseline: it predicts the training mean of every output.
type UnitMixer struct {
	features int
	means    []float64
}

// NewUnit returns an unfitted baseline.
func NewUnit() *UnitMixer {
	return &UnitMixer{}
}

// Name implements Mixer
func (u *UnitMixer) Name() Name { return Unit }

// Fit implements Mixer
func (u *UnitMixer) Fit(x, y *mat.Dense) error {
	_, features, outputs, err := checkFit(x, y)
	if err != nil {
		return err
	}
	means := make([]float64, outputs)
	for j := range means {
		m, err := stats.Mean(mat.Col(nil, j, y))
		if err != nil {
			return err
		}
		means[j] = m
	}
	u.features, u.means = features, means
	return nil
}

// Predict implements Mixer
func (u *UnitMixer) Predict(x *mat.Dense) (*mat.Dense, error) {
	rows, err := checkPredict(u.means != nil, x, u.features)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, len(u.means), nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, u.means)
	}
	return out, nil
}
