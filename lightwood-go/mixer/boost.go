package mixer

import (
	"io"

	"github.com/vbrnv/lightwood/lightwood-golib/decisiontree"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/mat"
)

// BoostOptions configures gradient boosting.
type BoostOptions struct {
	Rounds       int
	LearningRate float64
}

// DefaultBoostOptions are used by the registry.
var DefaultBoostOptions = BoostOptions{
	Rounds:       100,
	LearningRate: 0.1,
}

// LightGBMMixer fits a single output with gradient-boosted regression stumps under squared loss.
type LightGBMMixer struct {
	opts     BoostOptions
	features int
	ensemble *decisiontree.Ensemble
}

// NewLightGBM returns an unfitted booster.
func NewLightGBM(opts BoostOptions) *LightGBMMixer {
	return &LightGBMMixer{opts: opts}
}

// Name implements Mixer
func (b *LightGBMMixer) Name() Name { return LightGBM }

// Fit implements Mixer
func (b *LightGBMMixer) Fit(x, y *mat.Dense) error {
	_, features, outputs, err := checkFit(x, y)
	if err != nil {
		return err
	}
	if outputs != 1 {
		return errors.Wrapf(ErrShapeMismatch, "%s predicts one output, got %d; use %s", LightGBM, outputs, LightGBMArray)
	}
	b.ensemble = boost(x, mat.Col(nil, 0, y), b.opts)
	b.features = features
	return nil
}

// Predict implements Mixer
func (b *LightGBMMixer) Predict(x *mat.Dense) (*mat.Dense, error) {
	rows, err := checkPredict(b.ensemble != nil, x, b.features)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(rows, 1, b.ensemble.EvaluateRows(x)), nil
}

// Save writes the fitted ensemble as JSON.
func (b *LightGBMMixer) Save(w io.Writer) error {
	if b.ensemble == nil {
		return ErrNotFitted
	}
	return b.ensemble.Save(w)
}

// LightGBMArrayMixer boosts one ensemble per output column, e.g. per forecast horizon step.
type LightGBMArrayMixer struct {
	opts     BoostOptions
	features int
	steps    []*decisiontree.Ensemble
}

// NewLightGBMArray returns an unfitted array booster.
func NewLightGBMArray(opts BoostOptions) *LightGBMArrayMixer {
	return &LightGBMArrayMixer{opts: opts}
}

// Name implements Mixer
func (b *LightGBMArrayMixer) Name() Name { return LightGBMArray }

// Fit implements Mixer
func (b *LightGBMArrayMixer) Fit(x, y *mat.Dense) error {
	_, features, outputs, err := checkFit(x, y)
	if err != nil {
		return err
	}
	steps := make([]*decisiontree.Ensemble, outputs)
	for j := range steps {
		steps[j] = boost(x, mat.Col(nil, j, y), b.opts)
	}
	b.features, b.steps = features, steps
	return nil
}

// Predict implements Mixer
func (b *LightGBMArrayMixer) Predict(x *mat.Dense) (*mat.Dense, error) {
	rows, err := checkPredict(b.steps != nil, x, b.features)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, len(b.steps), nil)
	for j, e := range b.steps {
		out.SetCol(j, e.EvaluateRows(x))
	}
	return out, nil
}

func boost(x *mat.Dense, y []float64, opts BoostOptions) *decisiontree.Ensemble {
	rows, _ := x.Dims()
	var base float64
	for _, v := range y {
		base += v
	}
	base /= float64(rows)

	ensemble := &decisiontree.Ensemble{Base: base}
	residual := make([]float64, rows)
	for i := range residual {
		residual[i] = y[i] - base
	}

	for round := 0; round < opts.Rounds; round++ {
		stump, ok := decisiontree.FitStump(x, residual)
		if !ok {
			break
		}
		ensemble.Add(stump, opts.LearningRate, x, residual)
	}
	return ensemble
}
