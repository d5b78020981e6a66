package mixer

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NeuralOptions configures NeuralMixer training.
type NeuralOptions struct {
	Epochs       int
	LearningRate float64
}

// DefaultNeuralOptions are used by the registry.
var DefaultNeuralOptions = NeuralOptions{
	Epochs:       500,
	LearningRate: 0.1,
}

// Normalizer standardises features as x = (x + Offset) * Scale.
type Normalizer struct {
	Offset []float64
	Scale  []float64
}

// Normalize returns a normalised copy of features.
func (n *Normalizer) Normalize(features []float64) []float64 {
	out := make([]float64, len(features))
	for i, f := range features {
		out[i] = (f + n.Offset[i]) * n.Scale[i]
	}
	return out
}

func fitNormalizer(x *mat.Dense) *Normalizer {
	rows, cols := x.Dims()
	n := &Normalizer{Offset: make([]float64, cols), Scale: make([]float64, cols)}
	for j := 0; j < cols; j++ {
		var sum, sq float64
		for i := 0; i < rows; i++ {
			sum += x.At(i, j)
		}
		mean := sum / float64(rows)
		for i := 0; i < rows; i++ {
			d := x.At(i, j) - mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(rows))
		if std == 0 {
			std = 1
		}
		n.Offset[j] = -mean
		n.Scale[j] = 1 / std
	}
	return n
}

// LinearScorer is a single linear unit.
type LinearScorer struct {
	Weights []float64
	Bias    float64
}

// Evaluate returns the inner product of the weights and features plus the bias.
func (l *LinearScorer) Evaluate(features []float64) float64 {
	score := l.Bias
	for i, f := range features {
		score += f * l.Weights[i]
	}
	return score
}

// NeuralMixer is a single-layer network with one linear unit per output, trained by
// full-batch gradient descent on normalised features.
type NeuralMixer struct {
	opts       NeuralOptions
	normalizer *Normalizer
	units      []LinearScorer
}

// NewNeural returns an unfitted network.
func NewNeural(opts NeuralOptions) *NeuralMixer {
	return &NeuralMixer{opts: opts}
}

// Name implements Mixer
func (n *NeuralMixer) Name() Name { return Neural }

// Fit implements Mixer
func (n *NeuralMixer) Fit(x, y *mat.Dense) error {
	rows, features, outputs, err := checkFit(x, y)
	if err != nil {
		return err
	}
	norm := fitNormalizer(x)
	inputs := make([][]float64, rows)
	for i := range inputs {
		inputs[i] = norm.Normalize(mat.Row(nil, i, x))
	}

	units := make([]LinearScorer, outputs)
	grad := make([]float64, features)
	for k := range units {
		unit := LinearScorer{Weights: make([]float64, features)}
		for epoch := 0; epoch < n.opts.Epochs; epoch++ {
			for j := range grad {
				grad[j] = 0
			}
			var gradBias float64
			for i, in := range inputs {
				e := unit.Evaluate(in) - y.At(i, k)
				for j, f := range in {
					grad[j] += e * f
				}
				gradBias += e
			}
			step := n.opts.LearningRate / float64(rows)
			for j := range unit.Weights {
				unit.Weights[j] -= step * grad[j]
			}
			unit.Bias -= step * gradBias
		}
		units[k] = unit
	}
	n.normalizer, n.units = norm, units
	return nil
}

// Predict implements Mixer
func (n *NeuralMixer) Predict(x *mat.Dense) (*mat.Dense, error) {
	var features int
	if n.normalizer != nil {
		features = len(n.normalizer.Offset)
	}
	rows, err := checkPredict(n.units != nil, x, features)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, len(n.units), nil)
	for i := 0; i < rows; i++ {
		in := n.normalizer.Normalize(mat.Row(nil, i, x))
		for k := range n.units {
			out.Set(i, k, n.units[k].Evaluate(in))
		}
	}
	return out, nil
}
