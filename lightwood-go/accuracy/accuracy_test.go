package accuracy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/api/dtype"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/multihot"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
)

type encoders map[string]encoder.Encoder

func (e encoders) Encoder(column string) (encoder.Encoder, error) {
	enc, ok := e[column]
	if !ok {
		return nil, errors.Errorf("no encoder for %s", column)
	}
	return enc, nil
}

func frames(column string, predicted, truth api.Column) (api.Frame, api.Frame) {
	return api.Frame{api.PredictionsField: predicted}, api.Frame{column: truth}
}

func target(dt dtype.Dtype) api.Output {
	return api.Output{Name: "y", DataDtype: dt}
}

func TestCoverage(t *testing.T) {
	preds, data := frames("y", api.Column{100, 100, 100}, api.Column{1, 2, 3})
	preds[api.ConfidenceRangeField("y")] = api.Column{
		[]float64{0, 2},
		[2]float64{0, 1},
		[]interface{}{0, 5},
	}
	score, err := EvaluateAccuracy(preds, data, target(dtype.Float), nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, score, 1e-12)
}

func TestCoverageBadRange(t *testing.T) {
	preds, data := frames("y", api.Column{1}, api.Column{1})
	preds[api.ConfidenceRangeField("y")] = api.Column{[]float64{0}}
	_, err := EvaluateAccuracy(preds, data, target(dtype.Integer), nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestRegressionR2(t *testing.T) {
	preds, data := frames("y", api.Column{1.1, 1.9, 3.2, 3.8}, api.Column{1, 2, 3, 4})
	score, err := EvaluateAccuracy(preds, data, target(dtype.Float), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.98, score, 1e-9)

	preds, data = frames("y", api.Column{"1", "2", "3"}, api.Column{1, 2, 3})
	score, err = EvaluateAccuracy(preds, data, target(dtype.Integer), nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestRegressionNegativeIsFloored(t *testing.T) {
	preds, data := frames("y", api.Column{3, 2, 1}, api.Column{1, 2, 3})
	score, err := EvaluateAccuracy(preds, data, target(dtype.Float), nil)
	require.NoError(t, err)
	assert.Equal(t, Epsilon, score)
	assert.NotEqual(t, 0.0, score)
}

func TestRegressionNotNumeric(t *testing.T) {
	preds, data := frames("y", api.Column{"a"}, api.Column{1})
	_, err := EvaluateAccuracy(preds, data, target(dtype.Float), nil)
	assert.True(t, errors.Is(err, ErrNotNumeric))
}

func TestClassificationIsBalanced(t *testing.T) {
	preds, data := frames("y", api.Column{"a", "a", "b"}, api.Column{"a", "b", "b"})
	score, err := EvaluateAccuracy(preds, data, target(dtype.Categorical), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, score, 1e-12)

	naive, err := EvaluateAccuracy(preds, data, target(dtype.ShortText), nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, naive, 1e-12)
	assert.NotEqual(t, score, naive)
}

func TestZeroIsReplaced(t *testing.T) {
	for _, dt := range []dtype.Dtype{dtype.Categorical, dtype.Binary, dtype.Date} {
		preds, data := frames("y", api.Column{"b", "a"}, api.Column{"a", "b"})
		score, err := EvaluateAccuracy(preds, data, target(dt), nil)
		require.NoError(t, err, dt.Name())
		assert.Equal(t, 1e-8, score, dt.Name())
	}
	assert.Equal(t, 0.5, floorZero(0.5))
}

func TestEveryDtypeScores(t *testing.T) {
	tags := multihot.New(true)
	require.NoError(t, tags.Prepare(api.Column{"a", "b"}))
	backend := encoders{"y": tags}

	for _, dt := range dtype.All() {
		truth := api.Column{1, 2, 3}
		if dt == dtype.Tags {
			truth = api.Column{"a", "b", "a,b"}
		}
		if dt == dtype.Array {
			truth = api.Column{[]float64{1, 2}, []float64{3, 5}, []float64{4, 4.5}}
		}
		preds, data := frames("y", truth, truth)
		out := target(dt)
		out.Typing = map[string]interface{}{api.TypeDistKey: map[string]int{"float": 3}}
		score, err := EvaluateAccuracy(preds, data, out, backend)
		require.NoError(t, err, dt.Name())
		assert.Equal(t, 1.0, score, dt.Name())
	}
}

func TestMultilabel(t *testing.T) {
	enc := multihot.New(true)
	truth := api.Column{[]string{"a", "b"}, []string{"b"}, "c"}
	require.NoError(t, enc.Prepare(truth))

	preds, data := frames("y", api.Column{[]string{"a", "b"}, "b", []interface{}{"a"}}, truth)
	score, err := EvaluateAccuracy(preds, data, target(dtype.Tags), encoders{"y": enc})
	require.NoError(t, err)
	// a: f1 2/3 (support 1), b: f1 1 (support 2), c: f1 0 (support 1)
	assert.InDelta(t, 2.0/3, score, 1e-12)
}

func TestMultilabelMissingCollaborator(t *testing.T) {
	preds, data := frames("y", api.Column{"a"}, api.Column{"a"})

	_, err := EvaluateAccuracy(preds, data, target(dtype.Tags), nil)
	assert.True(t, errors.Is(err, ErrMissingBackend))

	_, err = EvaluateAccuracy(preds, data, target(dtype.Tags), encoders{})
	assert.Error(t, err)

	_, err = EvaluateAccuracy(preds, data, target(dtype.Tags), encoders{"y": multihot.New(true)})
	assert.True(t, errors.Is(err, encoder.ErrNotPrepared))

	var typed *multihot.Encoder
	assert.NotPanics(t, func() {
		_, err = EvaluateAccuracy(preds, data, target(dtype.Tags), encoders{"y": typed})
	})
	assert.True(t, errors.Is(err, ErrMissingBackend))

	var none encoders
	assert.NotPanics(t, func() {
		_, err = EvaluateAccuracy(preds, data, target(dtype.Tags), none)
	})
	assert.True(t, errors.Is(err, ErrMissingBackend))
}

func TestArrayPerRow(t *testing.T) {
	out := target(dtype.Array)
	out.Typing = map[string]interface{}{api.TypeDistKey: map[string]int{"integer": 6}}

	preds, data := frames("y",
		api.Column{[]float64{1, 2, 3}, []float64{3, 2, 1}},
		api.Column{[]float64{1, 2, 3}, []interface{}{1, 2, 3}})
	score, err := EvaluateAccuracy(preds, data, out, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, score)
}

func TestArrayCategorical(t *testing.T) {
	out := target(dtype.Array)
	out.Typing = map[string]interface{}{api.TypeDistKey: []string{"categorical"}}

	preds, data := frames("y",
		api.Column{[]string{"a", "b"}, []string{"a", "a"}},
		api.Column{[]string{"a", "b"}, []string{"a", "b"}})
	score, err := EvaluateAccuracy(preds, data, out, nil)
	require.NoError(t, err)
	// the second row scores the prediction as truth: recall of "a" is 1/2
	assert.Equal(t, 0.75, score)
}

func TestArrayScalarTruthFallback(t *testing.T) {
	predicted := api.Column{[]float64{5, 9}, []float64{1, 6}}
	truth := api.Column{5, 6}

	preds, data := frames("y", predicted, truth)
	score, err := EvaluateAccuracy(preds, data, target(dtype.Array), nil, WithCategorical(true))
	require.NoError(t, err)
	// first steps [5, 1] against [5, 6]
	assert.Equal(t, 0.5, score)

	score, err = EvaluateAccuracy(preds, data, target(dtype.Array), nil, WithCategorical(false))
	require.NoError(t, err)
	assert.Equal(t, Epsilon, score)

	// a matching first step scores perfectly even though the second steps are wrong
	preds, data = frames("y", api.Column{[]float64{5, 0}, []float64{6, 0}}, truth)
	score, err = EvaluateAccuracy(preds, data, target(dtype.Array), nil, WithCategorical(false))
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestArrayFallbackAfterSequenceRows(t *testing.T) {
	// a scalar truth anywhere switches the whole column to first-step scoring
	preds, data := frames("y",
		api.Column{[]string{"x", "y"}, []string{"b", "z"}},
		api.Column{[]string{"q", "r"}, "b"})
	score, err := EvaluateAccuracy(preds, data, target(dtype.Array), nil, WithCategorical(true))
	require.NoError(t, err)
	// first steps ["x", "b"] scored against ["[q r]", "b"]: recall of "x" is 0, of "b" is 1
	assert.Equal(t, 0.5, score)
}

func TestArrayRequiresTyping(t *testing.T) {
	preds, data := frames("y", api.Column{[]float64{1}}, api.Column{[]float64{1}})
	_, err := EvaluateAccuracy(preds, data, target(dtype.Array), nil)
	assert.True(t, errors.Is(err, ErrMissingTyping))

	score, err := EvaluateAccuracy(preds, data, target(dtype.Array), nil, WithCategorical(true))
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestShapeMismatch(t *testing.T) {
	_, err := EvaluateAccuracy(api.Frame{}, api.Frame{"y": api.Column{1}}, target(dtype.Float), nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = EvaluateAccuracy(api.Frame{api.PredictionsField: api.Column{1}}, api.Frame{}, target(dtype.Float), nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	preds, data := frames("y", api.Column{1, 2}, api.Column{1})
	_, err = EvaluateAccuracy(preds, data, target(dtype.Categorical), nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}
