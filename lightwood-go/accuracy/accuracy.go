// Package accuracy scores predictions against ground truth with a metric chosen by the
// target column's dtype.
package accuracy

import (
	"reflect"

	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/api/dtype"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/lwlog"
	"github.com/vbrnv/lightwood/lightwood-golib/metrics"
	"gonum.org/v1/gonum/mat"
)

// Epsilon replaces scores that are exactly zero, so that a legitimately poor score is never
// mistaken for an unset one.
const Epsilon = 1e-8

var (
	// ErrMissingBackend is returned when multilabel scoring has no backend to get the target encoder from.
	ErrMissingBackend = errors.New("accuracy: multilabel scoring requires a backend")
	// ErrMissingTyping is returned when array scoring has no typing metadata for the target.
	ErrMissingTyping = errors.New("accuracy: array scoring requires target typing")
	// ErrShapeMismatch is returned when predictions and truth are missing or do not line up.
	ErrShapeMismatch = errors.New("accuracy: predictions do not match ground truth")
	// ErrNotNumeric is returned when a numeric metric meets a non-numeric value.
	ErrNotNumeric = errors.New("accuracy: value is not numeric")
)

// Backend gives access to the trained encoders of a predictor.
type Backend interface {
	Encoder(column string) (encoder.Encoder, error)
}

// Option customises EvaluateAccuracy.
type Option func(*options)

type options struct {
	categorical *bool
}

// WithCategorical sets whether array elements are scored as classes (balanced accuracy) or as
// numbers (R²), instead of reading it from the target typing.
func WithCategorical(categorical bool) Option {
	return func(o *options) {
		o.categorical = &categorical
	}
}

// evaluation is the input of a scorer.
type evaluation struct {
	column      string
	predictions api.Frame
	predicted   api.Column
	truth       api.Column
	target      api.Output
	backend     Backend
	opts        options
}

type scorer func(e *evaluation) (float64, error)

// scorers is consulted once per call; dtypes not listed use generic.
var scorers = map[dtype.Dtype]scorer{
	dtype.Integer:     regression,
	dtype.Float:       regression,
	dtype.Categorical: classification,
	dtype.Tags:        multilabel,
	dtype.Array:       array,
}

// EvaluateAccuracy scores predictions[api.PredictionsField] against data[target.Name]. The
// result is never exactly 0.
func EvaluateAccuracy(predictions, data api.Frame, target api.Output, backend Backend, opts ...Option) (float64, error) {
	e := &evaluation{
		column:      target.Name,
		predictions: predictions,
		target:      target,
		backend:     backend,
	}
	for _, opt := range opts {
		opt(&e.opts)
	}

	var ok bool
	if e.predicted, ok = predictions[api.PredictionsField]; !ok {
		return 0, errors.Wrapf(ErrShapeMismatch, "no %q field", api.PredictionsField)
	}
	if e.truth, ok = data[target.Name]; !ok {
		return 0, errors.Wrapf(ErrShapeMismatch, "no ground truth column %q", target.Name)
	}
	if len(e.predicted) != len(e.truth) {
		return 0, errors.Wrapf(ErrShapeMismatch, "%d predictions for %d rows", len(e.predicted), len(e.truth))
	}

	score := generic
	if s, ok := scorers[target.DataDtype]; ok {
		score = s
	}
	raw, err := score(e)
	if err != nil {
		return 0, errors.WrapfOrNil(err, "error scoring %s column %q", target.DataDtype, target.Name)
	}
	lwlog.S().Debugw("accuracy evaluated", "column", target.Name, "dtype", target.DataDtype.Name(), "score", raw)
	return floorZero(raw), nil
}

func floorZero(score float64) float64 {
	if score == 0 {
		return Epsilon
	}
	return score
}

// regression is interval coverage when the predictions carry confidence ranges, and max(R², 0)
// otherwise.
func regression(e *evaluation) (float64, error) {
	truth, err := floats(e.truth)
	if err != nil {
		return 0, err
	}
	if ranges, ok := e.predictions[api.ConfidenceRangeField(e.column)]; ok {
		lower, upper, err := bounds(ranges)
		if err != nil {
			return 0, err
		}
		return metrics.Coverage(truth, lower, upper)
	}

	predicted, err := floats(e.predicted)
	if err != nil {
		return 0, err
	}
	r2, err := metrics.R2(truth, predicted)
	if err != nil {
		return 0, err
	}
	return clamp(r2), nil
}

func classification(e *evaluation) (float64, error) {
	return metrics.BalancedAccuracy(keys(e.truth), keys(e.predicted))
}

// multilabel re-encodes both sides with the target's trained encoder and computes weighted F1.
func multilabel(e *evaluation) (float64, error) {
	if isNil(e.backend) {
		return 0, ErrMissingBackend
	}
	enc, err := e.backend.Encoder(e.column)
	if err != nil {
		return 0, errors.Wrapf(err, "error getting encoder for %q", e.column)
	}
	if isNil(enc) {
		return 0, errors.Wrapf(ErrMissingBackend, "backend has no encoder for %q", e.column)
	}
	predicted, err := enc.Encode(e.predicted)
	if err != nil {
		return 0, err
	}
	truth, err := enc.Encode(e.truth)
	if err != nil {
		return 0, err
	}
	return metrics.WeightedF1(rows(truth, len(e.truth)), rows(predicted, len(e.predicted)))
}

// isNil also catches typed nil pointers, maps and funcs stored in an interface.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// array scores sequence targets row by row, averaging the per-row scores floored at 0. As soon as
// a scalar truth is met, the whole column is instead scored as a one-step-ahead forecast: the first
// predicted step of every row against the scalar truths, as one batch.
//
// Arguments are passed to the metric with predictions first.
func array(e *evaluation) (float64, error) {
	categorical, err := e.categorical()
	if err != nil {
		return 0, err
	}
	metric := r2
	if categorical {
		metric = balancedAccuracy
	}

	var sum float64
	for i, p := range e.predicted {
		predicted, ok := api.AsSlice(p)
		if !ok {
			return 0, errors.Wrapf(ErrShapeMismatch, "prediction %d is not a sequence", i)
		}
		truth, ok := api.AsSlice(e.truth[i])
		if !ok {
			return firstStep(e, metric)
		}
		score, err := metric(predicted, truth)
		if err != nil {
			return 0, errors.Wrapf(err, "row %d", i)
		}
		sum += clamp(score)
	}
	if len(e.predicted) == 0 {
		return 0, metrics.ErrEmpty
	}
	return sum / float64(len(e.predicted)), nil
}

func firstStep(e *evaluation, metric func(a, b []interface{}) (float64, error)) (float64, error) {
	first := make([]interface{}, len(e.predicted))
	for i, p := range e.predicted {
		predicted, _ := api.AsSlice(p)
		if len(predicted) == 0 {
			return 0, errors.Wrapf(ErrShapeMismatch, "prediction %d has no first step", i)
		}
		first[i] = predicted[0]
	}
	score, err := metric(first, e.truth)
	if err != nil {
		return 0, err
	}
	return clamp(score), nil
}

// categorical reports whether array elements are classes.
func (e *evaluation) categorical() (bool, error) {
	if e.opts.categorical != nil {
		return *e.opts.categorical, nil
	}
	if e.target.Typing == nil {
		return false, ErrMissingTyping
	}
	return e.target.SubtypeDist()[dtype.Categorical], nil
}

func generic(e *evaluation) (float64, error) {
	return metrics.Accuracy(keys(e.truth), keys(e.predicted))
}

func r2(a, b []interface{}) (float64, error) {
	x, err := floats(a)
	if err != nil {
		return 0, err
	}
	y, err := floats(b)
	if err != nil {
		return 0, err
	}
	return metrics.R2(x, y)
}

func balancedAccuracy(a, b []interface{}) (float64, error) {
	return metrics.BalancedAccuracy(keys(a), keys(b))
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	return score
}

func keys(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = api.Key(v)
	}
	return out
}

func floats(values []interface{}) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := api.AsFloat(v)
		if !ok {
			return nil, errors.Wrapf(ErrNotNumeric, "row %d: %v", i, v)
		}
		out[i] = f
	}
	return out, nil
}

// bounds splits a column of [lower, upper] pairs.
func bounds(ranges api.Column) (lower, upper []float64, err error) {
	lower = make([]float64, len(ranges))
	upper = make([]float64, len(ranges))
	for i, r := range ranges {
		pair, ok := api.AsSlice(r)
		if !ok || len(pair) != 2 {
			return nil, nil, errors.Wrapf(ErrShapeMismatch, "confidence range %d is not a [lower, upper] pair", i)
		}
		bound, err := floats(pair)
		if err != nil {
			return nil, nil, err
		}
		lower[i], upper[i] = bound[0], bound[1]
	}
	return lower, upper, nil
}

// rows converts an encoded tensor to one slice per row. A nil tensor has n empty rows.
func rows(m *mat.Dense, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		if m == nil {
			out[i] = []float64{}
			continue
		}
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
