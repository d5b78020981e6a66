// Package predictor wires encoders and a mixer into a trainable model over a Frame.
package predictor

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/vbrnv/lightwood/lightwood-go/accuracy"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/api/dtype"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/registry"
	"github.com/vbrnv/lightwood/lightwood-go/mixer"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/lwlog"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoFeatures is returned by New without feature columns.
	ErrNoFeatures = errors.New("predictor: no feature columns")
	// ErrMissingColumn is returned when a frame lacks a column the predictor needs.
	ErrMissingColumn = errors.New("predictor: missing column")
	// ErrUnknownColumn is returned by Encoder for columns the predictor does not know.
	ErrUnknownColumn = errors.New("predictor: unknown column")
	// ErrNotFitted is returned by Predict before Fit.
	ErrNotFitted = errors.New("predictor: not fitted")
	// ErrRowMismatch is returned by Fit when columns differ in length.
	ErrRowMismatch = errors.New("predictor: columns differ in length")
)

// Options configures a Predictor.
type Options struct {
	Encoders registry.Options
	// ConfidencePercentile of absolute training residuals is the half width of the confidence
	// range of numeric predictions. Defaults to 90.
	ConfidencePercentile float64
}

// Predictor owns one encoder per column and a mixer trained on their concatenated encodings.
type Predictor struct {
	target   api.Output
	features []string
	dtypes   map[string]dtype.Dtype
	opts     registry.Options
	encoders map[string]encoder.Encoder
	mixer    mixer.Mixer

	percentile float64
	margin     float64
	fitted     bool
}

// New builds the encoders for target and features and the named mixer. Nothing is prepared yet.
func New(target api.Output, features map[string]dtype.Dtype, mixerName mixer.Name, opts Options) (*Predictor, error) {
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	m, err := mixer.New(mixerName)
	if err != nil {
		return nil, err
	}

	p := &Predictor{
		target:     target,
		dtypes:     make(map[string]dtype.Dtype, len(features)+1),
		opts:       opts.Encoders,
		mixer:      m,
		percentile: opts.ConfidencePercentile,
	}
	if p.percentile == 0 {
		p.percentile = 90
	}

	p.dtypes[target.Name] = target.DataDtype
	for name, dt := range features {
		if name == target.Name {
			return nil, errors.Errorf("column %q is both target and feature", name)
		}
		p.dtypes[name] = dt
		p.features = append(p.features, name)
	}
	sort.Strings(p.features)

	if p.encoders, err = p.buildEncoders(); err != nil {
		return nil, err
	}
	return p, nil
}

// buildEncoders returns a fresh, unprepared encoder for every column.
func (p *Predictor) buildEncoders() (map[string]encoder.Encoder, error) {
	encoders := make(map[string]encoder.Encoder, len(p.dtypes))
	for name, dt := range p.dtypes {
		isTarget := name == p.target.Name
		enc, err := registry.ForDtype(dt, isTarget, p.opts)
		if err != nil {
			if isTarget {
				return nil, errors.Wrapf(err, "target %q", name)
			}
			return nil, errors.Wrapf(err, "feature %q", name)
		}
		encoders[name] = enc
	}
	return encoders, nil
}

// Encoder returns the encoder owned by column.
func (p *Predictor) Encoder(column string) (encoder.Encoder, error) {
	enc, ok := p.encoders[column]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownColumn, "%q", column)
	}
	return enc, nil
}

// Target returns the target metadata.
func (p *Predictor) Target() api.Output {
	return p.target
}

// Fit prepares fresh encoders on frame and trains a fresh mixer. The predictor is only
// updated when every step succeeds, so a failed Fit leaves it as it was and may be retried.
func (p *Predictor) Fit(frame api.Frame) error {
	if err := p.checkFrame(frame); err != nil {
		return err
	}
	encoders, err := p.buildEncoders()
	if err != nil {
		return err
	}
	m, err := mixer.New(p.mixer.Name())
	if err != nil {
		return err
	}
	next := &Predictor{
		target:     p.target,
		features:   p.features,
		dtypes:     p.dtypes,
		opts:       p.opts,
		encoders:   encoders,
		mixer:      m,
		percentile: p.percentile,
	}
	if err := next.fit(frame); err != nil {
		return err
	}
	*p = *next
	return nil
}

// checkFrame verifies that frame holds every column with the same number of rows.
func (p *Predictor) checkFrame(frame api.Frame) error {
	names := append([]string{p.target.Name}, p.features...)
	rows := -1
	for _, name := range names {
		column, ok := frame[name]
		if !ok {
			return errors.Wrapf(ErrMissingColumn, "%q", name)
		}
		if rows >= 0 && len(column) != rows {
			return errors.Wrapf(ErrRowMismatch, "column %q has %d rows, expected %d", name, len(column), rows)
		}
		rows = len(column)
	}
	return nil
}

func (p *Predictor) fit(frame api.Frame) error {
	var durations lwlog.Durations
	start := time.Now()
	for name, enc := range p.encoders {
		if err := enc.Prepare(frame[name]); err != nil {
			return errors.Wrapf(err, "error preparing encoder for %q", name)
		}
	}
	durations.Since("prepare", start)

	start = time.Now()
	x, err := p.encodeFeatures(frame)
	if err != nil {
		return err
	}
	y, err := p.encoders[p.target.Name].Encode(frame[p.target.Name])
	if err != nil {
		return errors.Wrapf(err, "error encoding target %q", p.target.Name)
	}
	if y == nil {
		return errors.Wrapf(encoder.ErrEmptyColumn, "target %q encodes to nothing", p.target.Name)
	}
	durations.Since("encode", start)

	start = time.Now()
	if err := p.mixer.Fit(x, y); err != nil {
		return errors.Wrapf(err, "error fitting %s", p.mixer.Name())
	}
	durations.Since("fit", start)
	if p.target.DataDtype.IsNumeric() {
		if err := p.fitMargin(frame, x); err != nil {
			return err
		}
	}
	p.fitted = true

	lwlog.S().Infow("predictor fitted", "target", p.target.Name, "mixer", p.mixer.Name(), "rows", encoder.Rows(x), "features", len(p.features))
	durations.Flush(lwlog.L())
	return nil
}

// fitMargin sets the confidence half width from the residuals on the training data.
func (p *Predictor) fitMargin(frame api.Frame, x *mat.Dense) error {
	predicted, err := p.decode(x)
	if err != nil {
		return err
	}
	var residuals []float64
	for i, truth := range frame[p.target.Name] {
		t, ok := api.AsFloat(truth)
		if !ok {
			continue
		}
		if v, ok := api.AsFloat(predicted[i]); ok {
			residuals = append(residuals, math.Abs(v-t))
		}
	}
	if len(residuals) == 0 {
		p.margin = 0
		return nil
	}
	margin, err := stats.Percentile(residuals, p.percentile)
	if err != nil {
		return errors.Wrapf(err, "error computing confidence margin")
	}
	p.margin = margin
	return nil
}

// Predict returns a frame with api.PredictionsField and, for numeric targets, the target's
// confidence range field.
func (p *Predictor) Predict(frame api.Frame) (api.Frame, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	x, err := p.encodeFeatures(frame)
	if err != nil {
		return nil, err
	}
	predicted, err := p.decode(x)
	if err != nil {
		return nil, err
	}

	out := api.Frame{api.PredictionsField: predicted}
	if p.target.DataDtype.IsNumeric() {
		ranges := make(api.Column, len(predicted))
		for i, v := range predicted {
			f, _ := api.AsFloat(v)
			ranges[i] = []float64{f - p.margin, f + p.margin}
		}
		out[api.ConfidenceRangeField(p.target.Name)] = ranges
	}
	return out, nil
}

// Evaluate predicts on frame and scores the predictions against its target column.
func (p *Predictor) Evaluate(frame api.Frame, opts ...accuracy.Option) (float64, error) {
	predictions, err := p.Predict(frame)
	if err != nil {
		return 0, err
	}
	return accuracy.EvaluateAccuracy(predictions, frame, p.target, p, opts...)
}

func (p *Predictor) decode(x *mat.Dense) (api.Column, error) {
	raw, err := p.mixer.Predict(x)
	if err != nil {
		return nil, errors.Wrapf(err, "error predicting with %s", p.mixer.Name())
	}
	enc := p.encoders[p.target.Name]
	if r, ok := enc.(encoder.Rounder); ok {
		raw = r.Round(raw)
	}
	return enc.Decode(raw)
}

// encodeFeatures concatenates the encodings of all features, in name order.
func (p *Predictor) encodeFeatures(frame api.Frame) (*mat.Dense, error) {
	rows := -1
	encoded := make([]*mat.Dense, len(p.features))
	var width int
	for i, name := range p.features {
		column, ok := frame[name]
		if !ok {
			return nil, errors.Wrapf(ErrMissingColumn, "%q", name)
		}
		if rows >= 0 && len(column) != rows {
			return nil, errors.Errorf("column %q has %d rows, expected %d", name, len(column), rows)
		}
		rows = len(column)

		enc, err := p.encoders[name].Encode(column)
		if err != nil {
			return nil, errors.Wrapf(err, "error encoding %q", name)
		}
		encoded[i] = enc
		width += p.encoders[name].OutputSize()
	}

	x := encoder.NewTensor(rows, width)
	if x == nil {
		return nil, errors.Wrapf(encoder.ErrEmptyColumn, "features encode to %d x %d", rows, width)
	}
	var offset int
	for _, enc := range encoded {
		if enc == nil {
			continue
		}
		_, c := enc.Dims()
		x.Slice(0, rows, offset, offset+c).(*mat.Dense).Copy(enc)
		offset += c
	}
	return x, nil
}
