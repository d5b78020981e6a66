// Package numeric standardises integer and float columns.
package numeric

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/mat"
)

// Encoder maps x to (x - mean) / std of the priming data. Cells that are not numbers encode to 0.
type Encoder struct {
	encoder.Base

	integer bool
	mean    float64
	std     float64
}

var _ encoder.Encoder = (*Encoder)(nil)

// New returns an unprepared numeric encoder. Integer encoders round when decoding.
func New(isTarget, integer bool) *Encoder {
	return &Encoder{
		Base:    encoder.Base{Target: isTarget, Width: 1},
		integer: integer,
	}
}

// Prepare learns the mean and standard deviation of the numeric cells of priming.
func (e *Encoder) Prepare(priming api.Column) error {
	if err := e.CheckPrepare(priming); err != nil {
		return err
	}
	var values []float64
	for _, v := range priming {
		if f, ok := api.AsFloat(v); ok && !math.IsNaN(f) {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return errors.Wrapf(encoder.ErrEmptyColumn, "no numeric values among %d rows", len(priming))
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return err
	}
	std, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return err
	}
	if std == 0 {
		std = 1
	}

	e.mean, e.std = mean, std
	e.Prepared = true
	return nil
}

// Encode returns a rows x 1 tensor of standardised values.
func (e *Encoder) Encode(column api.Column) (*mat.Dense, error) {
	if err := e.CheckPrepared(); err != nil {
		return nil, err
	}
	out := encoder.NewTensor(len(column), 1)
	for i, v := range column {
		if f, ok := api.AsFloat(v); ok && !math.IsNaN(f) {
			out.Set(i, 0, (f-e.mean)/e.std)
		}
	}
	return out, nil
}

// Decode inverts Encode.
func (e *Encoder) Decode(encoded *mat.Dense) (api.Column, error) {
	if err := e.CheckDecode(encoded); err != nil {
		return nil, err
	}
	rows := encoder.Rows(encoded)
	out := make(api.Column, rows)
	for i := 0; i < rows; i++ {
		v := encoded.At(i, 0)*e.std + e.mean
		if e.integer {
			out[i] = int(math.Round(v))
			continue
		}
		out[i] = v
	}
	return out, nil
}
