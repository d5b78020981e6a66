// Package array encodes fixed-length numeric sequences, one column per position.
package array

import (
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/mat"
)

// Encoder fixes its width to the longest priming sequence. Shorter rows are zero-padded,
// longer rows truncated, and non-numeric elements encode to 0.
type Encoder struct {
	encoder.Base
}

var _ encoder.Encoder = (*Encoder)(nil)

// New returns an unprepared array encoder.
func New(isTarget bool) *Encoder {
	return &Encoder{
		Base: encoder.Base{Target: isTarget},
	}
}

// Prepare sets the output width.
func (e *Encoder) Prepare(priming api.Column) error {
	if err := e.CheckPrepare(priming); err != nil {
		return err
	}
	var width int
	for _, v := range priming {
		if elems, ok := api.AsSlice(v); ok && len(elems) > width {
			width = len(elems)
		}
	}
	if width == 0 {
		return errors.Wrapf(encoder.ErrEmptyColumn, "no sequences among %d rows", len(priming))
	}
	e.Width = width
	e.Prepared = true
	return nil
}

// Encode returns a rows x width tensor.
func (e *Encoder) Encode(column api.Column) (*mat.Dense, error) {
	if err := e.CheckPrepared(); err != nil {
		return nil, err
	}
	out := encoder.NewTensor(len(column), e.Width)
	for i, v := range column {
		elems, ok := api.AsSlice(v)
		if !ok {
			// a scalar cell is a sequence of length one
			elems = []interface{}{v}
		}
		for j := 0; j < len(elems) && j < e.Width; j++ {
			if f, ok := api.AsFloat(elems[j]); ok {
				out.Set(i, j, f)
			}
		}
	}
	return out, nil
}

// Decode returns each row as a []float64.
func (e *Encoder) Decode(encoded *mat.Dense) (api.Column, error) {
	if err := e.CheckDecode(encoded); err != nil {
		return nil, err
	}
	rows := encoder.Rows(encoded)
	out := make(api.Column, rows)
	for i := 0; i < rows; i++ {
		out[i] = mat.Row(nil, i, encoded)
	}
	return out, nil
}
