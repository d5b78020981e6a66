// Package encoder defines the lifecycle shared by every column encoder:
// Prepare once on training data, then Encode columns into fixed-width numeric
// rows and, for bidirectional encoders, Decode them back.
package encoder

import (
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotPrepared is returned by Encode and Decode before Prepare has run.
	ErrNotPrepared = errors.New("encoder: not prepared")
	// ErrAlreadyPrepared is returned by a second call to Prepare.
	ErrAlreadyPrepared = errors.New("encoder: already prepared")
	// ErrNotBidirectional is returned by Decode on one-way encoders, and when
	// constructing a one-way encoder for a target column.
	ErrNotBidirectional = errors.New("encoder: not bi-directional")
	// ErrEmptyColumn is returned when preparing on a column without rows.
	ErrEmptyColumn = errors.New("encoder: empty priming column")
	// ErrWidthMismatch is returned when decoding a tensor of the wrong width.
	ErrWidthMismatch = errors.New("encoder: encoded width does not match output size")
	// ErrUnsupportedDtype is returned when no encoder handles a column's dtype.
	ErrUnsupportedDtype = errors.New("encoder: unsupported dtype")
)

// Encoder turns a raw column into a rows x OutputSize() tensor and optionally back.
//
// Encoders are owned by a single column. Prepare mutates state and must not run concurrently
// with anything else; once prepared, Encode and Decode only read state.
type Encoder interface {
	// Prepare builds the encoder state from the training column. It runs exactly once.
	Prepare(priming api.Column) error
	// Encode returns one row per input value, each OutputSize() wide.
	Encode(column api.Column) (*mat.Dense, error)
	// Decode maps encoded rows back to values.
	Decode(encoded *mat.Dense) (api.Column, error)

	IsTarget() bool
	IsPrepared() bool
	// IsTrainable distinguishes learned encoders from rule-based ones.
	IsTrainable() bool
	OutputSize() int
}

// Rounder is implemented by encoders whose Decode only accepts a discrete set of values;
// Round snaps raw model outputs onto that set.
type Rounder interface {
	Round(raw *mat.Dense) *mat.Dense
}

// Base carries the bookkeeping flags common to all encoders.
type Base struct {
	Target   bool
	Prepared bool
	Width    int
}

// IsTarget implements Encoder
func (b *Base) IsTarget() bool { return b.Target }

// IsPrepared implements Encoder
func (b *Base) IsPrepared() bool { return b.Prepared }

// IsTrainable implements Encoder; rule-based by default
func (b *Base) IsTrainable() bool { return false }

// OutputSize implements Encoder
func (b *Base) OutputSize() int { return b.Width }

// CheckPrepare returns an error unless Prepare may run on priming.
func (b *Base) CheckPrepare(priming api.Column) error {
	if b.Prepared {
		return ErrAlreadyPrepared
	}
	if len(priming) == 0 {
		return ErrEmptyColumn
	}
	return nil
}

// CheckPrepared returns ErrNotPrepared until Prepare has completed.
func (b *Base) CheckPrepared() error {
	if !b.Prepared {
		return ErrNotPrepared
	}
	return nil
}

// CheckDecode validates the width of a tensor handed to Decode.
func (b *Base) CheckDecode(encoded *mat.Dense) error {
	if err := b.CheckPrepared(); err != nil {
		return err
	}
	if encoded == nil {
		return nil
	}
	if _, c := encoded.Dims(); c != b.Width {
		return errors.Wrapf(ErrWidthMismatch, "got %d columns, expected %d", c, b.Width)
	}
	return nil
}

// NewTensor returns a zeroed rows x width tensor. Gonum does not allow empty
// matrices, so zero rows yield nil.
func NewTensor(rows, width int) *mat.Dense {
	if rows == 0 || width == 0 {
		return nil
	}
	return mat.NewDense(rows, width, nil)
}

// Rows returns the number of rows of a possibly nil tensor.
func Rows(m *mat.Dense) int {
	if m == nil {
		return 0
	}
	r, _ := m.Dims()
	return r
}
