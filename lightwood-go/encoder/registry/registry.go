// Package registry selects the encoder for a column from its dtype.
package registry

import (
	"github.com/vbrnv/lightwood/lightwood-go/api/dtype"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/array"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/audio"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/label"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/multihot"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/numeric"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
)

// Options carries the per-variant settings needed by constructors.
type Options struct {
	Audio audio.Options `json:"audio" yaml:"audio"`
}

type constructor func(isTarget bool, opts Options) (encoder.Encoder, error)

var constructors = map[dtype.Dtype]constructor{
	dtype.Binary:      newLabel,
	dtype.Categorical: newLabel,
	dtype.Integer: func(isTarget bool, _ Options) (encoder.Encoder, error) {
		return numeric.New(isTarget, true), nil
	},
	dtype.Float: func(isTarget bool, _ Options) (encoder.Encoder, error) {
		return numeric.New(isTarget, false), nil
	},
	dtype.Tags: func(isTarget bool, _ Options) (encoder.Encoder, error) {
		return multihot.New(isTarget), nil
	},
	dtype.Array: func(isTarget bool, _ Options) (encoder.Encoder, error) {
		return array.New(isTarget), nil
	},
	dtype.Audio: func(isTarget bool, opts Options) (encoder.Encoder, error) {
		return audio.New(isTarget, opts.Audio)
	},
	// text and dates are not encoded
	dtype.ShortText: nil,
	dtype.RichText:  nil,
	dtype.Date:      nil,
	dtype.Datetime:  nil,
}

func newLabel(isTarget bool, _ Options) (encoder.Encoder, error) {
	return label.New(isTarget), nil
}

// Supported reports whether ForDtype can build an encoder for dt.
func Supported(dt dtype.Dtype) bool {
	return constructors[dt] != nil
}

// ForDtype returns a new, unprepared encoder for a column of type dt.
func ForDtype(dt dtype.Dtype, isTarget bool, opts Options) (encoder.Encoder, error) {
	c := constructors[dt]
	if c == nil {
		return nil, errors.Wrapf(encoder.ErrUnsupportedDtype, "no encoder for %s", dt)
	}
	return c(isTarget, opts)
}
