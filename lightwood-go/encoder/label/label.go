// Package label encodes categorical columns as a single integer label per row.
package label

import (
	"math"

	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/lwlog"
	"github.com/vbrnv/lightwood/lightwood-golib/serialization"
	"gonum.org/v1/gonum/mat"
)

// UnknownIndex is reserved for categories not seen during Prepare.
const UnknownIndex = 0

// Unknown is what UnknownIndex decodes to.
const Unknown = "Unknown"

// ErrUnknownLabel is returned when decoding a value that is not a label produced by Encode.
var ErrUnknownLabel = errors.New("label: no category for encoded value")

// Encoder assigns each category seen during Prepare an index starting at 1, in first-seen order.
// Anything else encodes to UnknownIndex.
type Encoder struct {
	encoder.Base

	// index maps api.Key(category) to its label
	index map[string]int
	// categories[i-1] is the category with label i
	categories []interface{}
}

var _ encoder.Encoder = (*Encoder)(nil)
var _ encoder.Rounder = (*Encoder)(nil)

// New returns an unprepared label encoder.
func New(isTarget bool) *Encoder {
	return &Encoder{
		Base: encoder.Base{Target: isTarget, Width: 1},
	}
}

// Prepare builds the label dictionary from the distinct values of priming.
func (e *Encoder) Prepare(priming api.Column) error {
	if err := e.CheckPrepare(priming); err != nil {
		return err
	}

	index := make(map[string]int)
	var categories []interface{}
	for _, v := range priming {
		key := api.Key(v)
		if _, seen := index[key]; seen {
			continue
		}
		categories = append(categories, v)
		index[key] = len(categories)
	}

	lwlog.S().Infow("categories detected", "count", len(categories))

	e.index = index
	e.categories = categories
	e.Prepared = true
	return nil
}

// Encode returns a rows x 1 tensor of labels.
func (e *Encoder) Encode(column api.Column) (*mat.Dense, error) {
	if err := e.CheckPrepared(); err != nil {
		return nil, err
	}
	out := encoder.NewTensor(len(column), 1)
	for i, v := range column {
		out.Set(i, 0, float64(e.Label(v)))
	}
	return out, nil
}

// Label returns the label of a single value.
func (e *Encoder) Label(v interface{}) int {
	if idx, ok := e.index[api.Key(v)]; ok {
		return idx
	}
	return UnknownIndex
}

// Decode maps labels back to categories; UnknownIndex decodes to Unknown.
func (e *Encoder) Decode(encoded *mat.Dense) (api.Column, error) {
	if err := e.CheckDecode(encoded); err != nil {
		return nil, err
	}
	rows := encoder.Rows(encoded)
	out := make(api.Column, rows)
	for i := 0; i < rows; i++ {
		v := encoded.At(i, 0)
		if math.IsInf(v, 0) || v != math.Trunc(v) || v < 0 || v > float64(len(e.categories)) {
			return nil, errors.Wrapf(ErrUnknownLabel, "row %d: %v", i, v)
		}
		idx := int(v)
		if idx == UnknownIndex {
			out[i] = Unknown
			continue
		}
		out[i] = e.categories[idx-1]
	}
	return out, nil
}

// Round snaps raw outputs to the nearest valid label.
func (e *Encoder) Round(raw *mat.Dense) *mat.Dense {
	if raw == nil {
		return nil
	}
	max := float64(len(e.categories))
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Max(0, math.Min(max, math.Round(v)))
	}, raw)
	return &out
}

// Categories returns the prepared categories in label order (label 1 first).
func (e *Encoder) Categories() []interface{} {
	return append([]interface{}(nil), e.categories...)
}

// state is the persisted form of a prepared Encoder.
type state struct {
	IsTarget   bool     `json:"is_target" yaml:"is_target"`
	Categories []string `json:"categories" yaml:"categories"`
}

// Save writes the label dictionary to path; the format follows the extension
// (see serialization.Encode). Categories are stored by their string key.
func (e *Encoder) Save(path string) error {
	if err := e.CheckPrepared(); err != nil {
		return err
	}
	s := state{IsTarget: e.Target}
	for _, c := range e.categories {
		s.Categories = append(s.Categories, api.Key(c))
	}
	return serialization.Encode(path, s)
}

// Load restores a prepared encoder saved with Save.
func Load(path string) (*Encoder, error) {
	var s state
	if err := serialization.Decode(path, &s); err != nil {
		return nil, err
	}
	column := make(api.Column, len(s.Categories))
	for i, c := range s.Categories {
		column[i] = c
	}
	e := New(s.IsTarget)
	if len(column) == 0 {
		e.index = map[string]int{}
		e.Prepared = true
		return e, nil
	}
	if err := e.Prepare(column); err != nil {
		return nil, err
	}
	return e, nil
}
