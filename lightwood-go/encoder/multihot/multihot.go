// Package multihot encodes tag columns as one indicator per known tag.
package multihot

import (
	"strings"

	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/serialization"
	"gonum.org/v1/gonum/mat"
)

// Separator splits tags held in a single string cell.
const Separator = ","

// Encoder sets column j of a row when the row carries the j-th tag seen during Prepare.
// Tags not seen during Prepare are dropped.
type Encoder struct {
	encoder.Base

	index map[string]int
	tags  []string
}

var _ encoder.Encoder = (*Encoder)(nil)
var _ encoder.Rounder = (*Encoder)(nil)

// New returns an unprepared multi-hot encoder.
func New(isTarget bool) *Encoder {
	return &Encoder{
		Base: encoder.Base{Target: isTarget},
	}
}

// Tags splits a cell into its tags. Cells are either slices or Separator-joined strings.
func Tags(v interface{}) []string {
	if s, ok := v.(string); ok {
		var out []string
		for _, tag := range strings.Split(s, Separator) {
			if tag = strings.TrimSpace(tag); tag != "" {
				out = append(out, tag)
			}
		}
		return out
	}
	elems, ok := api.AsSlice(v)
	if !ok {
		if v == nil {
			return nil
		}
		return []string{api.Key(v)}
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		out = append(out, api.Key(e))
	}
	return out
}

// Prepare collects the tag vocabulary in first-seen order.
func (e *Encoder) Prepare(priming api.Column) error {
	if err := e.CheckPrepare(priming); err != nil {
		return err
	}
	index := make(map[string]int)
	var tags []string
	for _, v := range priming {
		for _, tag := range Tags(v) {
			if _, ok := index[tag]; !ok {
				index[tag] = len(tags)
				tags = append(tags, tag)
			}
		}
	}
	if len(tags) == 0 {
		return errors.Wrapf(encoder.ErrEmptyColumn, "no tags among %d rows", len(priming))
	}

	e.index, e.tags = index, tags
	e.Width = len(tags)
	e.Prepared = true
	return nil
}

// Encode returns a rows x len(vocabulary) indicator tensor.
func (e *Encoder) Encode(column api.Column) (*mat.Dense, error) {
	if err := e.CheckPrepared(); err != nil {
		return nil, err
	}
	out := encoder.NewTensor(len(column), e.Width)
	for i, v := range column {
		for _, tag := range Tags(v) {
			if j, ok := e.index[tag]; ok {
				out.Set(i, j, 1)
			}
		}
	}
	return out, nil
}

// Decode returns, per row, the tags whose indicator is at least 0.5.
func (e *Encoder) Decode(encoded *mat.Dense) (api.Column, error) {
	if err := e.CheckDecode(encoded); err != nil {
		return nil, err
	}
	rows := encoder.Rows(encoded)
	out := make(api.Column, rows)
	for i := 0; i < rows; i++ {
		tags := []string{}
		for j, tag := range e.tags {
			if encoded.At(i, j) >= 0.5 {
				tags = append(tags, tag)
			}
		}
		out[i] = tags
	}
	return out, nil
}

// Round thresholds raw outputs to 0 or 1.
func (e *Encoder) Round(raw *mat.Dense) *mat.Dense {
	if raw == nil {
		return nil
	}
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		if v >= 0.5 {
			return 1
		}
		return 0
	}, raw)
	return &out
}

// Vocabulary returns the tags in column order.
func (e *Encoder) Vocabulary() []string {
	return append([]string(nil), e.tags...)
}

type state struct {
	IsTarget bool     `json:"is_target" yaml:"is_target"`
	Tags     []string `json:"tags" yaml:"tags"`
}

// Save writes the vocabulary to path in the format named by its extension.
func (e *Encoder) Save(path string) error {
	if err := e.CheckPrepared(); err != nil {
		return err
	}
	return serialization.Encode(path, state{IsTarget: e.Target, Tags: e.tags})
}

// Load restores a prepared encoder saved with Save.
func Load(path string) (*Encoder, error) {
	var s state
	if err := serialization.Decode(path, &s); err != nil {
		return nil, err
	}
	e := New(s.IsTarget)
	if err := e.Prepare(api.Column{s.Tags}); err != nil {
		return nil, errors.Wrapf(err, "error loading %s", path)
	}
	return e, nil
}
