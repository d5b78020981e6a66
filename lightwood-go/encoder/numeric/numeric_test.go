package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/mat"
)

func TestStandardise(t *testing.T) {
	e := New(false, false)
	require.NoError(t, e.Prepare(api.Column{1.0, 3.0, "5", nil}))

	enc, err := e.Encode(api.Column{3, 5.0, "junk"})
	require.NoError(t, err)
	// mean 3, population std sqrt(8/3)
	assert.InDelta(t, 0, enc.At(0, 0), 1e-12)
	assert.InDelta(t, 2/1.632993161855452, enc.At(1, 0), 1e-9)
	assert.Equal(t, 0., enc.At(2, 0))
}

func TestDecodeInverts(t *testing.T) {
	e := New(true, false)
	priming := api.Column{2.5, -1.0, 10.0}
	require.NoError(t, e.Prepare(priming))

	enc, err := e.Encode(priming)
	require.NoError(t, err)
	dec, err := e.Decode(enc)
	require.NoError(t, err)
	for i := range priming {
		assert.InDelta(t, priming[i].(float64), dec[i].(float64), 1e-9)
	}
}

func TestIntegerRounds(t *testing.T) {
	e := New(true, true)
	require.NoError(t, e.Prepare(api.Column{1, 2, 3}))
	enc, err := e.Encode(api.Column{2})
	require.NoError(t, err)
	enc.Set(0, 0, enc.At(0, 0)+0.1)

	dec, err := e.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, api.Column{2}, dec)
}

func TestConstantColumn(t *testing.T) {
	e := New(false, false)
	require.NoError(t, e.Prepare(api.Column{4, 4}))
	enc, err := e.Encode(api.Column{4, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, mat.Col(nil, 0, enc))
}

func TestNoNumbers(t *testing.T) {
	e := New(false, false)
	err := e.Prepare(api.Column{"a", "b"})
	assert.True(t, errors.Is(err, encoder.ErrEmptyColumn))
	assert.False(t, e.IsPrepared())
}
