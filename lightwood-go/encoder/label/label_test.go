package label

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/mat"
)

func prepared(t *testing.T, priming api.Column) *Encoder {
	e := New(false)
	require.NoError(t, e.Prepare(priming))
	return e
}

func TestFirstSeenOrder(t *testing.T) {
	e := prepared(t, api.Column{"dog", "cat", "dog", "bird"})
	assert.Equal(t, 1, e.Label("dog"))
	assert.Equal(t, 2, e.Label("cat"))
	assert.Equal(t, 3, e.Label("bird"))
	assert.Equal(t, UnknownIndex, e.Label("fish"))
	assert.Equal(t, []interface{}{"dog", "cat", "bird"}, e.Categories())
	assert.Equal(t, 1, e.OutputSize())
	assert.False(t, e.IsTrainable())
}

func TestRoundTrip(t *testing.T) {
	priming := api.Column{"a", "b", "c", "a", 7}
	e := prepared(t, priming)

	enc, err := e.Encode(priming)
	require.NoError(t, err)
	r, c := enc.Dims()
	assert.Equal(t, len(priming), r)
	assert.Equal(t, e.OutputSize(), c)

	dec, err := e.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, priming, dec)
}

func TestUnseenIsUnknown(t *testing.T) {
	e := prepared(t, api.Column{"a", "b"})
	enc, err := e.Encode(api.Column{"z", "a"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, mat.Col(nil, 0, enc))

	dec, err := e.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, api.Column{Unknown, "a"}, dec)
}

func TestBijection(t *testing.T) {
	e := prepared(t, api.Column{"x", "y", "z", "y", "x", 1, 1.0})
	seen := make(map[int]string)
	for key, idx := range e.index {
		assert.NotEqual(t, UnknownIndex, idx)
		prev, dup := seen[idx]
		assert.False(t, dup, "%s and %s share label %d", prev, key, idx)
		seen[idx] = key
	}
	assert.Len(t, seen, 4)
}

func TestDecodeInvalid(t *testing.T) {
	e := prepared(t, api.Column{"a"})
	for _, v := range []float64{2, -1, 0.5, 1e300, -1e300, math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := e.Decode(mat.NewDense(1, 1, []float64{v}))
		assert.True(t, errors.Is(err, ErrUnknownLabel), "%v", v)
	}
	_, err := e.Decode(mat.NewDense(1, 2, nil))
	assert.True(t, errors.Is(err, encoder.ErrWidthMismatch))
}

func TestPreconditions(t *testing.T) {
	e := New(true)
	assert.True(t, e.IsTarget())

	_, err := e.Encode(api.Column{"a"})
	assert.Equal(t, encoder.ErrNotPrepared, err)
	_, err = e.Decode(mat.NewDense(1, 1, nil))
	assert.Equal(t, encoder.ErrNotPrepared, err)

	assert.Equal(t, encoder.ErrEmptyColumn, e.Prepare(nil))
	require.NoError(t, e.Prepare(api.Column{"a"}))
	assert.Equal(t, encoder.ErrAlreadyPrepared, e.Prepare(api.Column{"b"}))
}

func TestRound(t *testing.T) {
	e := prepared(t, api.Column{"a", "b"})
	got := e.Round(mat.NewDense(4, 1, []float64{-0.7, 0.6, 1.4, 9}))
	assert.Equal(t, []float64{0, 1, 1, 2}, mat.Col(nil, 0, got))
}

func TestSaveLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	e := prepared(t, api.Column{"red", "green", "blue"})
	for _, name := range []string{"labels.json", "labels.yaml.sz"} {
		path := filepath.Join(dir, name)
		require.NoError(t, e.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.True(t, loaded.IsPrepared())
		assert.Equal(t, e.Label("green"), loaded.Label("green"))
		assert.Equal(t, e.Categories(), loaded.Categories())
	}

	assert.Equal(t, encoder.ErrNotPrepared, New(false).Save(filepath.Join(dir, "x.json")))
}
