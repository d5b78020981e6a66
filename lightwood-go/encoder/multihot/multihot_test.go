package multihot

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"gonum.org/v1/gonum/mat"
)

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Tags("a, b,"))
	assert.Equal(t, []string{"a", "b"}, Tags([]string{"a", "b"}))
	assert.Equal(t, []string{"1", "x"}, Tags([]interface{}{1, "x"}))
	assert.Nil(t, Tags(nil))
	assert.Equal(t, []string{"7"}, Tags(7))
}

func TestEncodeDecode(t *testing.T) {
	e := New(true)
	require.NoError(t, e.Prepare(api.Column{"red,blue", []string{"green"}, "blue"}))
	assert.Equal(t, []string{"red", "blue", "green"}, e.Vocabulary())
	assert.Equal(t, 3, e.OutputSize())

	enc, err := e.Encode(api.Column{"blue,purple", "", []string{"green", "red"}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, mat.Row(nil, 0, enc))
	assert.Equal(t, []float64{0, 0, 0}, mat.Row(nil, 1, enc))
	assert.Equal(t, []float64{1, 0, 1}, mat.Row(nil, 2, enc))

	dec, err := e.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, api.Column{[]string{"blue"}, []string{}, []string{"red", "green"}}, dec)
}

func TestRound(t *testing.T) {
	e := New(false)
	require.NoError(t, e.Prepare(api.Column{"a,b"}))
	got := e.Round(mat.NewDense(1, 2, []float64{0.49, 0.51}))
	assert.Equal(t, []float64{0, 1}, mat.Row(nil, 0, got))
}

func TestEmptyVocabulary(t *testing.T) {
	e := New(false)
	assert.Error(t, e.Prepare(api.Column{"", nil}))
	_, err := e.Encode(api.Column{"a"})
	assert.Equal(t, encoder.ErrNotPrepared, err)
}

func TestSaveLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	e := New(true)
	require.NoError(t, e.Prepare(api.Column{"red,blue", []string{"green"}}))
	for _, name := range []string{"tags.json", "tags.yaml.sz"} {
		path := filepath.Join(dir, name)
		require.NoError(t, e.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.True(t, loaded.IsTarget())
		assert.Equal(t, e.Vocabulary(), loaded.Vocabulary())
	}

	assert.Equal(t, encoder.ErrNotPrepared, New(false).Save(filepath.Join(dir, "x.json")))
}
