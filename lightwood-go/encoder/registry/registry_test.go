package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/api/dtype"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/array"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/audio"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/label"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/multihot"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/numeric"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
)

func TestTableCoversAllDtypes(t *testing.T) {
	for _, dt := range dtype.All() {
		_, ok := constructors[dt]
		assert.True(t, ok, "no registry entry for %s", dt)
	}
}

func TestForDtype(t *testing.T) {
	cases := []struct {
		dt   dtype.Dtype
		want encoder.Encoder
	}{
		{dtype.Binary, &label.Encoder{}},
		{dtype.Categorical, &label.Encoder{}},
		{dtype.Integer, &numeric.Encoder{}},
		{dtype.Float, &numeric.Encoder{}},
		{dtype.Tags, &multihot.Encoder{}},
		{dtype.Array, &array.Encoder{}},
		{dtype.Audio, &audio.Encoder{}},
	}
	for _, c := range cases {
		enc, err := ForDtype(c.dt, false, Options{})
		require.NoError(t, err, c.dt.Name())
		assert.IsType(t, c.want, enc, c.dt.Name())
		assert.False(t, enc.IsPrepared())
		assert.False(t, enc.IsTarget())
		assert.True(t, Supported(c.dt))
	}
}

func TestUnsupported(t *testing.T) {
	for _, dt := range []dtype.Dtype{dtype.Invalid, dtype.ShortText, dtype.Datetime} {
		_, err := ForDtype(dt, false, Options{})
		assert.True(t, errors.Is(err, encoder.ErrUnsupportedDtype), dt.Name())
		assert.False(t, Supported(dt))
	}
}

func TestAudioTarget(t *testing.T) {
	_, err := ForDtype(dtype.Audio, true, Options{})
	assert.True(t, errors.Is(err, encoder.ErrNotBidirectional))
}

func TestEncodersAreIndependent(t *testing.T) {
	a, err := ForDtype(dtype.Categorical, false, Options{})
	require.NoError(t, err)
	b, err := ForDtype(dtype.Categorical, false, Options{})
	require.NoError(t, err)

	require.NoError(t, a.Prepare(api.Column{"x", "y"}))
	assert.False(t, b.IsPrepared())
	require.NoError(t, b.Prepare(api.Column{"y"}))

	ea, err := a.Encode(api.Column{"y"})
	require.NoError(t, err)
	eb, err := b.Encode(api.Column{"y"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, ea.At(0, 0))
	assert.Equal(t, 1.0, eb.At(0, 0))
}
