package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/mat"
)

func TestBaseLifecycle(t *testing.T) {
	b := &Base{Width: 2}
	assert.False(t, b.IsPrepared())
	assert.False(t, b.IsTrainable())
	assert.Equal(t, ErrNotPrepared, b.CheckPrepared())
	assert.Equal(t, ErrEmptyColumn, b.CheckPrepare(nil))
	require.NoError(t, b.CheckPrepare(api.Column{1}))

	b.Prepared = true
	assert.NoError(t, b.CheckPrepared())
	assert.Equal(t, ErrAlreadyPrepared, b.CheckPrepare(api.Column{1}))
}

func TestCheckDecodeWidth(t *testing.T) {
	b := &Base{Width: 2, Prepared: true}
	assert.NoError(t, b.CheckDecode(mat.NewDense(3, 2, nil)))
	assert.NoError(t, b.CheckDecode(nil))
	err := b.CheckDecode(mat.NewDense(3, 1, nil))
	assert.True(t, errors.Is(err, ErrWidthMismatch))
}

func TestNewTensor(t *testing.T) {
	assert.Nil(t, NewTensor(0, 3))
	assert.Equal(t, 0, Rows(nil))

	m := NewTensor(2, 3)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, Rows(m))
}
