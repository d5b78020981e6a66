package envutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenvDefault(t *testing.T) {
	const key = "LIGHTWOOD_ENVUTIL_TEST"
	os.Unsetenv(key)
	assert.Equal(t, "fallback", GetenvDefault(key, "fallback"))

	require.NoError(t, os.Setenv(key, "set"))
	defer os.Unsetenv(key)
	assert.Equal(t, "set", GetenvDefault(key, "fallback"))
}

func TestGetenvDefaultInt(t *testing.T) {
	const key = "LIGHTWOOD_ENVUTIL_INT_TEST"
	os.Unsetenv(key)
	v, err := GetenvDefaultInt(key, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	require.NoError(t, os.Setenv(key, "20"))
	defer os.Unsetenv(key)
	v, err = GetenvDefaultInt(key, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	require.NoError(t, os.Setenv(key, "twenty"))
	v, err = GetenvDefaultInt(key, 100)
	assert.Error(t, err)
	assert.Equal(t, 100, v)
}
