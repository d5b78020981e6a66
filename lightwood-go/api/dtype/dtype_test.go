package dtype

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	for _, d := range All() {
		got, ok := FromName(d.Name())
		require.True(t, ok, d.Name())
		assert.Equal(t, d, got)
	}
	assert.Equal(t, "short_text", ShortText.String())
	assert.Equal(t, "invalid", Dtype(99).Name())
}

func TestFromNameUnknown(t *testing.T) {
	d, ok := FromName("bogus")
	assert.False(t, ok)
	assert.Equal(t, Invalid, d)

	_, ok = FromName("invalid")
	assert.False(t, ok)
}

func TestAll(t *testing.T) {
	all := All()
	assert.Len(t, all, len(names)-1)
	assert.Equal(t, Integer, all[0])
	assert.NotContains(t, all, Invalid)

	all[0] = Invalid
	assert.Equal(t, Integer, All()[0], "All returns a copy")
}

func TestJSON(t *testing.T) {
	buf, err := json.Marshal(map[string]Dtype{"target": Tags})
	require.NoError(t, err)
	assert.JSONEq(t, `{"target": "tags"}`, string(buf))

	var out struct {
		Dtype Dtype `json:"dtype"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dtype": "array"}`), &out))
	assert.Equal(t, Array, out.Dtype)
}
