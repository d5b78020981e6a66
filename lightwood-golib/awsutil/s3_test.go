package awsutil

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsS3URI(t *testing.T) {
	assert.True(t, IsS3URI("s3://bucket/clips/a.wav"))
	assert.False(t, IsS3URI("/tmp/a.wav"))
	assert.False(t, IsS3URI("https://example.com/a.wav"))
}

func TestValidateURI(t *testing.T) {
	u, err := ValidateURI("s3://bucket/clips/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "bucket", u.Host)
	assert.Equal(t, "/clips/a.wav", u.Path)

	_, err = ValidateURI("https://example.com/a.wav")
	assert.Error(t, err)

	_, err = ValidateURI("s3:///a.wav")
	assert.Error(t, err)
}

func TestNewS3Reader(t *testing.T) {
	if !awsTests {
		t.Skip(`Use "go test -aws" to run tests that rely on AWS connectivity`)
	}
	uri := os.Getenv("LIGHTWOOD_S3_TEST_URI")
	if uri == "" {
		t.Skip("LIGHTWOOD_S3_TEST_URI not set")
	}

	r, err := NewS3Reader(uri)
	require.NoError(t, err)
	defer r.Close()

	buf, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	assert.NotEmpty(t, buf)
}
