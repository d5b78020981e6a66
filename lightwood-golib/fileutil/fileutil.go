package fileutil

import (
	"bufio"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vbrnv/lightwood/lightwood-golib/awsutil"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
)

// HTTPClient is used for http:// and https:// paths.
var HTTPClient = &http.Client{Timeout: 60 * time.Second}

// IsURL returns true if the path looks like an http(s) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func newReader(path string, s3ReaderMaker func(uri string) (io.ReadCloser, error)) (io.ReadCloser, error) {
	if awsutil.IsS3URI(path) {
		return s3ReaderMaker(path)
	}

	if IsURL(path) {
		resp, err := HTTPClient.Get(path)
		if err != nil {
			return nil, errors.Wrapf(err, "error getting %s", path)
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			io.Copy(ioutil.Discard, resp.Body)
			return nil, errors.Errorf("error getting %s: status code %d", path, resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// NewReader opens a local or remote path for reading. If the path looks like
// "s3://bucket/path/to/object" then this will read an object from S3, if it
// looks like an http(s) URL it is fetched over the network. Otherwise, this
// will read a path from the local filesystem.
func NewReader(path string) (io.ReadCloser, error) {
	return newReader(path, awsutil.NewS3Reader)
}

// ReadFile reads the contents of a local or remote path.
func ReadFile(path string) ([]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return data, nil
}

type bufferedFile struct {
	*bufio.Writer
	f *os.File
}

// Close flushes the buffer and closes the file.
func (b *bufferedFile) Close() error {
	if err := b.Flush(); err != nil {
		b.f.Close()
		return err
	}
	return b.f.Close()
}

// NewBufferedWriter opens a local path for buffered writing, creating parent directories as needed.
func NewBufferedWriter(path string) (io.WriteCloser, error) {
	if awsutil.IsS3URI(path) || IsURL(path) {
		return nil, errors.Errorf("cannot write to remote path %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &bufferedFile{Writer: bufio.NewWriter(f), f: f}, nil
}
