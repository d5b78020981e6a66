package serialization

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/fileutil"
	yaml "gopkg.in/yaml.v2"
)

// Encode writes the object to the path, using the format specified by the file
// extension, which can be .json, .gob, .xml, .yml, or .yaml. The path may
// additionally have a .gz or .sz suffix, in which case the stream will be
// compressed with gzip or snappy.
func Encode(path string, obj interface{}) (err error) {
	enc, err := NewEncoder(path)
	if err != nil {
		return err
	}
	defer errors.Defer(&err, enc.Close)
	return enc.Encode(obj)
}

// Encoder is an interface that matches gob.Encoder, json.Encoder, xml.Encoder and yaml.Encoder
type Encoder interface {
	// Encoder adds an item to the stream
	Encode(interface{}) error
}

// EncodeCloser is an encoder that can also close its underlying stream
type EncodeCloser struct {
	encoder Encoder
	closers []io.Closer
}

// Encode writes an object to the underlying stream
func (e *EncodeCloser) Encode(x interface{}) error {
	return e.encoder.Encode(x)
}

// Close closes the underlying stream
func (e *EncodeCloser) Close() error {
	var closeErr error
	// We must close in reverse order
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}

// NewEncoder opens the specified path and returns an encoder that writes in the format
// specified by the file extension. See Encode for the supported extensions.
func NewEncoder(path string) (*EncodeCloser, error) {
	f, err := fileutil.NewBufferedWriter(path)
	if err != nil {
		return nil, err
	}
	enc, err := newEncoderFor(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return enc, nil
}

func newEncoderFor(w io.WriteCloser, path string) (*EncodeCloser, error) {
	inpath := path
	closers := []io.Closer{w}

	// Switch on compression
	switch {
	case strings.HasSuffix(path, ".gz"):
		path = strings.TrimSuffix(path, ".gz")
		w = gzip.NewWriter(w)
		closers = append(closers, w)
	case strings.HasSuffix(path, ".sz"):
		path = strings.TrimSuffix(path, ".sz")
		w = snappy.NewBufferedWriter(w)
		closers = append(closers, w)
	}

	// Switch on encoding
	var e Encoder
	switch {
	case strings.HasSuffix(path, ".json"):
		e = json.NewEncoder(w)
	case strings.HasSuffix(path, ".gob"):
		e = gob.NewEncoder(w)
	case strings.HasSuffix(path, ".xml"):
		e = xml.NewEncoder(w)
	case strings.HasSuffix(path, ".yml"), strings.HasSuffix(path, ".yaml"):
		ye := yaml.NewEncoder(w)
		e = ye
		closers = append(closers, ye)
	default:
		return nil, errors.Errorf("could not find encoder for %s", inpath)
	}

	return &EncodeCloser{
		encoder: e,
		closers: closers,
	}, nil
}
