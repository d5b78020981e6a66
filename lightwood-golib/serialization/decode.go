package serialization

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"io"
	"reflect"
	"strings"

	"github.com/golang/snappy"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/fileutil"
	yaml "gopkg.in/yaml.v2"
)

// Decoder is an interface that matches gob.Decoder, json.Decoder, xml.Decoder and yaml.Decoder
type Decoder interface {
	// Decode extracts an object from the stream
	Decode(interface{}) error
}

// ErrStop is a special value returned from handlers to cease processing
var ErrStop = errors.New("stop processing requested")

// decodeWith with extracts objects from the given decoder and passes them to the handler
func decodeWith(d Decoder, elemType reflect.Type, handler func(interface{}) error) error {
	for {
		elem := reflect.New(elemType).Interface()
		err := d.Decode(elem)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		err = handler(elem)
		if err == ErrStop {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Decode loads a series of objects from a local or remote file. If the path ends
// with .gz, .bz2 or .sz then the contents will be decompressed. The encoding is then
// determined by the remaining file extension, which can be .json, .gob, .xml, .yml or .yaml.
//
// The handler is either a pointer, which receives the first object in the stream,
// or a function taking a pointer, which is called once per object:
//
//   var states []State
//   err := serialization.Decode("/tmp/states.json.gz", func(s *State) {
//     states = append(states, *s)
//   })
func Decode(path string, handler interface{}) error {
	r, err := fileutil.NewReader(path)
	if err != nil {
		return errors.Wrapf(err, "error loading %s", path)
	}
	defer r.Close()
	return decodeAs(r, path, handler)
}

// decodeAs is like Decode but uses the provided path to determine the compression and
// encoding used in the file.
func decodeAs(r io.Reader, path string, handler interface{}) error {
	inpath := path
	// Switch on compression
	switch {
	case strings.HasSuffix(path, ".gz"):
		path = strings.TrimSuffix(path, ".gz")
		rd, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrapf(err, "error loading %s", inpath)
		}
		defer rd.Close()
		r = rd
	case strings.HasSuffix(path, ".bz2"):
		path = strings.TrimSuffix(path, ".bz2")
		r = bzip2.NewReader(r)
	case strings.HasSuffix(path, ".sz"):
		path = strings.TrimSuffix(path, ".sz")
		r = snappy.NewReader(r)
	}

	// Switch on encoding
	var d Decoder
	switch {
	case strings.HasSuffix(path, ".json"):
		d = json.NewDecoder(r)
	case strings.HasSuffix(path, ".gob"):
		d = gob.NewDecoder(r)
	case strings.HasSuffix(path, ".xml"):
		d = xml.NewDecoder(r)
	case strings.HasSuffix(path, ".yml"), strings.HasSuffix(path, ".yaml"):
		d = yaml.NewDecoder(r)
	default:
		return errors.Errorf("could not find decoder for %s", inpath)
	}

	// Examine the function signature
	f := reflect.ValueOf(handler)

	if f.Kind() == reflect.Ptr {
		if err := d.Decode(handler); err != nil {
			return errors.Wrapf(err, "error decoding %s", inpath)
		}
		return nil
	}
	if f.Kind() != reflect.Func {
		return errors.Errorf("expected a function or a pointer as handler, got %s", f.Kind())
	}

	funcType := f.Type()
	if funcType.NumIn() != 1 {
		return errors.New("expected a function with one input parameter")
	}
	if funcType.NumOut() > 1 {
		return errors.New("expected a function with zero or one output parameter")
	}
	ptrType := funcType.In(0)
	if ptrType.Kind() != reflect.Ptr {
		return errors.New("expected function parameter to be a pointer")
	}
	elemType := ptrType.Elem()

	// Do the actual decoding
	err := decodeWith(d, elemType, func(x interface{}) error {
		ret := f.Call([]reflect.Value{reflect.ValueOf(x)})
		if len(ret) == 0 || ret[0].IsNil() {
			return nil
		}
		return ret[0].Interface().(error)
	})
	if err != nil {
		return errors.Wrapf(err, "error decoding %s", inpath)
	}
	return nil
}
