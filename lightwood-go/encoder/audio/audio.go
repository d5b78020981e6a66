// Package audio encodes references to audio files as flattened MFCC features.
//
// The encoder is rule-based and one-directional: Prepare only discovers the
// output width and Decode always fails. Rows whose resource cannot be read or
// decoded are logged and encoded as zero vectors, so a batch never fails because
// of a single bad file.
package audio

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/lwlog"
	"github.com/vbrnv/lightwood/lightwood-golib/mfcc"
	"gonum.org/v1/gonum/mat"
)

// Loader reads the resource at path and returns its mono waveform.
type Loader func(path string) (samples []float64, sampleRate int, err error)

// Store persists extracted features across runs; see featurestore.Store.
type Store interface {
	Get(key string) (features []float64, ok bool, err error)
	Put(key string, features []float64) error
}

// Options configures an Encoder.
type Options struct {
	// TimeBuckets is the number of sequential time intervals each waveform is split into.
	// 100 buckets split a 1s clip into 10ms intervals, and a 3 minute song into 1.8s ones.
	TimeBuckets int `json:"time_buckets" yaml:"time_buckets"`
	// Coefficients is the number of MFCCs computed per bucket.
	Coefficients int `json:"coefficients" yaml:"coefficients"`
	// CacheSize bounds the number of encoded resources kept in memory; 0 disables caching.
	CacheSize int `json:"cache_size" yaml:"cache_size"`
	// Loader defaults to LoadWAV.
	Loader Loader `json:"-" yaml:"-"`
	// Store is consulted after the in-memory cache, if set.
	Store Store `json:"-" yaml:"-"`
}

// DefaultOptions are used for zero fields of the Options passed to New.
var DefaultOptions = Options{
	TimeBuckets:  100,
	Coefficients: 20,
}

// Encoder is the audio encoder.
type Encoder struct {
	encoder.Base

	loader Loader
	mfcc   mfcc.Options
	cache  *lru.Cache
	store  Store
}

var _ encoder.Encoder = (*Encoder)(nil)

// New returns an unprepared audio encoder. Audio cannot be a target since the
// encoder has no inverse.
func New(isTarget bool, opts Options) (*Encoder, error) {
	if isTarget {
		return nil, errors.Wrapf(encoder.ErrNotBidirectional, "audio encoder cannot encode a target")
	}
	if opts.TimeBuckets == 0 {
		opts.TimeBuckets = DefaultOptions.TimeBuckets
	}
	if opts.Coefficients == 0 {
		opts.Coefficients = DefaultOptions.Coefficients
	}
	if opts.Loader == nil {
		opts.Loader = LoadWAV
	}

	m := mfcc.DefaultOptions
	m.Frames = opts.TimeBuckets
	m.Coefficients = opts.Coefficients
	if m.Mels < m.Coefficients {
		m.Mels = m.Coefficients
	}

	e := &Encoder{
		loader: opts.Loader,
		mfcc:   m,
		store:  opts.Store,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New(opts.CacheSize)
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}
	return e, nil
}

// Prepare extracts features from the first readable priming element to learn the output width.
// No other state is kept.
func (e *Encoder) Prepare(priming api.Column) error {
	if err := e.CheckPrepare(priming); err != nil {
		return err
	}
	var errs errors.Errors
	for _, v := range priming {
		features, err := e.extract(api.Key(v))
		if err != nil {
			errs = errors.Append(errs, err)
			continue
		}
		e.Width = len(features)
		e.Prepared = true
		if errs != nil {
			lwlog.S().Warnw("skipped unreadable priming audio", "count", errs.Len())
		}
		return nil
	}
	return errors.Wrapf(errs, "no readable audio among %d priming rows", len(priming))
}

// Encode returns one flattened MFCC vector per referenced resource.
func (e *Encoder) Encode(column api.Column) (*mat.Dense, error) {
	if err := e.CheckPrepared(); err != nil {
		return nil, err
	}
	out := encoder.NewTensor(len(column), e.Width)
	var failed int
	for i, v := range column {
		path := api.Key(v)
		features, err := e.extract(path)
		if err == nil && len(features) != e.Width {
			err = errors.Errorf("got %d features, expected %d", len(features), e.Width)
		}
		if err != nil {
			lwlog.S().Errorw("unable to read audio file", "path", path, "error", err)
			failed++
			continue
		}
		out.SetRow(i, features)
	}
	if failed > 0 {
		lwlog.S().Warnw("audio rows replaced with zeros", "failed", failed, "rows", len(column))
	}
	return out, nil
}

// Decode is not supported.
func (e *Encoder) Decode(*mat.Dense) (api.Column, error) {
	return nil, encoder.ErrNotBidirectional
}

func (e *Encoder) extract(path string) ([]float64, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(path); ok {
			return cached.([]float64), nil
		}
	}
	key := fmt.Sprintf("mfcc/%dx%d/%s", e.mfcc.Frames, e.mfcc.Coefficients, path)
	if e.store != nil {
		stored, ok, err := e.store.Get(key)
		if err != nil {
			lwlog.S().Warnw("feature store read failed", "path", path, "error", err)
		}
		if ok && len(stored) == e.mfcc.Width() {
			e.remember(path, stored)
			return stored, nil
		}
	}

	samples, rate, err := e.loader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading %s", path)
	}
	features, err := mfcc.Compute(samples, rate, e.mfcc)
	if err != nil {
		return nil, errors.Wrapf(err, "error extracting features from %s", path)
	}
	if e.store != nil {
		if err := e.store.Put(key, features); err != nil {
			lwlog.S().Warnw("feature store write failed", "path", path, "error", err)
		}
	}
	e.remember(path, features)
	return features, nil
}

func (e *Encoder) remember(path string, features []float64) {
	if e.cache != nil {
		e.cache.Add(path, features)
	}
}
