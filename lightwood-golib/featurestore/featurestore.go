// Package featurestore persists extracted feature vectors in a LevelDB database, keyed by the
// resource they were extracted from.
package featurestore

import (
	"encoding/json"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
)

// Store is a LevelDB-backed feature store. It is safe for concurrent use.
type Store struct {
	db *leveldb.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: 100,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error opening feature store %s", path)
	}
	return &Store{db: db}, nil
}

// Get returns the features stored under key; ok is false if there are none.
func (s *Store) Get(key string) (features []float64, ok bool, err error) {
	val, err := s.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(val, &features); err != nil {
		return nil, false, errors.Wrapf(err, "corrupt features for %s", key)
	}
	return features, true, nil
}

// Put stores features under key, replacing any previous value.
func (s *Store) Put(key string, features []float64) error {
	val, err := json.Marshal(features)
	if err != nil {
		return err
	}
	return s.db.Put([]byte(key), val, nil)
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
