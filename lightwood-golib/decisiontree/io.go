package decisiontree

import (
	"encoding/json"
	"io"
)

// Load decodes a JSON ensemble
func Load(r io.Reader) (*Ensemble, error) {
	var ensemble Ensemble
	rd := json.NewDecoder(r)
	err := rd.Decode(&ensemble)
	if err != nil {
		return nil, err
	}
	return &ensemble, nil
}

// Save encodes the ensemble as JSON
func (e *Ensemble) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(e)
}
