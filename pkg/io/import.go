package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadResults decodes a result file from r.
//
// Every record must have a path and a new diagram. ReadResults does not
// close r.
func ReadResults(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for i, rec := range records {
		if rec.Path == "" {
			return nil, fmt.Errorf("record %d: missing path", i)
		}
		if rec.Difference.New == "" {
			return nil, fmt.Errorf("record %s: missing new diagram", rec.Path)
		}
	}
	return records, nil
}

// ImportResults reads the result file at path.
func ImportResults(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadResults(f)
}
