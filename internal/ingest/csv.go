package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"data-jobs/internal/frame"
	"data-jobs/internal/pkg/apperr"
)

// LoadCSV reads the CSV file at path into a frame of text columns.
func LoadCSV(path string) (*frame.Frame, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, apperr.InvalidInput("empty csv path", nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.InvalidInput("open csv "+path, err)
	}
	defer f.Close()

	fr, err := ReadCSV(f)
	if err != nil {
		return nil, apperr.InvalidInput("read csv "+path, err)
	}
	return fr, nil
}

// ReadCSV reads a header line followed by records. Every column is
// frame.KindText and empty cells are null.
func ReadCSV(r io.Reader) (*frame.Frame, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	names, err := headerNames(header)
	if err != nil {
		return nil, err
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	fr := frame.New(len(records))
	for ci, name := range names {
		col := frame.NewColumn(name, frame.KindText, len(records))
		for ri, rec := range records {
			if v := rec[ci]; v != "" {
				col.Values[ri] = v
			}
		}
		if err := fr.Append(col); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

func headerNames(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			return nil, fmt.Errorf("empty header name at column %d", i+1)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate header name %q", name)
		}
		seen[name] = struct{}{}
		out[i] = name
	}
	return out, nil
}
