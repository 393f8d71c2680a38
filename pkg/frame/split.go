package frame

import (
	"encoding/json"
	"fmt"
	"time"
)

// Split is the "split" JSON orientation of a table: column names, one index
// value per row, and the row-major cell data.
type Split struct {
	Columns []string `json:"columns"`
	Index   []string `json:"index"`
	Data    [][]any  `json:"data"`
}

// FromSplit builds a frame from split-oriented data. Index values must be
// RFC3339 timestamps; their offsets are preserved.
func FromSplit(s Split) (*Frame, error) {
	if len(s.Index) != len(s.Data) {
		return nil, fmt.Errorf("index has %d entries but data has %d rows", len(s.Index), len(s.Data))
	}

	index := make([]time.Time, len(s.Index))
	for i, raw := range s.Index {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp %q: %w", i, raw, err)
		}
		index[i] = t
	}

	f := New(index)
	for col, name := range s.Columns {
		values := make([]any, len(s.Data))
		for row, cells := range s.Data {
			if len(cells) != len(s.Columns) {
				return nil, fmt.Errorf("row %d has %d cells, expected %d", row, len(cells), len(s.Columns))
			}
			values[row] = normalizeCell(cells[col])
		}
		if err := f.Set(name, values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// UnmarshalJSON decodes a split-oriented table.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var s Split
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := FromSplit(s)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

func normalizeCell(v any) any {
	switch c := v.(type) {
	case nil, string, float64:
		return c
	case json.Number:
		if x, err := c.Float64(); err == nil {
			return x
		}
		return c.String()
	case bool:
		return c
	default:
		return fmt.Sprint(c)
	}
}
