// Package frame provides a small column-oriented table indexed by sample
// timestamps. Cells hold a float64, a string, a time.Time, or nil for a
// missing value.
package frame

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Frame is a table whose rows are addressed by a timestamp index.
// Column order is insertion order unless changed with Select.
type Frame struct {
	index   []time.Time
	names   []string
	columns map[string][]any
}

// New creates an empty frame with the given index.
func New(index []time.Time) *Frame {
	return &Frame{
		index:   index,
		columns: make(map[string][]any),
	}
}

// NewRows creates an empty frame of n rows with a zero index, for tables that
// are not time series.
func NewRows(n int) *Frame {
	return New(make([]time.Time, n))
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.index)
}

// Index returns the row timestamps.
func (f *Frame) Index() []time.Time {
	return f.index
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.names))
	copy(names, f.names)
	return names
}

// Has reports whether the frame has a column with the given name.
func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Column returns the cells of a column.
func (f *Frame) Column(name string) ([]any, bool) {
	values, ok := f.columns[name]
	return values, ok
}

// Set adds a column at the end, or replaces an existing column in place.
func (f *Frame) Set(name string, values []any) error {
	if len(values) != len(f.index) {
		return fmt.Errorf("column %q has %d values, frame has %d rows", name, len(values), len(f.index))
	}
	if _, exists := f.columns[name]; !exists {
		f.names = append(f.names, name)
	}
	f.columns[name] = values
	return nil
}

// Drop removes a column and reports whether it was present.
func (f *Frame) Drop(name string) bool {
	if _, ok := f.columns[name]; !ok {
		return false
	}
	delete(f.columns, name)
	for i, n := range f.names {
		if n == name {
			f.names = append(f.names[:i], f.names[i+1:]...)
			break
		}
	}
	return true
}

// Select returns a frame holding only the named columns, in the given order.
// Column slices are shared with f.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := New(f.index)
	for _, name := range names {
		values, ok := f.columns[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		if _, dup := out.columns[name]; dup {
			return nil, fmt.Errorf("column %q selected twice", name)
		}
		out.names = append(out.names, name)
		out.columns[name] = values
	}
	return out, nil
}

// Float returns the numeric value of a cell. Missing, non-numeric, and NaN
// cells report false.
func (f *Frame) Float(name string, row int) (float64, bool) {
	values, ok := f.columns[name]
	if !ok || row < 0 || row >= len(values) {
		return 0, false
	}
	return AsFloat(values[row])
}

// AsFloat converts a cell to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case float32:
		if math.IsNaN(float64(n)) {
			return 0, false
		}
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		x, err := n.Float64()
		return x, err == nil
	default:
		return 0, false
	}
}

// WriteCSV writes the columns as CSV with a header row. The index is not
// written.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.names); err != nil {
		return err
	}

	record := make([]string, len(f.names))
	for row := range f.index {
		for i, name := range f.names {
			record[i] = FormatCell(f.columns[name][row])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSV returns the frame as CSV text.
func (f *Frame) CSV() (string, error) {
	var b strings.Builder
	if err := f.WriteCSV(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// FormatCell renders one cell for CSV output. Missing values are empty.
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		if math.IsNaN(c) {
			return ""
		}
		return strconv.FormatFloat(c, 'f', -1, 64)
	case time.Time:
		return c.Format("2006-01-02 15:04:05.999999")
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}
