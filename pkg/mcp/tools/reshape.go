package tools

import (
	"fmt"
	"sort"

	"github.com/sweatstack/sweatstack-mcp/pkg/frame"
)

const (
	columnDatetime   = "datetime"
	columnDuration   = "duration"
	columnSpeed      = "speed"
	columnDistance   = "distance"
	columnActivityID = "activity_id"
)

// AgentFriendlyCSV reshapes an activity time series for a language model:
//
//  1. the timestamp index becomes a "datetime" column in wall-clock time
//  2. "distance" is the running sum of duration x speed per activity id
//  3. "duration" is removed
//  4. "datetime" comes first, the other columns follow in lexicographic order
//
// The index itself is not written. data is modified in place.
func AgentFriendlyCSV(data *frame.Frame) (string, error) {
	if err := reshape(data); err != nil {
		return "", err
	}
	return data.CSV()
}

func reshape(data *frame.Frame) error {
	index := data.Index()
	datetimes := make([]any, len(index))
	for i, ts := range index {
		// Formatting keeps each sample's own offset and drops the zone.
		datetimes[i] = ts
	}
	if err := data.Set(columnDatetime, datetimes); err != nil {
		return err
	}

	if data.Has(columnDuration) && data.Has(columnSpeed) {
		if err := data.Set(columnDistance, cumulativeDistance(data)); err != nil {
			return fmt.Errorf("failed to compute distance: %w", err)
		}
	}

	// An absent duration column is not an error.
	data.Drop(columnDuration)

	others := make([]string, 0, len(data.Columns()))
	for _, name := range data.Columns() {
		if name != columnDatetime {
			others = append(others, name)
		}
	}
	sort.Strings(others)

	ordered, err := data.Select(append([]string{columnDatetime}, others...)...)
	if err != nil {
		return err
	}
	*data = *ordered
	return nil
}

// cumulativeDistance returns duration x speed summed per activity id. Without
// an activity_id column all rows form one group.
func cumulativeDistance(data *frame.Frame) []any {
	increments := make([]any, data.Len())
	for row := range increments {
		duration, ok := data.Float(columnDuration, row)
		if !ok {
			continue
		}
		speed, ok := data.Float(columnSpeed, row)
		if !ok {
			continue
		}
		increments[row] = duration * speed
	}

	keys, ok := data.Column(columnActivityID)
	if !ok {
		keys = make([]any, data.Len())
		for i := range keys {
			keys[i] = ""
		}
	}
	return frame.GroupedCumSum(increments, keys)
}
