package tools

import (
	"github.com/sweatstack/sweatstack-mcp/pkg/frame"
)

// MetricSummary aggregates a column into one row per activity id with its
// mean and max, in order of first appearance. Without an activity_id column
// every row belongs to defaultID. Missing cells are ignored; a group with no
// values gets empty mean and max.
func MetricSummary(data *frame.Frame, column, defaultID string) (*frame.Frame, error) {
	type aggregate struct {
		sum   float64
		max   float64
		count int
	}

	ids, hasIDs := data.Column(columnActivityID)
	var order []string
	groups := make(map[string]*aggregate)

	for row := 0; row < data.Len(); row++ {
		id := defaultID
		if hasIDs {
			if ids[row] == nil {
				continue
			}
			id = frame.FormatCell(ids[row])
		}

		agg, ok := groups[id]
		if !ok {
			agg = &aggregate{}
			groups[id] = agg
			order = append(order, id)
		}

		v, ok := data.Float(column, row)
		if !ok {
			continue
		}
		if agg.count == 0 || v > agg.max {
			agg.max = v
		}
		agg.sum += v
		agg.count++
	}

	idCells := make([]any, len(order))
	means := make([]any, len(order))
	maxes := make([]any, len(order))
	for i, id := range order {
		idCells[i] = id
		if agg := groups[id]; agg.count > 0 {
			means[i] = agg.sum / float64(agg.count)
			maxes[i] = agg.max
		}
	}

	table := frame.NewRows(len(order))
	for _, col := range []struct {
		name   string
		values []any
	}{
		{columnActivityID, idCells},
		{"mean", means},
		{"max", maxes},
	} {
		if err := table.Set(col.name, col.values); err != nil {
			return nil, err
		}
	}
	return table, nil
}
