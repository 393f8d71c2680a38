package sweatstack

import "time"

// Activity is the full metadata of a single recorded workout.
type Activity struct {
	ID      string         `json:"id"`
	Name    string         `json:"name,omitempty"`
	Sport   Sport          `json:"sport"`
	Start   time.Time      `json:"start"`
	End     time.Time      `json:"end"`
	Metrics []Metric       `json:"metrics"`
	Summary map[string]any `json:"summary,omitempty"`
	Laps    []Lap          `json:"laps,omitempty"`
}

// HasMetric reports whether the activity recorded m.
func (a *Activity) HasMetric(m Metric) bool {
	return Contains(a.Metrics, m)
}

// Lap is one lap of an activity with its aggregated values.
type Lap struct {
	Start   time.Time      `json:"start"`
	End     time.Time      `json:"end"`
	Summary map[string]any `json:"summary,omitempty"`
}

// ActivitySummary is an entry of the activity listing.
type ActivitySummary struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Sport    Sport     `json:"sport"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration float64   `json:"duration"`
	Distance float64   `json:"distance"`
	Metrics  []Metric  `json:"metrics"`
}

// MeanMaxPoint is the best average value of a metric over a window length.
type MeanMaxPoint struct {
	// Duration is the window length in seconds.
	Duration float64 `json:"duration"`
	Value    float64 `json:"value"`
}

// ListOptions narrows an activity listing.
type ListOptions struct {
	Sports []Sport
	Start  *time.Time
	End    *time.Time
	Limit  int
	Offset int
}

// DataOption configures a time-series request.
type DataOption func(*dataOptions)

type dataOptions struct {
	adaptiveSamplingOn Metric
}

// WithAdaptiveSampling asks the API to downsample around the given metric.
func WithAdaptiveSampling(m Metric) DataOption {
	return func(o *dataOptions) {
		o.adaptiveSamplingOn = m
	}
}
