package sweatstack

import (
	"fmt"
	"strings"
)

// Metric names a measured quantity in activity data. The value doubles as the
// column name in time-series tables.
type Metric string

const (
	MetricPower           Metric = "power"
	MetricSpeed           Metric = "speed"
	MetricHeartRate       Metric = "heart_rate"
	MetricCadence         Metric = "cadence"
	MetricAltitude        Metric = "altitude"
	MetricDistance        Metric = "distance"
	MetricTemperature     Metric = "temperature"
	MetricCoreTemperature Metric = "core_temperature"
	MetricSmO2            Metric = "smo2"
	MetricLactate         Metric = "lactate"
	MetricRPE             Metric = "rpe"
	MetricDuration        Metric = "duration"
	MetricLatitude        Metric = "latitude"
	MetricLongitude       Metric = "longitude"
)

// Metrics lists every known metric in a stable order.
var Metrics = []Metric{
	MetricPower,
	MetricSpeed,
	MetricHeartRate,
	MetricCadence,
	MetricAltitude,
	MetricDistance,
	MetricTemperature,
	MetricCoreTemperature,
	MetricSmO2,
	MetricLactate,
	MetricRPE,
	MetricDuration,
	MetricLatitude,
	MetricLongitude,
}

// MeanMaxMetrics are the metrics the mean-max endpoint supports.
var MeanMaxMetrics = []Metric{MetricPower, MetricSpeed}

// ParseMetric resolves a metric name. Unknown names are an error.
func ParseMetric(name string) (Metric, error) {
	return parseMetricFrom(name, Metrics)
}

// ParseMeanMaxMetric resolves a metric name accepted by the mean-max endpoint.
func ParseMeanMaxMetric(name string) (Metric, error) {
	return parseMetricFrom(name, MeanMaxMetrics)
}

func parseMetricFrom(name string, allowed []Metric) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(name)))
	for _, candidate := range allowed {
		if m == candidate {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q (valid metrics: %s)", name, joinMetrics(allowed))
}

// Contains reports whether m is in metrics.
func Contains(metrics []Metric, m Metric) bool {
	for _, candidate := range metrics {
		if candidate == m {
			return true
		}
	}
	return false
}

// Names returns the metric names as strings.
func Names(metrics []Metric) []string {
	out := make([]string, len(metrics))
	for i, m := range metrics {
		out[i] = string(m)
	}
	return out
}

func joinMetrics(metrics []Metric) string {
	return strings.Join(Names(metrics), ", ")
}
