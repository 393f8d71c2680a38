package tools

import (
	"github.com/sweatstack/sweatstack-mcp/pkg/sweatstack"
)

// SelectAdaptiveSampling picks the metric the API downsamples around.
// Cycling anchors on power. Other sports anchor on power when it was recorded
// and on speed otherwise. ok is false when the anchor was not recorded, in
// which case the data is requested without adaptive sampling.
func SelectAdaptiveSampling(activity *sweatstack.Activity) (sweatstack.Metric, bool) {
	anchor := sweatstack.MetricSpeed
	switch {
	case activity.Sport.IsSubSportOf(sweatstack.SportCycling):
		anchor = sweatstack.MetricPower
	case activity.HasMetric(sweatstack.MetricPower):
		anchor = sweatstack.MetricPower
	}

	if !activity.HasMetric(anchor) {
		return anchor, false
	}
	return anchor, true
}

func dataOptionsFor(activity *sweatstack.Activity) []sweatstack.DataOption {
	anchor, ok := SelectAdaptiveSampling(activity)
	if !ok {
		return nil
	}
	return []sweatstack.DataOption{sweatstack.WithAdaptiveSampling(anchor)}
}
