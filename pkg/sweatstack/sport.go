package sweatstack

import (
	"fmt"
	"sort"
	"strings"
)

// Sport identifies the kind of activity. Sub-sports extend their parent with
// a dotted suffix, e.g. "cycling.road" is a sub-sport of "cycling".
type Sport string

const (
	SportCycling                Sport = "cycling"
	SportCyclingRoad            Sport = "cycling.road"
	SportCyclingTT              Sport = "cycling.tt"
	SportCyclingCyclocross      Sport = "cycling.cyclocross"
	SportCyclingGravel          Sport = "cycling.gravel"
	SportCyclingMountainbike    Sport = "cycling.mountainbike"
	SportCyclingTrack           Sport = "cycling.track"
	SportCyclingTrainer         Sport = "cycling.trainer"
	SportRunning                Sport = "running"
	SportRunningRoad            Sport = "running.road"
	SportRunningTrack           Sport = "running.track"
	SportRunningTrail           Sport = "running.trail"
	SportRunningTreadmill       Sport = "running.treadmill"
	SportWalking                Sport = "walking"
	SportWalkingHiking          Sport = "walking.hiking"
	SportCrossCountrySkiing     Sport = "cross_country_skiing"
	SportCrossCountrySkiClassic Sport = "cross_country_skiing.classic"
	SportCrossCountrySkiSkate   Sport = "cross_country_skiing.skate"
	SportCrossCountrySkiRoller  Sport = "cross_country_skiing.roller"
	SportRowing                 Sport = "rowing"
	SportRowingErgometer        Sport = "rowing.ergometer"
	SportRowingIndoor           Sport = "rowing.indoor"
	SportRowingRegatta          Sport = "rowing.regatta"
	SportSwimming               Sport = "swimming"
	SportSwimmingPool           Sport = "swimming.pool"
	SportSwimmingOpenWater      Sport = "swimming.open_water"
	SportGeneric                Sport = "generic"
	SportUnknown                Sport = "unknown"
)

var knownSports = map[Sport]bool{
	SportCycling: true, SportCyclingRoad: true, SportCyclingTT: true,
	SportCyclingCyclocross: true, SportCyclingGravel: true, SportCyclingMountainbike: true,
	SportCyclingTrack: true, SportCyclingTrainer: true,
	SportRunning: true, SportRunningRoad: true, SportRunningTrack: true,
	SportRunningTrail: true, SportRunningTreadmill: true,
	SportWalking: true, SportWalkingHiking: true,
	SportCrossCountrySkiing: true, SportCrossCountrySkiClassic: true,
	SportCrossCountrySkiSkate: true, SportCrossCountrySkiRoller: true,
	SportRowing: true, SportRowingErgometer: true, SportRowingIndoor: true, SportRowingRegatta: true,
	SportSwimming: true, SportSwimmingPool: true, SportSwimmingOpenWater: true,
	SportGeneric: true, SportUnknown: true,
}

// Sports returns all known sports sorted by name.
func Sports() []Sport {
	out := make([]Sport, 0, len(knownSports))
	for s := range knownSports {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseSport validates a sport name.
func ParseSport(name string) (Sport, error) {
	s := Sport(strings.TrimSpace(name))
	if !knownSports[s] {
		return "", fmt.Errorf("unknown sport %q (valid sports: %s)", name, joinSports(Sports()))
	}
	return s, nil
}

// IsSubSportOf reports whether s is parent or one of its sub-sports.
func (s Sport) IsSubSportOf(parent Sport) bool {
	return s == parent || strings.HasPrefix(string(s), string(parent)+".")
}

func joinSports(sports []Sport) string {
	names := make([]string, len(sports))
	for i, s := range sports {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
