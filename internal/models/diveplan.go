package models

import "divelog/internal/units"

type DecoMode int

const (
	Buehlmann DecoMode = iota
	VPMB
	Recreational
)

// ParseDecoMode maps a config string to a deco model. Anything it does not
// recognise is treated as Bühlmann.
func ParseDecoMode(s string) DecoMode {
	switch s {
	case "vpmb":
		return VPMB
	case "recreational":
		return Recreational
	default:
		return Buehlmann
	}
}

// Datapoint is one waypoint of a dive plan. Time is seconds since the start
// of the dive; Entered marks user-authored waypoints as opposed to
// deco-engine output. MinimumGas is filled in by the plan renderer for the
// last bottom waypoint.
type Datapoint struct {
	Depth      units.Depth
	Time       units.Duration
	CylinderID int
	Setpoint   units.Pressure // mbar, 0 means open circuit
	Entered    bool
	MinimumGas units.Pressure
	Next       *Datapoint
}

// Diveplan is an ordered waypoint sequence plus the deco tuning it was
// computed with. The effective gradient factors are only set after a VPM-B
// run.
type Diveplan struct {
	When             units.Timestamp
	SurfaceInterval  int32 // seconds; negative flags overlapping dives
	GFLow            int
	GFHigh           int
	EffGFLow         int
	EffGFHigh        int
	VPMBConservatism int
	SurfacePressure  units.Pressure
	DP               *Datapoint
}

// Duration is the plan runtime in minutes, rounded half up.
func (p *Diveplan) Duration() int {
	var max units.Duration
	for dp := p.DP; dp != nil; dp = dp.Next {
		if dp.Time > max {
			max = dp.Time
		}
	}
	return units.RoundedMinutes(max)
}

// AddDatapoint appends a waypoint to the end of the plan.
func (p *Diveplan) AddDatapoint(dp *Datapoint) {
	if p.DP == nil {
		p.DP = dp
		return
	}
	last := p.DP
	for last.Next != nil {
		last = last.Next
	}
	last.Next = dp
}

func (p *Diveplan) EffectiveSurfacePressure() units.Pressure {
	if p.SurfacePressure != 0 {
		return p.SurfacePressure
	}
	return units.SurfaceMbar
}
