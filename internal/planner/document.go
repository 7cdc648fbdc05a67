// Package planner renders a computed dive plan into the notes of its dive.
// Rendering happens in two passes: Build assembles a structured Document
// from the plan, HTML serialises it.
package planner

import (
	"divelog/internal/units"
)

// SegmentKind classifies an itinerary row for its leading symbol.
type SegmentKind int

const (
	SegmentAscent SegmentKind = iota
	SegmentDescent
	SegmentConstant
	SegmentDecoStop
)

// ItineraryRow is one line of the tabular plan. Gas is empty unless a gas
// change is shown on this row.
type ItineraryRow struct {
	Kind     SegmentKind
	Depth    string
	Duration string
	Runtime  string
	Gas      string
}

// ICDRow records the fraction and partial-pressure deltas of one trimix gas
// change. Percentages are in percent, pressures in bar. Exceeded rows are
// highlighted.
type ICDRow struct {
	RuntimeMin int
	GasFrom    string
	GasTo      string
	DHePct     float64
	DN2Pct     float64
	MaxDN2Pct  float64
	DHeBar     float64
	DN2Bar     float64
	MaxDN2Bar  float64
	Exceeded   bool
}

// MinGas is the minimum-gas line of a cylinder's consumption entry. Delta is
// the margin left after the planned ascent; a negative delta is flagged.
type MinGas struct {
	SACFactor          float64
	ProblemSolvingTime int
	Depth              string
	Volume             string
	Pressure           string
	Delta              float64
	DeltaUnit          string
	DeltaPositive      bool
}

// GasUse is the consumption summary of one cylinder.
type GasUse struct {
	Mix          string
	Volume       string
	Pressure     string
	HasPressure  bool
	DecoVolume   string
	DecoPressure string
	ShowDeco     bool
	Warning      string
	MinGas       *MinGas
}

// Document is the structured rendering of a dive plan. Every field is
// display ready; HTML only concerns itself with markup.
type Document struct {
	Empty       bool
	Aborted     bool
	Overlapping bool

	Disclaimer     string
	ShowDisclaimer bool

	AppName         string
	Version         string
	CreatedOn       string
	SurfaceInterval string // empty when none is shown

	RuntimeMin     int
	ShowVariations bool

	Verbatim      bool
	VerbatimLines []string

	ShowDuration bool
	ShowRuntime  bool
	Rows         []ItineraryRow

	CNS int
	OTU int

	DecoModel    string
	ATMPressure  units.Pressure
	Altitude     int
	AltitudeUnit string
	GasHeader    string
	GasUses      []GasUse
	HasICDTable  bool
	ICDRows      []ICDRow
	ICDWarning   bool
	O2Warnings   []string
}
