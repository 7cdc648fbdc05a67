package models

import (
	"github.com/google/uuid"

	"divelog/internal/gas"
	"divelog/internal/units"
)

type DiveMode int

const (
	OC DiveMode = iota
	CCR
	PSCR
	Freedive
	NumDiveModes
)

var diveModeNames = [NumDiveModes]string{"OC", "CCR", "pSCR", "Freedive"}

func (m DiveMode) String() string {
	if m < 0 || m >= NumDiveModes {
		return diveModeNames[OC]
	}
	return diveModeNames[m]
}

type CylinderUse int

const (
	OCGas CylinderUse = iota
	Diluent
	OxygenSupply
	NotUsed
)

const MaxCylinders = 8

// Cylinder is a gas source carried on a dive. Size is the water capacity
// equivalent at 1 bar, pressures are absolute.
type Cylinder struct {
	GasMix      gas.Mix        `json:"gasmix"`
	Size        units.Volume   `json:"size,omitempty"`
	WorkingPres units.Pressure `json:"workingPressure,omitempty"`
	Start       units.Pressure `json:"start,omitempty"`
	End         units.Pressure `json:"end,omitempty"`
	Use         CylinderUse    `json:"use,omitempty"`
	GasUsed     units.Volume   `json:"gasUsed,omitempty"`
	DecoGasUsed units.Volume   `json:"decoGasUsed,omitempty"`
	MinGas      units.Pressure `json:"minGas,omitempty"`
}

// IsNone reports whether the slot is empty. Cylinder 0 is always the
// primary gas source of a dive, even when otherwise zero.
func (c *Cylinder) IsNone() bool {
	return c.Size == 0 && c.Start == 0 && c.End == 0 && c.GasUsed == 0 &&
		c.GasMix == gas.Mix{} && c.Use == OCGas
}

// DiveSite is referenced weakly by dives and owned by the logbook.
type DiveSite struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Lat  float64   `json:"lat,omitempty"`
	Lon  float64   `json:"lon,omitempty"`
}

type Sample struct {
	Time     units.Duration    `json:"time"`
	Depth    units.Depth       `json:"depth"`
	Temp     units.Temperature `json:"temp,omitempty"`
	Pressure units.Pressure    `json:"pressure,omitempty"`
}

type Event struct {
	Time  units.Duration `json:"time"`
	Name  string         `json:"name"`
	Value int            `json:"value,omitempty"`
}

type DiveComputer struct {
	Model    string         `json:"model,omitempty"`
	DiveMode DiveMode       `json:"divemode"`
	Duration units.Duration `json:"duration,omitempty"`
	Samples  []Sample       `json:"samples,omitempty"`
	Events   []Event        `json:"events,omitempty"`
}

// Dive is the central record of the data model. Runtime flags
// (HiddenByFilter, Selected) are never persisted.
type Dive struct {
	ID              int                     `json:"id"`
	Number          int                     `json:"number,omitempty"`
	When            units.Timestamp         `json:"when"`
	Duration        units.Duration          `json:"duration"`
	MaxDepth        units.Depth             `json:"maxDepth,omitempty"`
	MeanDepth       units.Depth             `json:"meanDepth,omitempty"`
	WaterTemp       units.Temperature       `json:"waterTemp,omitempty"`
	AirTemp         units.Temperature       `json:"airTemp,omitempty"`
	SurfacePressure units.Pressure          `json:"surfacePressure,omitempty"`
	Salinity        int                     `json:"salinity,omitempty"`
	DCSalinity      int                     `json:"dcSalinity,omitempty"`
	Visibility      int                     `json:"visibility,omitempty"`
	WaveSize        int                     `json:"waveSize,omitempty"`
	Current         int                     `json:"current,omitempty"`
	Surge           int                     `json:"surge,omitempty"`
	Chill           int                     `json:"chill,omitempty"`
	Buddy           string                  `json:"buddy,omitempty"`
	DiveMaster      string                  `json:"diveMaster,omitempty"`
	Suit            string                  `json:"suit,omitempty"`
	Tags            []string                `json:"tags,omitempty"`
	Notes           string                  `json:"notes,omitempty"`
	SiteID          uuid.UUID               `json:"siteId,omitempty"`
	Site            *DiveSite               `json:"-"`
	Cylinders       [MaxCylinders]Cylinder  `json:"cylinders"`
	DC              DiveComputer            `json:"dc"`
	Invalid         bool                    `json:"invalid,omitempty"`
	HiddenByFilter  bool                    `json:"-"`
	Selected        bool                    `json:"-"`
	CNS             int                     `json:"cns,omitempty"`
	MaxCNS          int                     `json:"maxCns,omitempty"`
	OTU             int                     `json:"otu,omitempty"`
	SAC             int                     `json:"sac,omitempty"`
}

// EffectiveSalinity prefers the user override over the dive computer value
// and falls back to EN13319 salt water.
func (d *Dive) EffectiveSalinity() int {
	if d.Salinity != 0 {
		return d.Salinity
	}
	if d.DCSalinity != 0 {
		return d.DCSalinity
	}
	return 10300
}

func (d *Dive) EffectiveSurfacePressure() units.Pressure {
	if d.SurfacePressure != 0 {
		return d.SurfacePressure
	}
	return units.SurfaceMbar
}

func (d *Dive) DepthToMbar(depth units.Depth) units.Pressure {
	return gas.DepthToMbar(depth, d.EffectiveSalinity(), d.EffectiveSurfacePressure())
}

func (d *Dive) DepthToBar(depth units.Depth) float64 {
	return gas.DepthToBar(depth, d.EffectiveSalinity(), d.EffectiveSurfacePressure())
}

func (d *Dive) DepthToAtm(depth units.Depth) float64 {
	return gas.DepthToAtm(depth, d.EffectiveSalinity(), d.EffectiveSurfacePressure())
}

// CylinderMix returns the mix of a cylinder by index, defaulting to
// cylinder 0 for out-of-range ids so that corrupt plans degrade gracefully.
func (d *Dive) CylinderMix(id int) gas.Mix {
	if id < 0 || id >= MaxCylinders {
		id = 0
	}
	return d.Cylinders[id].GasMix
}

// UpdateCylinderRelatedInfo recomputes the surface air consumption from the
// accumulated cylinder usage. CNS, OTU and ceiling data come from the deco
// engine and are left untouched. Zero-length dives and dives without a mean
// depth keep SAC at 0 so that display layers can omit the value.
func UpdateCylinderRelatedInfo(d *Dive) {
	if d.Duration <= 0 || d.MeanDepth <= 0 {
		d.SAC = 0
		return
	}
	var used units.Volume
	for i := range d.Cylinders {
		cyl := &d.Cylinders[i]
		if cyl.IsNone() || cyl.Use != OCGas {
			continue
		}
		used += cyl.GasUsed
	}
	if used <= 0 {
		d.SAC = 0
		return
	}
	pressure := d.DepthToBar(d.MeanDepth)
	d.SAC = int(float64(used) / pressure / d.Duration.Minutes())
}
