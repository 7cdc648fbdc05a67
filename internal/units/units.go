package units

import "fmt"

// Fixed-point quantity types shared by the whole data model. Floating point
// only appears at the display boundary.
type (
	Depth       int32 // mm
	Pressure    int32 // mbar
	Volume      int32 // mliter
	Temperature int32 // mK
	Duration    int32 // seconds
	Timestamp   int64 // seconds since epoch, UTC
)

type System int

const (
	Metric System = iota
	Imperial
)

const (
	mmPerFoot    = 304.8
	mlPerCuft    = 28316.846592
	mbarPerPsi   = 68.94757293168361
	SurfaceMbar  = 1013
	ZeroCelsiusK = 273150 // mK
)

func MmToFeet(mm int32) float64 {
	return float64(mm) / mmPerFoot
}

func FeetToMm(ft float64) int32 {
	return int32(ft*mmPerFoot + 0.5)
}

func MlToCuft(ml int32) float64 {
	return float64(ml) / mlPerCuft
}

func CuftToMl(cuft float64) int32 {
	return int32(cuft*mlPerCuft + 0.5)
}

func (d Depth) Meters() float64 {
	return float64(d) / 1000.0
}

func (d Depth) Feet() float64 {
	return MmToFeet(int32(d))
}

func (p Pressure) Bar() float64 {
	return float64(p) / 1000.0
}

func (v Volume) Liters() float64 {
	return float64(v) / 1000.0
}

func (t Temperature) Celsius() float64 {
	return float64(t-ZeroCelsiusK) / 1000.0
}

func (d Duration) Minutes() float64 {
	return float64(d) / 60.0
}

// DepthUnits returns the display value, decimal count and unit symbol of a
// depth in the given system.
func (s System) DepthUnits(d Depth) (float64, int, string) {
	if s == Imperial {
		return d.Feet(), 0, "ft"
	}
	return d.Meters(), 1, "m"
}

func (s System) DepthUnit() string {
	if s == Imperial {
		return "ft"
	}
	return "m"
}

// VolumeUnits returns the display value, decimal count and unit symbol of a
// volume in the given system.
func (s System) VolumeUnits(v Volume) (float64, int, string) {
	if s == Imperial {
		return MlToCuft(int32(v)), 2, "cuft"
	}
	return v.Liters(), 1, "ℓ"
}

func (s System) VolumeUnit() string {
	if s == Imperial {
		return "cuft"
	}
	return "ℓ"
}

// PressureUnits returns the display value and unit symbol of a pressure in
// the given system.
func (s System) PressureUnits(p Pressure) (float64, string) {
	if s == Imperial {
		return float64(p) / mbarPerPsi, "psi"
	}
	return p.Bar(), "bar"
}

// FormatMinSec renders a duration as m:ss, used by plan itineraries.
func FormatMinSec(d Duration) string {
	return fmt.Sprintf("%d:%02d", d/60, d%60)
}

// RoundedMinutes rounds a second count to whole minutes, half up.
func RoundedMinutes(d Duration) int {
	return int((d + 30) / 60)
}
