package gas

import (
	"fmt"
	"math"

	"divelog/internal/units"
)

// Mix is a breathing-gas mixture in permille of O₂ and He. The nitrogen
// fraction is derived. A zero O₂ value means air, following the convention
// of most dive computers.
type Mix struct {
	O2 int `json:"o2"`
	He int `json:"he"`
}

const O2InAir = 209

var Air = Mix{}

// EffectiveO2 resolves the air convention: a mix with O2 == 0 is air.
func (m Mix) EffectiveO2() int {
	if m.O2 == 0 {
		return O2InAir
	}
	return m.O2
}

func (m Mix) N2() int {
	return 1000 - m.EffectiveO2() - m.He
}

func (m Mix) IsAir() bool {
	return m.He == 0 && (m.O2 == 0 || (m.O2 >= 208 && m.O2 <= 210))
}

// Name renders the conventional short name of a mix: air, oxygen, EANxx for
// nitrox or O2/He for trimix.
func (m Mix) Name() string {
	if m.IsAir() {
		return "air"
	}
	if m.EffectiveO2() >= 1000 {
		return "oxygen"
	}
	if m.He == 0 {
		return fmt.Sprintf("EAN%d", (m.EffectiveO2()+5)/10)
	}
	return fmt.Sprintf("%d/%d", (m.EffectiveO2()+5)/10, (m.He+5)/10)
}

// Distance is the taxicab distance between two mixes, used to decide whether
// a waypoint constitutes a gas change.
func Distance(a, b Mix) int {
	delta := abs(a.EffectiveO2()-b.EffectiveO2()) + abs(a.He-b.He)
	return delta
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// Pressures holds the partial pressures of a breathing gas in bar.
type Pressures struct {
	O2 float64
	N2 float64
	He float64
}

// FillPressures computes open-circuit partial pressures at the given ambient
// pressure (atm). Closed-circuit loops are handled by the caller via the
// setpoint and never reach this computation.
func FillPressures(amb float64, m Mix) Pressures {
	return Pressures{
		O2: amb * float64(m.EffectiveO2()) / 1000.0,
		N2: amb * float64(m.N2()) / 1000.0,
		He: amb * float64(m.He) / 1000.0,
	}
}

// ICD holds the fraction deltas of a gas change in permille. Negative dHe
// with rising nitrogen is the isobaric-counterdiffusion risk pattern.
type ICD struct {
	DN2 int
	DHe int
}

// Exceeded reports whether the change breaks the 1:5 rule, i.e. the nitrogen
// increase is more than a fifth of the helium drop.
func (i ICD) Exceeded() bool {
	return 5*i.DN2 > -i.DHe
}

// IsobaricCounterdiffusion computes the fraction deltas of switching from
// one mix to another. The returned bool flags an ICD rule violation; it can
// only trigger when helium is given up for nitrogen.
func IsobaricCounterdiffusion(from, to Mix) (ICD, bool) {
	res := ICD{
		DN2: to.N2() - from.N2(),
		DHe: to.He - from.He,
	}
	return res, from.He > 0 && res.DN2 > 0 && res.DHe < 0 && res.Exceeded()
}

// Virial coefficients for the compressibility polynomial, per permille of
// gas fraction and bar of pressure.
var (
	o2Coefficients = [3]float64{-7.18092073703e-04, +2.81852572808e-06, -1.50290620492e-09}
	n2Coefficients = [3]float64{-2.19260353292e-04, +2.92844845532e-06, -2.07613482075e-09}
	heCoefficients = [3]float64{+4.87320026468e-04, -8.83632921053e-08, +5.33304543646e-11}
)

func virial(c [3]float64, bar float64) float64 {
	return bar * (c[0] + bar*(c[1]+bar*c[2]))
}

// CompressibilityFactor returns Z for the mix at the given pressure in bar.
func CompressibilityFactor(m Mix, bar float64) float64 {
	if bar < 0 {
		bar = 0
	}
	z := float64(m.EffectiveO2())*virial(o2Coefficients, bar) +
		float64(m.He)*virial(heCoefficients, bar) +
		float64(m.N2())*virial(n2Coefficients, bar)
	return 1.0 + z/1000.0
}

// IsothermalPressure computes the real-gas pressure in bar of a cylinder of
// the given size holding the given surface volume (both mliter), at the
// reference pressure. Solved by fixed-point iteration on Z.
func IsothermalPressure(m Mix, referenceBar float64, volume, size units.Volume) float64 {
	if size <= 0 {
		return 0
	}
	ideal := float64(volume) / float64(size) * referenceBar
	pressure := ideal
	for i := 0; i < 10; i++ {
		next := ideal * CompressibilityFactor(m, pressure)
		if math.Abs(next-pressure) < 1e-6 {
			return next
		}
		pressure = next
	}
	return pressure
}

// DepthToMbar converts a depth to absolute pressure. Salinity is in g/10ℓ
// (10000 = fresh, 10300 = EN13319 salt water), surface pressure in mbar.
func DepthToMbar(depth units.Depth, salinity int, surface units.Pressure) units.Pressure {
	if salinity == 0 {
		salinity = 10300
	}
	if surface == 0 {
		surface = units.SurfaceMbar
	}
	specificWeight := float64(salinity) / 10000.0 * 0.981
	return surface + units.Pressure(float64(depth)*specificWeight/10.0+0.5)
}

func DepthToBar(depth units.Depth, salinity int, surface units.Pressure) float64 {
	return DepthToMbar(depth, salinity, surface).Bar()
}

// DepthToAtm converts a depth to ambient pressure in multiples of the
// dive's surface pressure.
func DepthToAtm(depth units.Depth, salinity int, surface units.Pressure) float64 {
	if surface == 0 {
		surface = units.SurfaceMbar
	}
	return float64(DepthToMbar(depth, salinity, surface)) / float64(surface)
}
