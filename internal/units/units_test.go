package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepthConversions(t *testing.T) {
	d := Depth(30000)
	assert.InDelta(t, 30.0, d.Meters(), 1e-9)
	assert.InDelta(t, 98.43, d.Feet(), 0.01)
	assert.Equal(t, int32(30480), FeetToMm(100))
}

func TestVolumeConversions(t *testing.T) {
	assert.InDelta(t, 1.0, MlToCuft(28317), 0.001)
	assert.Equal(t, int32(28317), CuftToMl(1.0))
	assert.InDelta(t, 11.1, Volume(11100).Liters(), 1e-9)
}

func TestDepthUnits(t *testing.T) {
	v, dec, unit := Metric.DepthUnits(12500)
	assert.InDelta(t, 12.5, v, 1e-9)
	assert.Equal(t, 1, dec)
	assert.Equal(t, "m", unit)

	v, dec, unit = Imperial.DepthUnits(30480)
	assert.InDelta(t, 100.0, v, 1e-9)
	assert.Equal(t, 0, dec)
	assert.Equal(t, "ft", unit)
}

func TestPressureUnits(t *testing.T) {
	v, unit := Metric.PressureUnits(232000)
	assert.InDelta(t, 232.0, v, 1e-9)
	assert.Equal(t, "bar", unit)

	psiAsMbar := 3000 * mbarPerPsi
	v, unit = Imperial.PressureUnits(Pressure(psiAsMbar))
	assert.InDelta(t, 3000.0, v, 0.5)
	assert.Equal(t, "psi", unit)
}

func TestTemperatureCelsius(t *testing.T) {
	assert.InDelta(t, 21.0, Temperature(294150).Celsius(), 1e-9)
}

func TestFormatMinSec(t *testing.T) {
	assert.Equal(t, "2:05", FormatMinSec(125))
	assert.Equal(t, "0:00", FormatMinSec(0))
	assert.Equal(t, "60:00", FormatMinSec(3600))
}

func TestRoundedMinutes(t *testing.T) {
	assert.Equal(t, 2, RoundedMinutes(90))
	assert.Equal(t, 1, RoundedMinutes(89))
	assert.Equal(t, 0, RoundedMinutes(29))
}
