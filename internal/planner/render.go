package planner

import (
	"fmt"
	"math"
	"time"

	"divelog/internal/gas"
	"divelog/internal/models"
	"divelog/internal/structures"
	"divelog/internal/units"
)

const disclaimerFmt = "DISCLAIMER / WARNING: THIS IS A NEW IMPLEMENTATION OF THE %s " +
	"ALGORITHM AND A DIVE PLANNER IMPLEMENTATION BASED ON THAT WHICH HAS " +
	"RECEIVED ONLY A LIMITED AMOUNT OF TESTING. WE STRONGLY RECOMMEND NOT TO " +
	"PLAN DIVES SIMPLY BASED ON THE RESULTS GIVEN HERE."

func unitSystem(conf *structures.Config) units.System {
	if conf.Units.Length == "feet" {
		return units.Imperial
	}
	return units.Metric
}

func decoModeName(mode models.DecoMode) string {
	if mode == models.VPMB {
		return "VPM-B"
	}
	return "BUHLMANN"
}

// Build assembles the plan document. It mutates the dive: SAC is recomputed
// from the cylinder usage, and the minimum-gas pressure is stored on the
// last bottom waypoint.
func Build(conf *structures.Config, plan *models.Diveplan, dive *models.Dive, showDisclaimer, aborted bool) *Document {
	system := unitSystem(conf)
	decoMode := models.ParseDecoMode(conf.Planner.DecoMode)

	doc := &Document{
		Disclaimer:     fmt.Sprintf(disclaimerFmt, decoModeName(decoMode)),
		ShowDisclaimer: showDisclaimer,
		AppName:        conf.AppName,
		Version:        conf.Version,
		Verbatim:       conf.Planner.VerbatimPlan,
		ShowDuration:   conf.Planner.DisplayDuration,
		ShowRuntime:    conf.Planner.DisplayRuntime,
	}

	if plan.DP == nil {
		doc.Empty = true
		return doc
	}
	if aborted {
		doc.Aborted = true
		return doc
	}

	switch {
	case plan.SurfaceInterval < 0:
		doc.Overlapping = true
		return doc
	case plan.SurfaceInterval >= 48*60*60:
		doc.CreatedOn = time.Now().UTC().Format("2006-01-02 15:04")
	default:
		doc.SurfaceInterval = fmt.Sprintf("%d:%02d",
			plan.SurfaceInterval/3600, plan.SurfaceInterval/60%60)
		doc.CreatedOn = time.Now().UTC().Format("2006-01-02 15:04")
	}

	doc.RuntimeMin = plan.Duration()
	doc.ShowVariations = conf.Planner.DisplayVariations && decoMode != models.Recreational

	for i := range dive.Cylinders {
		cyl := &dive.Cylinders[i]
		if cyl.Use == models.OCGas && cyl.GasMix.He > 0 {
			doc.HasICDTable = true
			break
		}
	}

	lastbottomdp := buildItinerary(conf, plan, dive, doc, system)

	dive.CNS = 0
	dive.MaxCNS = 0
	models.UpdateCylinderRelatedInfo(dive)
	doc.CNS = dive.CNS
	doc.OTU = dive.OTU

	switch decoMode {
	case models.VPMB:
		if plan.VPMBConservatism == 0 {
			doc.DecoModel = "Deco model: VPM-B at nominal conservatism"
		} else {
			doc.DecoModel = fmt.Sprintf("Deco model: VPM-B at +%d conservatism", plan.VPMBConservatism)
		}
		if plan.EffGFLow != 0 {
			doc.DecoModel += fmt.Sprintf(", effective GF=%d/%d", plan.EffGFLow, plan.EffGFHigh)
		}
	case models.Recreational:
		doc.DecoModel = fmt.Sprintf(
			"Deco model: Recreational mode based on Bühlmann ZHL-16B with GFLow = %d%% and GFHigh = %d%%",
			plan.GFLow, plan.GFHigh)
	default:
		doc.DecoModel = fmt.Sprintf(
			"Deco model: Bühlmann ZHL-16C with GFLow = %d%% and GFHigh = %d%%",
			plan.GFLow, plan.GFHigh)
	}

	surface := plan.EffectiveSurfacePressure()
	doc.ATMPressure = surface
	altitudeMm := math.Log(1013.0/float64(surface)) * 7800000
	altValue, _, altUnit := system.DepthUnits(units.Depth(altitudeMm))
	doc.Altitude = int(altValue)
	doc.AltitudeUnit = altUnit

	buildGasConsumption(conf, dive, doc, system, decoMode, lastbottomdp)
	buildO2Warnings(conf, plan, dive, doc, system)
	return doc
}

// buildItinerary walks the waypoints and produces either verbatim lines or
// table rows. It returns the last user-entered waypoint before the ascent,
// which anchors the minimum-gas calculation.
func buildItinerary(conf *structures.Config, plan *models.Diveplan, dive *models.Dive, doc *Document, system units.System) *models.Datapoint {
	verbatim := conf.Planner.VerbatimPlan
	displayTransitions := conf.Planner.DisplayTransitions

	var (
		lastdepth         units.Depth
		lasttime          units.Duration
		lastsetpoint      = units.Pressure(-1)
		newdepth          units.Depth
		lastprintdepth    units.Depth
		lastprintsetpoint = units.Pressure(-1)
		lastprintgasmix   = gas.Mix{O2: -1, He: -1}
		lastentered       = true
		lastbottomdp      *models.Datapoint
		nextdp            *models.Datapoint
	)

	for dp := plan.DP; dp != nil; dp = nextdp {
		isascent := dp.Depth < lastdepth
		nextdp = dp.Next
		if dp.Time == 0 {
			continue
		}
		gasmix := dive.CylinderMix(dp.CylinderID)
		depthvalue, decimals, depthUnit := system.DepthUnits(dp.Depth)

		for nextdp != nil && nextdp.Time == 0 {
			nextdp = nextdp.Next
		}
		var newgasmix gas.Mix
		if nextdp != nil {
			newgasmix = dive.CylinderMix(nextdp.CylinderID)
		}
		gaschangeAfter := nextdp != nil &&
			(gas.Distance(gasmix, newgasmix) != 0 || dp.Setpoint != nextdp.Setpoint)
		gaschangeBefore := gas.Distance(lastprintgasmix, gasmix) != 0 ||
			lastprintsetpoint != dp.Setpoint

		// Skip legs devoid of anything useful.
		if !dp.Entered && nextdp != nil &&
			dp.Depth != lastdepth && nextdp.Depth != dp.Depth &&
			!gaschangeBefore && !gaschangeAfter {
			continue
		}
		if dp.Time-lasttime < 10 && lastdepth == dp.Depth &&
			!(gaschangeAfter && dp.Next != nil && dp.Depth != dp.Next.Depth) {
			continue
		}

		if dp.Entered && nextdp != nil && !nextdp.Entered {
			lastbottomdp = dp
		}

		if verbatim {
			if dp.Depth != lastprintdepth {
				if displayTransitions || dp.Entered || dp.Next == nil ||
					(gaschangeAfter && dp.Next != nil && dp.Depth != nextdp.Depth) {
					line := fmt.Sprintf("Transition to %.*f %s in %s min - runtime %s on %s",
						decimals, depthvalue, depthUnit,
						units.FormatMinSec(dp.Time-lasttime),
						units.FormatMinSec(dp.Time),
						gasmix.Name())
					if dp.Setpoint != 0 {
						line += fmt.Sprintf(" (SP = %.1fbar)", dp.Setpoint.Bar())
					}
					doc.VerbatimLines = append(doc.VerbatimLines, line)
				}
				newdepth = dp.Depth
				lasttime = dp.Time
			} else if (nextdp != nil && dp.Depth != nextdp.Depth) || gaschangeAfter {
				line := fmt.Sprintf("Stay at %.*f %s for %s min - runtime %s on %s",
					decimals, depthvalue, depthUnit,
					units.FormatMinSec(dp.Time-lasttime),
					units.FormatMinSec(dp.Time),
					gasmix.Name())
				if dp.Setpoint != 0 {
					line += fmt.Sprintf(" (SP = %.1fbar)", dp.Setpoint.Bar())
				}
				doc.VerbatimLines = append(doc.VerbatimLines, line)
				newdepth = dp.Depth
				lasttime = dp.Time
			}
		} else {
			// Ascents between deco stops are usually not shown. A row is
			// emitted for transitions when configured, entered and final
			// segments, depth changes, and the combinations of gas change
			// and ascent that would otherwise hide a switch.
			if displayTransitions || dp.Entered || dp.Next == nil ||
				(nextdp != nil && dp.Depth != nextdp.Depth) ||
				(!isascent && gaschangeBefore && nextdp != nil && dp.Depth != nextdp.Depth) ||
				(gaschangeAfter && lastentered) || (gaschangeAfter && !isascent) ||
				(isascent && gaschangeAfter && nextdp != nil && dp.Depth != nextdp.Depth) ||
				(lastentered && !dp.Entered) {

				row := ItineraryRow{
					Depth: fmt.Sprintf("%.*f%s", decimals, depthvalue, depthUnit),
				}
				switch {
				case isascent:
					row.Kind = SegmentAscent
				case dp.Depth > lastdepth:
					row.Kind = SegmentDescent
				case dp.Entered:
					row.Kind = SegmentConstant
				default:
					row.Kind = SegmentDecoStop
				}
				if doc.ShowDuration {
					row.Duration = fmt.Sprintf("%dmin", units.RoundedMinutes(dp.Time-lasttime))
				}
				if doc.ShowRuntime {
					row.Runtime = fmt.Sprintf("%dmin", units.RoundedMinutes(dp.Time))
				}

				// A gas change is normally shown on the stopping segment; on
				// an ascent it is shown here only when no stop follows.
				if (isascent || dp.Entered) && gaschangeAfter && dp.Next != nil && nextdp != nil &&
					(dp.Depth != nextdp.Depth || nextdp.Entered) {
					if dp.Setpoint != 0 {
						row.Gas = fmt.Sprintf("%s (SP = %.1fbar)", newgasmix.Name(), nextdp.Setpoint.Bar())
					} else {
						row.Gas = newgasmix.Name()
						if isascent && lastprintgasmix.He > 0 {
							addICDEntry(doc, dive, lastprintgasmix, newgasmix, dp.Time, dp.Depth)
						}
					}
					lastprintsetpoint = nextdp.Setpoint
					lastprintgasmix = newgasmix
					gaschangeAfter = false
				} else if gaschangeBefore {
					if dp.Setpoint != 0 {
						row.Gas = fmt.Sprintf("%s (SP = %.1fbar)", gasmix.Name(), dp.Setpoint.Bar())
					} else {
						row.Gas = gasmix.Name()
						if lastprintgasmix.He > 0 {
							addICDEntry(doc, dive, lastprintgasmix, gasmix, lasttime, dp.Depth)
						}
					}
					lastprintsetpoint = dp.Setpoint
					lastprintgasmix = gasmix
					gaschangeAfter = false
				}
				doc.Rows = append(doc.Rows, row)
				newdepth = dp.Depth
				lasttime = dp.Time
			}
		}

		if gaschangeAfter && verbatim {
			if lastsetpoint >= 0 {
				var line string
				if nextdp != nil && nextdp.Setpoint != 0 {
					line = fmt.Sprintf("Switch gas to %s (SP = %.1fbar)", newgasmix.Name(), nextdp.Setpoint.Bar())
				} else {
					line = fmt.Sprintf("Switch gas to %s", newgasmix.Name())
					if isascent && lastprintgasmix.He > 0 {
						addICDEntry(doc, dive, lastprintgasmix, newgasmix, dp.Time, dp.Depth)
					}
				}
				doc.VerbatimLines = append(doc.VerbatimLines, line)
			}
			lastprintgasmix = newgasmix
		}

		lastprintdepth = newdepth
		lastdepth = dp.Depth
		lastsetpoint = dp.Setpoint
		lastentered = dp.Entered
	}
	return lastbottomdp
}

func addICDEntry(doc *Document, dive *models.Dive, from, to gas.Mix, at units.Duration, depth units.Depth) {
	icd, exceeded := gas.IsobaricCounterdiffusion(from, to)
	if exceeded {
		doc.ICDWarning = true
	}
	amb := float64(dive.DepthToMbar(depth))
	doc.ICDRows = append(doc.ICDRows, ICDRow{
		RuntimeMin: units.RoundedMinutes(at),
		GasFrom:    from.Name(),
		GasTo:      to.Name(),
		DHePct:     float64(icd.DHe) / 10.0,
		DN2Pct:     float64(icd.DN2) / 10.0,
		MaxDN2Pct:  0.2 * float64(-icd.DHe) / 10.0,
		DHeBar:     amb * float64(icd.DHe) / 1e6,
		DN2Bar:     amb * float64(icd.DN2) / 1e6,
		MaxDN2Bar:  amb * float64(-icd.DHe) / 5e6,
		Exceeded:   icd.Exceeded(),
	})
}

func buildGasConsumption(conf *structures.Config, dive *models.Dive, doc *Document, system units.System, decoMode models.DecoMode, lastbottomdp *models.Datapoint) {
	if dive.DC.DiveMode == models.CCR {
		doc.GasHeader = "Gas consumption (CCR legs excluded):"
	} else {
		bottomsac, sacDecimals, sacUnit := system.VolumeUnits(units.Volume(conf.Planner.BottomSAC))
		decosac, _, _ := system.VolumeUnits(units.Volume(conf.Planner.DecoSAC))
		if sacDecimals == 1 {
			sacDecimals = 0
		}
		doc.GasHeader = fmt.Sprintf("Gas consumption (based on SAC %.*f|%.*f%s/min):",
			sacDecimals, bottomsac, sacDecimals, decosac, sacUnit)
	}

	for i := range dive.Cylinders {
		cyl := &dive.Cylinders[i]
		if cyl.IsNone() {
			break
		}

		volume, _, volUnit := system.VolumeUnits(cyl.GasUsed)
		decoVolume, _, _ := system.VolumeUnits(cyl.DecoGasUsed)
		use := GasUse{
			Mix:        cyl.GasMix.Name(),
			Volume:     fmt.Sprintf("%.0f%s", volume, volUnit),
			DecoVolume: fmt.Sprintf("%.0f%s", decoVolume, volUnit),
			ShowDeco:   math.Round(volume) > 0,
		}

		if cyl.Size != 0 {
			endBar := cyl.End.Bar()
			remaining := units.Volume(math.Round(
				float64(cyl.End) * float64(cyl.Size) / 1000.0 / gas.CompressibilityFactor(cyl.GasMix, endBar)))
			decoPressureMbar := gas.IsothermalPressure(cyl.GasMix, 1.0,
				remaining+cyl.DecoGasUsed, cyl.Size)*1000 - float64(cyl.End)

			decoPressure, pressureUnit := system.PressureUnits(units.Pressure(math.Round(decoPressureMbar)))
			pressure, _ := system.PressureUnits(cyl.Start - cyl.End)
			use.HasPressure = true
			use.Pressure = fmt.Sprintf("%.0f%s", pressure, pressureUnit)
			use.DecoPressure = fmt.Sprintf("%.0f%s", decoPressure, pressureUnit)

			// Breathing a cylinder below 10 bar is treated as overdrawn.
			switch {
			case cyl.End < 10000:
				use.Warning = "this is more gas than available in the specified cylinder!"
			case endBar*float64(cyl.Size)/gas.CompressibilityFactor(cyl.GasMix, endBar) < float64(cyl.DecoGasUsed):
				use.Warning = "not enough reserve for gas sharing on ascent!"
			case lastbottomdp != nil && i == lastbottomdp.CylinderID &&
				dive.DC.DiveMode == models.OC && decoMode != models.Recreational:
				sacFactor := float64(conf.Planner.SACFactor) / 100.0
				mingasMl := units.Volume(math.Round(
					sacFactor*float64(conf.Planner.ProblemSolvingTime)*float64(conf.Planner.BottomSAC)*
						dive.DepthToBar(lastbottomdp.Depth) +
						sacFactor*float64(cyl.DecoGasUsed)))
				lastbottomdp.MinimumGas = units.Pressure(math.Round(
					gas.IsothermalPressure(cyl.GasMix, 1.0, mingasMl, cyl.Size) * 1000))

				if cyl.Start > lastbottomdp.MinimumGas {
					mgVolume, _, mgVolUnit := system.VolumeUnits(mingasMl)
					mgPressure, mgPressureUnit := system.PressureUnits(lastbottomdp.MinimumGas)
					delta, _ := system.PressureUnits(units.Pressure(math.Round(
						float64(cyl.End) + decoPressureMbar - float64(lastbottomdp.MinimumGas))))
					mgDepth, _, mgDepthUnit := system.DepthUnits(lastbottomdp.Depth)
					use.MinGas = &MinGas{
						SACFactor:          sacFactor,
						ProblemSolvingTime: conf.Planner.ProblemSolvingTime,
						Depth:              fmt.Sprintf("%.0f%s", mgDepth, mgDepthUnit),
						Volume:             fmt.Sprintf("%.0f%s", mgVolume, mgVolUnit),
						Pressure:           fmt.Sprintf("%.0f%s", mgPressure, mgPressureUnit),
						Delta:              delta,
						DeltaUnit:          mgPressureUnit,
						DeltaPositive:      delta > 0,
					}
				} else {
					use.Warning = "required minimum gas for ascent already exceeding start pressure of cylinder!"
				}
			}
		}
		doc.GasUses = append(doc.GasUses, use)
	}
}

func buildO2Warnings(conf *structures.Config, plan *models.Diveplan, dive *models.Dive, doc *Document, system units.System) {
	if dive.DC.DiveMode == models.CCR {
		return
	}
	for dp := plan.DP; dp != nil; dp = dp.Next {
		if dp.Time == 0 {
			continue
		}
		mix := dive.CylinderMix(dp.CylinderID)
		pressures := gas.FillPressures(dive.DepthToAtm(dp.Depth), mix)

		threshold := float64(conf.Planner.DecoPO2) / 1000.0
		if dp.Entered {
			threshold = float64(conf.Planner.BottomPO2) / 1000.0
		}
		depthvalue, decimals, depthUnit := system.DepthUnits(dp.Depth)
		if pressures.O2 > threshold {
			doc.O2Warnings = append(doc.O2Warnings, fmt.Sprintf(
				"high pO₂ value %.2f at %s with gas %s at depth %.*f %s",
				pressures.O2, units.FormatMinSec(dp.Time), mix.Name(),
				decimals, depthvalue, depthUnit))
		} else if pressures.O2 < 0.16 {
			doc.O2Warnings = append(doc.O2Warnings, fmt.Sprintf(
				"low pO₂ value %.2f at %s with gas %s at depth %.*f %s",
				pressures.O2, units.FormatMinSec(dp.Time), mix.Name(),
				decimals, depthvalue, depthUnit))
		}
	}
}
