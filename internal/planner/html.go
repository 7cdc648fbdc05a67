package planner

import (
	"fmt"
	"strings"
)

var segmentSymbols = map[SegmentKind]string{
	SegmentAscent:   "&#10138;",
	SegmentDescent:  "&#10136;",
	SegmentConstant: "&#10137;",
	SegmentDecoStop: "-",
}

const warningSpan = "<span style='color: red;'>Warning:</span> "

// HTML serialises the document into the notes fragment of the planned dive.
func (d *Document) HTML() string {
	if d.Empty {
		return ""
	}
	if d.Aborted {
		return warningSpan + "Decompression calculation aborted due to excessive time<br>"
	}

	var b strings.Builder
	if d.ShowDisclaimer {
		fmt.Fprintf(&b, "<div><b>%s</b><br></div>", d.Disclaimer)
	}

	switch {
	case d.Overlapping:
		fmt.Fprintf(&b, "<div><b>%s (%s) dive plan</b> (overlapping dives detected)<br>",
			d.AppName, d.Version)
		return b.String()
	case d.SurfaceInterval != "":
		fmt.Fprintf(&b, "<div><b>%s (%s) dive plan</b> (surface interval %s) created on %s<br>",
			d.AppName, d.Version, d.SurfaceInterval, d.CreatedOn)
	default:
		fmt.Fprintf(&b, "<div><b>%s (%s) dive plan</b> created on %s<br>",
			d.AppName, d.Version, d.CreatedOn)
	}

	if d.ShowVariations {
		fmt.Fprintf(&b, "Runtime: %dmin VARIATIONS<br></div>", d.RuntimeMin)
	} else {
		fmt.Fprintf(&b, "Runtime: %dmin<br></div>", d.RuntimeMin)
	}

	if d.Verbatim {
		for _, line := range d.VerbatimLines {
			b.WriteString(line)
			b.WriteString("<br>")
		}
	} else {
		b.WriteString("<table><thead><tr><th></th><th>depth</th>")
		if d.ShowDuration {
			b.WriteString("<th style='padding-left: 10px;'>duration</th>")
		}
		if d.ShowRuntime {
			b.WriteString("<th style='padding-left: 10px;'>runtime</th>")
		}
		b.WriteString("<th style='padding-left: 10px;'>gas</th></tr></thead><tbody>")
		for _, row := range d.Rows {
			fmt.Fprintf(&b, "<tr><td style='padding-left: 10px;'>%s</td>", segmentSymbols[row.Kind])
			fmt.Fprintf(&b, "<td style='padding-left: 10px;'>%s</td>", row.Depth)
			if d.ShowDuration {
				fmt.Fprintf(&b, "<td style='padding-left: 10px;'>%s</td>", row.Duration)
			}
			if d.ShowRuntime {
				fmt.Fprintf(&b, "<td style='padding-left: 10px;'>%s</td>", row.Runtime)
			}
			if row.Gas != "" {
				fmt.Fprintf(&b, "<td style='padding-left: 10px; color: red;'><b>%s</b></td>", row.Gas)
			} else {
				b.WriteString("<td>&nbsp;</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table><br>")
	}

	fmt.Fprintf(&b, "<div>CNS: %d%%<br>OTU: %d<br></div>", d.CNS, d.OTU)
	fmt.Fprintf(&b, "<div>%s<br>", d.DecoModel)
	fmt.Fprintf(&b, "ATM pressure: %dmbar (%d%s)<br></div>",
		d.ATMPressure, d.Altitude, d.AltitudeUnit)

	fmt.Fprintf(&b, "<div>%s<br>", d.GasHeader)
	for _, use := range d.GasUses {
		switch {
		case use.HasPressure && use.ShowDeco:
			fmt.Fprintf(&b, "%s/%s of <span style='color: red;'><b>%s</b></span> (%s/%s in planned ascent)",
				use.Volume, use.Pressure, use.Mix, use.DecoVolume, use.DecoPressure)
		case use.HasPressure:
			fmt.Fprintf(&b, "%s/%s of <span style='color: red;'><b>%s</b></span>",
				use.Volume, use.Pressure, use.Mix)
		case use.ShowDeco:
			fmt.Fprintf(&b, "%s of <span style='color: red;'><b>%s</b></span> (%s during planned ascent)",
				use.Volume, use.Mix, use.DecoVolume)
		default:
			fmt.Fprintf(&b, "%s of <span style='color: red;'><b>%s</b></span>", use.Volume, use.Mix)
		}
		if use.Warning != "" {
			fmt.Fprintf(&b, "<br>&nbsp;&mdash; %s%s", warningSpan, use.Warning)
		}
		if use.MinGas != nil {
			mg := use.MinGas
			color, deltaColor := "red", "indianred"
			if mg.DeltaPositive {
				color, deltaColor = "green", "grey"
			}
			fmt.Fprintf(&b, "<br>&nbsp;&mdash; <span style='color: %s;'>Minimum gas</span>"+
				" (based on %.1fxSAC/+%dmin@%s): %s/%s<span style='color: %s;'>/&Delta;:%+.0f%s</span>",
				color, mg.SACFactor, mg.ProblemSolvingTime, mg.Depth,
				mg.Volume, mg.Pressure, deltaColor, mg.Delta, mg.DeltaUnit)
		}
		b.WriteString("<br></div>")
	}

	if d.HasICDTable {
		b.WriteString("<div>Isobaric counterdiffusion information:")
		b.WriteString("<table><tr><td align='left'><b>runtime</b></td>" +
			"<td align='center'><b>gaschange</b></td>" +
			"<td style='padding-left: 15px;'><b>&#916;He</b></td>" +
			"<td style='padding-left: 20px;'><b>&#916;N&#8322;</b></td>" +
			"<td style='padding-left: 10px;'><b>max &#916;N&#8322;</b></td></tr>")
		for _, row := range d.ICDRows {
			color := "#383838"
			if row.Exceeded {
				color = "red"
			}
			fmt.Fprintf(&b, "<tr><td rowspan='2' style='vertical-align:top;'>%3dmin</td>"+
				"<td rowspan=2 style='vertical-align:top;'>%s&#10137;%s</td>"+
				"<td style='padding-left: 10px;'>%+5.2f%%</td>"+
				"<td style='padding-left: 15px; color:%s;'>%+5.2f%%</td>"+
				"<td style='padding-left: 15px;'>%+5.2f%%</td></tr>",
				row.RuntimeMin, row.GasFrom, row.GasTo,
				row.DHePct, color, row.DN2Pct, row.MaxDN2Pct)
			fmt.Fprintf(&b, "<tr><td style='padding-left: 10px;'>%+5.2fbar</td>"+
				"<td style='padding-left: 15px; color:%s;'>%+5.2fbar</td>"+
				"<td style='padding-left: 15px;'>%+5.2fbar</td></tr>",
				row.DHeBar, color, row.DN2Bar, row.MaxDN2Bar)
		}
		b.WriteString("</table>")
		if d.ICDWarning {
			b.WriteString(warningSpan + "Isobaric counterdiffusion conditions exceeded")
		}
		b.WriteString("<br></div>")
	}

	if len(d.O2Warnings) > 0 {
		b.WriteString("<div>")
		for _, w := range d.O2Warnings {
			fmt.Fprintf(&b, "%s%s<br>", warningSpan, w)
		}
	}
	b.WriteString("</div>")
	return b.String()
}
