package stats

import (
	"fmt"
	"time"

	"divelog/internal/models"
)

// Binner turns dives into bins along one axis. Continuous binners can fill
// the gaps between occupied bins with empty ones so histograms have no
// holes.
type Binner interface {
	Name() string
	IsContinuous() bool
	BinDives(dives []*models.Dive, fillEmpty bool) []BinDives
	CountDives(dives []*models.Dive, fillEmpty bool) []BinCount
	Format(bin Bin) string
}

// RangeBinner is the extra surface of continuous binners: every bin covers
// a numeric interval whose bounds a histogram axis can query.
type RangeBinner interface {
	Binner
	LowerBoundToFloat(bin Bin) float64
	UpperBoundToFloat(bin Bin) float64
	FormatLowerBound(bin Bin) string
	FormatUpperBound(bin Bin) string
}

// intBinner bins dives by an integer derived from the dive, one bin per
// distinct value. Range binners divide before handing the value over, so
// the derivation function decides the granularity.
type intBinner struct {
	name       string
	toValue    func(d *models.Dive) (int, bool)
	format     func(v int) string
	continuous bool

	// bound maps a bin value to the lower edge of that bin in the display
	// unit; bin v ends where bin v+1 starts. Identity when unset.
	bound       func(v int) float64
	boundFormat func(x float64) string
}

func (b *intBinner) Name() string       { return b.name }
func (b *intBinner) IsContinuous() bool { return b.continuous }

func (b *intBinner) boundOf(v int) float64 {
	if b.bound != nil {
		return b.bound(v)
	}
	return float64(v)
}

func (b *intBinner) formatBound(x float64) string {
	if b.boundFormat != nil {
		return b.boundFormat(x)
	}
	return fmt.Sprintf("%g", x)
}

func (b *intBinner) LowerBoundToFloat(bin Bin) float64 {
	v, ok := bin.(intBin)
	if !ok {
		return 0
	}
	return b.boundOf(int(v))
}

func (b *intBinner) UpperBoundToFloat(bin Bin) float64 {
	v, ok := bin.(intBin)
	if !ok {
		return 0
	}
	return b.boundOf(int(v) + 1)
}

func (b *intBinner) FormatLowerBound(bin Bin) string {
	v, ok := bin.(intBin)
	if !ok {
		return ""
	}
	return b.formatBound(b.boundOf(int(v)))
}

func (b *intBinner) FormatUpperBound(bin Bin) string {
	v, ok := bin.(intBin)
	if !ok {
		return ""
	}
	return b.formatBound(b.boundOf(int(v) + 1))
}

func (b *intBinner) Format(bin Bin) string {
	v, ok := bin.(intBin)
	if !ok {
		return ""
	}
	return b.format(int(v))
}

func intLess(a, b int) bool { return a < b }

func (b *intBinner) BinDives(dives []*models.Dive, fillEmpty bool) []BinDives {
	var bins []valueBin[int]
	for _, d := range dives {
		if v, ok := b.toValue(d); ok {
			bins = addDiveToValueBin(bins, v, d, intLess)
		}
	}
	res := make([]BinDives, 0, len(bins))
	for i, vb := range bins {
		if fillEmpty && b.continuous && i > 0 {
			for v := bins[i-1].value + 1; v < vb.value; v++ {
				res = append(res, BinDives{Bin: intBin(v)})
			}
		}
		res = append(res, BinDives{Bin: intBin(vb.value), Dives: vb.dives})
	}
	return res
}

func (b *intBinner) CountDives(dives []*models.Dive, fillEmpty bool) []BinCount {
	var bins []valueBin[int]
	for _, d := range dives {
		if v, ok := b.toValue(d); ok {
			bins = incrementCountBin(bins, v, intLess)
		}
	}
	res := make([]BinCount, 0, len(bins))
	for i, vb := range bins {
		if fillEmpty && b.continuous && i > 0 {
			for v := bins[i-1].value + 1; v < vb.value; v++ {
				res = append(res, BinCount{Bin: intBin(v)})
			}
		}
		res = append(res, BinCount{Bin: intBin(vb.value), Count: vb.count})
	}
	return res
}

// pairBinner bins dives by a (year, part) pair, used for quarters and
// months. The next function advances by one part, wrapping into the
// following year.
type pairBinner struct {
	name      string
	toValue   func(d *models.Dive) (pairValue, bool)
	next      func(p pairValue) pairValue
	format    func(p pairValue) string
	parts     int // parts per year
	firstPart int
}

func (b *pairBinner) Name() string       { return b.name }
func (b *pairBinner) IsContinuous() bool { return true }

func (b *pairBinner) boundOf(p pairValue) float64 {
	return float64(p.Year) + float64(p.Part-b.firstPart)/float64(b.parts)
}

func (b *pairBinner) LowerBoundToFloat(bin Bin) float64 {
	v, ok := bin.(pairBin)
	if !ok {
		return 0
	}
	return b.boundOf(pairValue(v))
}

func (b *pairBinner) UpperBoundToFloat(bin Bin) float64 {
	v, ok := bin.(pairBin)
	if !ok {
		return 0
	}
	return b.boundOf(b.next(pairValue(v)))
}

func (b *pairBinner) FormatLowerBound(bin Bin) string {
	v, ok := bin.(pairBin)
	if !ok {
		return ""
	}
	return b.format(pairValue(v))
}

func (b *pairBinner) FormatUpperBound(bin Bin) string {
	v, ok := bin.(pairBin)
	if !ok {
		return ""
	}
	return b.format(b.next(pairValue(v)))
}

func (b *pairBinner) Format(bin Bin) string {
	v, ok := bin.(pairBin)
	if !ok {
		return ""
	}
	return b.format(pairValue(v))
}

func pairLess(a, b pairValue) bool { return a.less(b) }

func (b *pairBinner) BinDives(dives []*models.Dive, fillEmpty bool) []BinDives {
	var bins []valueBin[pairValue]
	for _, d := range dives {
		if v, ok := b.toValue(d); ok {
			bins = addDiveToValueBin(bins, v, d, pairLess)
		}
	}
	res := make([]BinDives, 0, len(bins))
	for i, vb := range bins {
		if fillEmpty && i > 0 {
			for v := b.next(bins[i-1].value); v.less(vb.value); v = b.next(v) {
				res = append(res, BinDives{Bin: pairBin(v)})
			}
		}
		res = append(res, BinDives{Bin: pairBin(vb.value), Dives: vb.dives})
	}
	return res
}

func (b *pairBinner) CountDives(dives []*models.Dive, fillEmpty bool) []BinCount {
	var bins []valueBin[pairValue]
	for _, d := range dives {
		if v, ok := b.toValue(d); ok {
			bins = incrementCountBin(bins, v, pairLess)
		}
	}
	res := make([]BinCount, 0, len(bins))
	for i, vb := range bins {
		if fillEmpty && i > 0 {
			for v := b.next(bins[i-1].value); v.less(vb.value); v = b.next(v) {
				res = append(res, BinCount{Bin: pairBin(v)})
			}
		}
		res = append(res, BinCount{Bin: pairBin(vb.value), Count: vb.count})
	}
	return res
}

// stringBinner bins dives by one or more strings derived from the dive.
// A dive with multiple values (buddies) lands in multiple bins.
type stringBinner struct {
	name     string
	toValues func(d *models.Dive) []string
}

func (b *stringBinner) Name() string       { return b.name }
func (b *stringBinner) IsContinuous() bool { return false }

func (b *stringBinner) Format(bin Bin) string {
	v, ok := bin.(stringBin)
	if !ok {
		return ""
	}
	return string(v)
}

func stringLess(a, b string) bool { return a < b }

func (b *stringBinner) BinDives(dives []*models.Dive, _ bool) []BinDives {
	var bins []valueBin[string]
	for _, d := range dives {
		for _, v := range b.toValues(d) {
			bins = addDiveToValueBin(bins, v, d, stringLess)
		}
	}
	res := make([]BinDives, 0, len(bins))
	for _, vb := range bins {
		res = append(res, BinDives{Bin: stringBin(vb.value), Dives: vb.dives})
	}
	return res
}

func (b *stringBinner) CountDives(dives []*models.Dive, _ bool) []BinCount {
	var bins []valueBin[string]
	for _, d := range dives {
		for _, v := range b.toValues(d) {
			bins = incrementCountBin(bins, v, stringLess)
		}
	}
	res := make([]BinCount, 0, len(bins))
	for _, vb := range bins {
		res = append(res, BinCount{Bin: stringBin(vb.value), Count: vb.count})
	}
	return res
}

// siteBinner bins dives by their resolved dive site. Sites compare by id so
// the output order is stable across runs.
type siteBinner struct {
	name string
}

func (b *siteBinner) Name() string       { return b.name }
func (b *siteBinner) IsContinuous() bool { return false }

func (b *siteBinner) Format(bin Bin) string {
	v, ok := bin.(siteBin)
	if !ok || v.site == nil {
		return ""
	}
	return v.site.Name
}

func siteLess(a, b *models.DiveSite) bool {
	return a.ID.String() < b.ID.String()
}

func (b *siteBinner) BinDives(dives []*models.Dive, _ bool) []BinDives {
	var bins []valueBin[*models.DiveSite]
	for _, d := range dives {
		if d.Site != nil {
			bins = addDiveToValueBin(bins, d.Site, d, siteLess)
		}
	}
	res := make([]BinDives, 0, len(bins))
	for _, vb := range bins {
		res = append(res, BinDives{Bin: siteBin{site: vb.value}, Dives: vb.dives})
	}
	return res
}

func (b *siteBinner) CountDives(dives []*models.Dive, _ bool) []BinCount {
	var bins []valueBin[*models.DiveSite]
	for _, d := range dives {
		if d.Site != nil {
			bins = incrementCountBin(bins, d.Site, siteLess)
		}
	}
	res := make([]BinCount, 0, len(bins))
	for _, vb := range bins {
		res = append(res, BinCount{Bin: siteBin{site: vb.value}, Count: vb.count})
	}
	return res
}

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

func diveDate(d *models.Dive) (time.Time, bool) {
	if d.When <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(d.When), 0).UTC(), true
}

func yearBinner() Binner {
	return &intBinner{
		name: "year",
		toValue: func(d *models.Dive) (int, bool) {
			t, ok := diveDate(d)
			return t.Year(), ok
		},
		format:     func(v int) string { return fmt.Sprintf("%d", v) },
		continuous: true,
	}
}

// quarterBinner bins by (year, quarter), quarter counted from 1. Advancing
// past Q4 carries into Q1 of the next year.
func quarterBinner() Binner {
	return &pairBinner{
		name: "quarter",
		toValue: func(d *models.Dive) (pairValue, bool) {
			t, ok := diveDate(d)
			if !ok {
				return pairValue{}, false
			}
			return pairValue{Year: t.Year(), Part: (int(t.Month())-1)/3 + 1}, true
		},
		next: func(p pairValue) pairValue {
			p.Part++
			if p.Part > 4 {
				p.Year++
				p.Part = 1
			}
			return p
		},
		format: func(p pairValue) string {
			return fmt.Sprintf("Q%d %d", p.Part, p.Year)
		},
		parts:     4,
		firstPart: 1,
	}
}

// monthBinner bins by (year, month), month counted from 0. Advancing past
// December carries into January of the next year.
func monthBinner() Binner {
	return &pairBinner{
		name: "month",
		toValue: func(d *models.Dive) (pairValue, bool) {
			t, ok := diveDate(d)
			if !ok {
				return pairValue{}, false
			}
			return pairValue{Year: t.Year(), Part: int(t.Month()) - 1}, true
		},
		next: func(p pairValue) pairValue {
			p.Part++
			if p.Part > 11 {
				p.Year++
				p.Part = 0
			}
			return p
		},
		format: func(p pairValue) string {
			return fmt.Sprintf("%s %d", monthNames[p.Part], p.Year)
		},
		parts: 12,
	}
}

// rangeBinner bins a value function into buckets of the given width, with a
// "lower-upper unit" label per bucket.
func rangeBinner(name, unit string, width int, toValue func(d *models.Dive) (int, bool)) Binner {
	return &intBinner{
		name: name,
		toValue: func(d *models.Dive) (int, bool) {
			v, ok := toValue(d)
			if !ok {
				return 0, false
			}
			if v < 0 {
				v = 0
			}
			return v / width, true
		},
		format: func(v int) string {
			return fmt.Sprintf("%d-%d %s", v*width, (v+1)*width, unit)
		},
		continuous: true,
		bound:      func(v int) float64 { return float64(v * width) },
		boundFormat: func(x float64) string {
			return fmt.Sprintf("%.0f %s", x, unit)
		},
	}
}

var (
	_ RangeBinner = (*intBinner)(nil)
	_ RangeBinner = (*pairBinner)(nil)
)
