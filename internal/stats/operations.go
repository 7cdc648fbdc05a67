package stats

import (
	"sort"

	"divelog/internal/models"
)

// Values collects the valid values of a variable over the given dives,
// sorted ascending. Dives without data for the variable are skipped.
func Values(t Type, dives []*models.Dive) []float64 {
	res := make([]float64, 0, len(dives))
	for _, d := range dives {
		if v, ok := t.ToFloat(d); ok {
			res = append(res, v)
		}
	}
	sort.Float64s(res)
	return res
}

func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// TimeWeightedMean weights each dive's value by its duration. Dives without
// a duration do not contribute.
func TimeWeightedMean(t Type, dives []*models.Dive) (float64, bool) {
	sum, weight := 0.0, 0.0
	for _, d := range dives {
		if d.Duration <= 0 {
			continue
		}
		if v, ok := t.ToFloat(d); ok {
			w := float64(d.Duration)
			sum += v * w
			weight += w
		}
	}
	if weight == 0 {
		return 0, false
	}
	return sum / weight, true
}

// Quartiles of a sorted value list. The quartile positions interpolate
// between neighbouring values depending on the list length modulo four.
type Quartiles struct {
	Min float64
	Q1  float64
	Q2  float64
	Q3  float64
	Max float64
}

func ComputeQuartiles(sorted []float64) (Quartiles, bool) {
	s := len(sorted)
	if s == 0 {
		return Quartiles{}, false
	}
	q := Quartiles{Min: sorted[0], Max: sorted[s-1]}
	switch s % 4 {
	case 0:
		q.Q1 = (sorted[s/4-1] + 3.0*sorted[s/4]) / 4.0
		q.Q2 = (sorted[s/2-1] + sorted[s/2]) / 2.0
		q.Q3 = (3.0*sorted[s*3/4-1] + sorted[s*3/4]) / 4.0
	case 1:
		q.Q1 = sorted[s/4]
		q.Q2 = sorted[s/2]
		q.Q3 = sorted[s*3/4]
	case 2:
		q.Q1 = (3.0*sorted[s/4] + sorted[s/4+1]) / 4.0
		q.Q2 = (sorted[s/2-1] + sorted[s/2]) / 2.0
		q.Q3 = (sorted[s-s/4-2] + 3.0*sorted[s-s/4-1]) / 4.0
	case 3:
		q.Q1 = (sorted[s/4] + sorted[s/4+1]) / 2.0
		q.Q2 = sorted[s/2]
		q.Q3 = (sorted[s-s/4-2] + sorted[s-s/4-1]) / 2.0
	}
	return q, true
}

// ApplyOperation reduces the variable over the given dives. An operation
// the type does not support is logged and answered with the median, the
// one reduction every numeric type carries.
func (t *Types) ApplyOperation(ty Type, op Operation, dives []*models.Dive) (float64, bool) {
	if !ty.Supports(op) {
		t.warnf("stats: type %s does not support operation %s, falling back to median", ty.Name(), op)
		op = OpMedian
	}
	values := Values(ty, dives)
	if len(values) == 0 {
		return 0, false
	}
	switch op {
	case OpMean:
		return Mean(values)
	case OpTimeWeightedMean:
		return TimeWeightedMean(ty, dives)
	case OpSum:
		return Sum(values), true
	case OpMin:
		return values[0], true
	case OpMax:
		return values[len(values)-1], true
	default:
		q, ok := ComputeQuartiles(values)
		return q.Q2, ok
	}
}

// ScatterPoint is one dive plotted against two numeric variables.
type ScatterPoint struct {
	X    float64
	Y    float64
	Dive *models.Dive
}

// Scatter pairs two variables over the dives. Dives lacking either value
// are skipped; points are sorted by x, then y.
func Scatter(xt, yt Type, dives []*models.Dive) []ScatterPoint {
	res := make([]ScatterPoint, 0, len(dives))
	for _, d := range dives {
		x, okx := xt.ToFloat(d)
		y, oky := yt.ToFloat(d)
		if okx && oky {
			res = append(res, ScatterPoint{X: x, Y: y, Dive: d})
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].X != res[j].X {
			return res[i].X < res[j].X
		}
		return res[i].Y < res[j].Y
	})
	return res
}
