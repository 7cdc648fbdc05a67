package stats

import (
	"fmt"
	"strings"

	"divelog/internal/models"
	"divelog/internal/providers"
	"divelog/internal/structures"
	"divelog/internal/units"
)

// Operation is a numeric reduction applied to the dives of a bin.
type Operation int

const (
	OpMedian Operation = iota
	OpMean
	OpTimeWeightedMean
	OpSum
	OpMin
	OpMax
)

var operationNames = map[Operation]string{
	OpMedian:           "median",
	OpMean:             "mean",
	OpTimeWeightedMean: "timeWeightedMean",
	OpSum:              "sum",
	OpMin:              "min",
	OpMax:              "max",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "unknown"
}

func ParseOperation(s string) (Operation, bool) {
	for op, name := range operationNames {
		if strings.EqualFold(name, s) {
			return op, true
		}
	}
	return OpMedian, false
}

// Type is a variable of a dive that can be binned and, when numeric,
// reduced. Categorical types have no operations and no unit.
type Type interface {
	Name() string
	UnitSymbol() string
	Decimals() int
	Binners() []Binner
	BinnerByName(name string) (Binner, bool)
	SupportedOperations() []Operation
	Supports(op Operation) bool
	ToFloat(d *models.Dive) (float64, bool)
}

type statsType struct {
	name     string
	unit     string
	decimals int
	binners  []Binner
	ops      []Operation
	toFloat  func(d *models.Dive) (float64, bool)
}

func (t *statsType) Name() string       { return t.name }
func (t *statsType) UnitSymbol() string { return t.unit }
func (t *statsType) Decimals() int      { return t.decimals }
func (t *statsType) Binners() []Binner  { return t.binners }

func (t *statsType) BinnerByName(name string) (Binner, bool) {
	for _, b := range t.binners {
		if strings.EqualFold(b.Name(), name) {
			return b, true
		}
	}
	return nil, false
}

func (t *statsType) SupportedOperations() []Operation { return t.ops }

func (t *statsType) Supports(op Operation) bool {
	for _, o := range t.ops {
		if o == op {
			return true
		}
	}
	return false
}

func (t *statsType) ToFloat(d *models.Dive) (float64, bool) {
	if t.toFloat == nil {
		return 0, false
	}
	return t.toFloat(d)
}

// Types is the registry of statistics variables, built once from the
// configured unit system.
type Types struct {
	logger providers.Logger
	types  []Type
}

func New(conf *structures.Config, logger providers.Logger) *Types {
	imperialLength := conf.Units.Length == "feet"
	imperialVolume := conf.Units.Volume == "cuft"

	numericOps := []Operation{OpMedian, OpMean, OpTimeWeightedMean, OpMin, OpMax}

	depth := &statsType{
		name:    "maxDepth",
		ops:     numericOps,
		toFloat: nil,
	}
	if imperialLength {
		depth.unit, depth.decimals = "ft", 0
		depth.binners = []Binner{
			rangeBinner("15ft", "ft", 15, depthFeet),
			rangeBinner("30ft", "ft", 30, depthFeet),
			rangeBinner("60ft", "ft", 60, depthFeet),
		}
		depth.toFloat = func(d *models.Dive) (float64, bool) {
			if d.MaxDepth <= 0 {
				return 0, false
			}
			return d.MaxDepth.Feet(), true
		}
	} else {
		depth.unit, depth.decimals = "m", 1
		depth.binners = []Binner{
			rangeBinner("5m", "m", 5, depthMeters),
			rangeBinner("10m", "m", 10, depthMeters),
			rangeBinner("20m", "m", 20, depthMeters),
		}
		depth.toFloat = func(d *models.Dive) (float64, bool) {
			if d.MaxDepth <= 0 {
				return 0, false
			}
			return d.MaxDepth.Meters(), true
		}
	}

	duration := &statsType{
		name:     "duration",
		unit:     "min",
		decimals: 0,
		binners: []Binner{
			rangeBinner("5min", "min", 5, durationMinutes),
			rangeBinner("10min", "min", 10, durationMinutes),
			rangeBinner("30min", "min", 30, durationMinutes),
			rangeBinner("hour", "min", 60, durationMinutes),
		},
		ops: []Operation{OpMedian, OpMean, OpSum, OpMin, OpMax},
		toFloat: func(d *models.Dive) (float64, bool) {
			if d.Duration <= 0 {
				return 0, false
			}
			return d.Duration.Minutes(), true
		},
	}

	sac := &statsType{
		name: "sac",
		ops:  numericOps,
	}
	if imperialVolume {
		sac.unit, sac.decimals = "cuft/min", 2
		// Bucket widths are hundredths of a cuft so the narrow imperial
		// buckets stay integral.
		sac.binners = []Binner{
			sacCuftBinner("0.1cuft", 10),
			sacCuftBinner("0.2cuft", 20),
			sacCuftBinner("0.4cuft", 40),
			sacCuftBinner("0.8cuft", 80),
		}
		sac.toFloat = func(d *models.Dive) (float64, bool) {
			if d.SAC <= 0 {
				return 0, false
			}
			return units.MlToCuft(int32(d.SAC)), true
		}
	} else {
		sac.unit, sac.decimals = "ℓ/min", 1
		sac.binners = []Binner{
			rangeBinner("2l", "ℓ", 2, sacLiters),
			rangeBinner("5l", "ℓ", 5, sacLiters),
			rangeBinner("10l", "ℓ", 10, sacLiters),
		}
		sac.toFloat = func(d *models.Dive) (float64, bool) {
			if d.SAC <= 0 {
				return 0, false
			}
			return float64(d.SAC) / 1000.0, true
		}
	}

	date := &statsType{
		name:    "date",
		binners: []Binner{yearBinner(), quarterBinner(), monthBinner()},
		toFloat: func(d *models.Dive) (float64, bool) {
			if d.When <= 0 {
				return 0, false
			}
			return float64(d.When) / 86400.0, true
		},
	}

	diveMode := &statsType{
		name: "diveMode",
		binners: []Binner{&stringBinner{
			name: "mode",
			toValues: func(d *models.Dive) []string {
				return []string{d.DC.DiveMode.String()}
			},
		}},
	}

	buddy := &statsType{
		name: "buddy",
		binners: []Binner{&stringBinner{
			name: "buddy",
			toValues: func(d *models.Dive) []string {
				return splitNames(d.Buddy)
			},
		}},
	}

	suit := &statsType{
		name: "suit",
		binners: []Binner{&stringBinner{
			name: "suit",
			toValues: func(d *models.Dive) []string {
				if d.Suit == "" {
					return nil
				}
				return []string{d.Suit}
			},
		}},
	}

	diveSite := &statsType{
		name:    "diveSite",
		binners: []Binner{&siteBinner{name: "site"}},
	}

	return &Types{
		logger: logger,
		types: []Type{
			date, depth, duration, sac, diveMode, buddy, suit, diveSite,
		},
	}
}

func (t *Types) All() []Type { return t.types }

func (t *Types) ByName(name string) (Type, bool) {
	for _, ty := range t.types {
		if strings.EqualFold(ty.Name(), name) {
			return ty, true
		}
	}
	return nil, false
}

// BinLess orders two bins of the same kind. Bins of different kinds do not
// order; the comparison is logged and answers false.
func (t *Types) BinLess(a, b Bin) bool {
	return a.lessThan(b, t.warnf)
}

func (t *Types) BinEqual(a, b Bin) bool {
	return a.equals(b, t.warnf)
}

func (t *Types) warnf(format string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Warnf(providers.TypeApp, format, args...)
	}
}

func depthMeters(d *models.Dive) (int, bool) {
	if d.MaxDepth <= 0 {
		return 0, false
	}
	return int(d.MaxDepth.Meters()), true
}

func depthFeet(d *models.Dive) (int, bool) {
	if d.MaxDepth <= 0 {
		return 0, false
	}
	return int(d.MaxDepth.Feet()), true
}

func durationMinutes(d *models.Dive) (int, bool) {
	if d.Duration <= 0 {
		return 0, false
	}
	return int(d.Duration.Minutes()), true
}

func sacLiters(d *models.Dive) (int, bool) {
	if d.SAC <= 0 {
		return 0, false
	}
	return d.SAC / 1000, true
}

// sacCuftBinner buckets SAC in hundredths of a cuft/min.
func sacCuftBinner(name string, centiCuftWidth int) Binner {
	return &intBinner{
		name: name,
		toValue: func(d *models.Dive) (int, bool) {
			if d.SAC <= 0 {
				return 0, false
			}
			return int(units.MlToCuft(int32(d.SAC))*100.0) / centiCuftWidth, true
		},
		format: func(v int) string {
			lo := float64(v*centiCuftWidth) / 100.0
			hi := float64((v+1)*centiCuftWidth) / 100.0
			return formatCuftRange(lo, hi)
		},
		continuous: true,
		bound:      func(v int) float64 { return float64(v*centiCuftWidth) / 100.0 },
		boundFormat: func(x float64) string {
			return fmt.Sprintf("%.1f cuft", x)
		},
	}
}

func formatCuftRange(lo, hi float64) string {
	return fmt.Sprintf("%.1f-%.1f cuft", lo, hi)
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
