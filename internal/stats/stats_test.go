package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divelog/internal/models"
	"divelog/internal/providers"
	"divelog/internal/structures"
	"divelog/internal/units"
)

// recordingLogger captures warnings so tests can assert on misuse paths.
type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Errorf(_ providers.TypeEnum, format string, args ...interface{}) {}
func (l *recordingLogger) Warnf(_ providers.TypeEnum, format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Infof(_ providers.TypeEnum, format string, args ...interface{})  {}
func (l *recordingLogger) Debugf(_ providers.TypeEnum, format string, args ...interface{}) {}
func (l *recordingLogger) Fatalf(_ providers.TypeEnum, format string, args ...interface{}) {}
func (l *recordingLogger) Close()                                                          {}

var _ providers.Logger = (*recordingLogger)(nil)

func newTestTypes(t *testing.T) (*Types, *recordingLogger) {
	t.Helper()
	logger := &recordingLogger{}
	conf := &structures.Config{}
	conf.Units.Length = "meters"
	conf.Units.Volume = "liter"
	return New(conf, logger), logger
}

func diveAt(year int, month time.Month, day int) *models.Dive {
	return &models.Dive{
		When: units.Timestamp(time.Date(year, month, day, 10, 0, 0, 0, time.UTC).Unix()),
	}
}

func mustType(t *testing.T, types *Types, name string) Type {
	ty, ok := types.ByName(name)
	require.True(t, ok, "type %s not registered", name)
	return ty
}

func mustBinner(t *testing.T, ty Type, name string) Binner {
	b, ok := ty.BinnerByName(name)
	require.True(t, ok, "binner %s not registered on %s", name, ty.Name())
	return b
}

func TestQuartilesMultipleOfFour(t *testing.T) {
	q, ok := ComputeQuartiles([]float64{1, 2, 3, 4})
	require.True(t, ok)
	assert.Equal(t, 1.0, q.Min)
	assert.Equal(t, 1.75, q.Q1)
	assert.Equal(t, 2.5, q.Q2)
	assert.Equal(t, 3.25, q.Q3)
	assert.Equal(t, 4.0, q.Max)
}

func TestQuartilesRemainders(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Quartiles
	}{
		{"one value", []float64{5}, Quartiles{5, 5, 5, 5, 5}},
		{"two values", []float64{1, 2}, Quartiles{1, 1.25, 1.5, 1.75, 2}},
		{"three values", []float64{1, 2, 3}, Quartiles{1, 1.5, 2, 2.5, 3}},
		{"remainder 1", []float64{1, 2, 3, 4, 5}, Quartiles{1, 2, 3, 4, 5}},
		{"remainder 2", []float64{1, 2, 3, 4, 5, 6}, Quartiles{1, 2.25, 3.5, 4.75, 6}},
		{"remainder 3", []float64{1, 2, 3, 4, 5, 6, 7}, Quartiles{1, 2.5, 4, 5.5, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := ComputeQuartiles(tt.values)
			require.True(t, ok)
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestQuartilesEmpty(t *testing.T) {
	_, ok := ComputeQuartiles(nil)
	assert.False(t, ok)
}

func TestMonthBinnerYearWrap(t *testing.T) {
	types, _ := newTestTypes(t)
	date := mustType(t, types, "date")
	month := mustBinner(t, date, "month")

	dives := []*models.Dive{
		diveAt(2024, time.February, 3),
		diveAt(2023, time.December, 15),
	}
	bins := month.BinDives(dives, true)
	require.Len(t, bins, 3)
	assert.Equal(t, pairBin(pairValue{Year: 2023, Part: 11}), bins[0].Bin)
	assert.Equal(t, pairBin(pairValue{Year: 2024, Part: 0}), bins[1].Bin)
	assert.Equal(t, pairBin(pairValue{Year: 2024, Part: 1}), bins[2].Bin)
	assert.Empty(t, bins[1].Dives)
	assert.Equal(t, "Dec 2023", month.Format(bins[0].Bin))
	assert.Equal(t, "Jan 2024", month.Format(bins[1].Bin))
}

func TestQuarterBinnerYearWrap(t *testing.T) {
	types, _ := newTestTypes(t)
	date := mustType(t, types, "date")
	quarter := mustBinner(t, date, "quarter")

	dives := []*models.Dive{
		diveAt(2023, time.November, 1),
		diveAt(2024, time.May, 1),
	}
	bins := quarter.CountDives(dives, true)
	require.Len(t, bins, 3)
	assert.Equal(t, pairBin(pairValue{Year: 2023, Part: 4}), bins[0].Bin)
	assert.Equal(t, pairBin(pairValue{Year: 2024, Part: 1}), bins[1].Bin)
	assert.Equal(t, pairBin(pairValue{Year: 2024, Part: 2}), bins[2].Bin)
	assert.Equal(t, 1, bins[0].Count)
	assert.Equal(t, 0, bins[1].Count)
	assert.Equal(t, "Q1 2024", quarter.Format(bins[1].Bin))
}

func TestDepthBinnerFillsEmptyBins(t *testing.T) {
	types, _ := newTestTypes(t)
	depth := mustType(t, types, "maxDepth")
	binner := mustBinner(t, depth, "5m")

	dives := []*models.Dive{
		{MaxDepth: 3000},
		{MaxDepth: 22000},
		{MaxDepth: 23500},
	}
	bins := binner.BinDives(dives, true)
	require.Len(t, bins, 5) // 0-5, 5-10, 10-15, 15-20, 20-25
	assert.Equal(t, "0-5 m", binner.Format(bins[0].Bin))
	assert.Equal(t, "20-25 m", binner.Format(bins[4].Bin))
	assert.Len(t, bins[0].Dives, 1)
	assert.Empty(t, bins[1].Dives)
	assert.Len(t, bins[4].Dives, 2)

	sparse := binner.BinDives(dives, false)
	assert.Len(t, sparse, 2)
}

func TestBuddyBinnerSplitsNames(t *testing.T) {
	types, _ := newTestTypes(t)
	buddy := mustType(t, types, "buddy")
	binner := buddy.Binners()[0]

	dives := []*models.Dive{
		{Buddy: "Alice, Bob"},
		{Buddy: "Bob"},
		{Buddy: ""},
	}
	bins := binner.CountDives(dives, false)
	require.Len(t, bins, 2)
	assert.Equal(t, "Alice", binner.Format(bins[0].Bin))
	assert.Equal(t, 1, bins[0].Count)
	assert.Equal(t, "Bob", binner.Format(bins[1].Bin))
	assert.Equal(t, 2, bins[1].Count)
}

func TestSiteBinner(t *testing.T) {
	types, _ := newTestTypes(t)
	siteType := mustType(t, types, "diveSite")
	binner := siteType.Binners()[0]

	a := &models.DiveSite{ID: uuid.New(), Name: "Reef"}
	b := &models.DiveSite{ID: uuid.New(), Name: "Quarry"}
	dives := []*models.Dive{{Site: a}, {Site: b}, {Site: a}, {}}

	bins := binner.BinDives(dives, false)
	require.Len(t, bins, 2)
	total := len(bins[0].Dives) + len(bins[1].Dives)
	assert.Equal(t, 3, total)
}

func TestContinuousBinnerBounds(t *testing.T) {
	types, _ := newTestTypes(t)
	depth := mustType(t, types, "maxDepth")
	binner := mustBinner(t, depth, "5m")
	rb, ok := binner.(RangeBinner)
	require.True(t, ok)

	bins := binner.CountDives([]*models.Dive{{MaxDepth: 22000}}, false)
	require.Len(t, bins, 1)
	assert.InDelta(t, 20.0, rb.LowerBoundToFloat(bins[0].Bin), 1e-9)
	assert.InDelta(t, 25.0, rb.UpperBoundToFloat(bins[0].Bin), 1e-9)
	assert.Equal(t, "20 m", rb.FormatLowerBound(bins[0].Bin))
	assert.Equal(t, "25 m", rb.FormatUpperBound(bins[0].Bin))

	date := mustType(t, types, "date")
	month := mustBinner(t, date, "month")
	mrb, ok := month.(RangeBinner)
	require.True(t, ok)
	april := pairBin(pairValue{Year: 2024, Part: 3})
	assert.InDelta(t, 2024.25, mrb.LowerBoundToFloat(april), 1e-9)
	assert.InDelta(t, 2024.0+4.0/12.0, mrb.UpperBoundToFloat(april), 1e-9)
	assert.Equal(t, "Apr 2024", mrb.FormatLowerBound(april))
	assert.Equal(t, "May 2024", mrb.FormatUpperBound(april))

	buddy := mustType(t, types, "buddy")
	_, ok = buddy.Binners()[0].(RangeBinner)
	assert.False(t, ok)
}

func TestTimeWeightedMeanEqualWeightsIsMean(t *testing.T) {
	types, _ := newTestTypes(t)
	depth := mustType(t, types, "maxDepth")

	dives := []*models.Dive{
		{MaxDepth: 10000, Duration: 1800},
		{MaxDepth: 30000, Duration: 1800},
	}
	tw, ok := TimeWeightedMean(depth, dives)
	require.True(t, ok)
	mean, ok := Mean(Values(depth, dives))
	require.True(t, ok)
	assert.InDelta(t, mean, tw, 1e-9)
}

func TestTimeWeightedMeanWeighting(t *testing.T) {
	types, _ := newTestTypes(t)
	depth := mustType(t, types, "maxDepth")

	dives := []*models.Dive{
		{MaxDepth: 10000, Duration: 600},
		{MaxDepth: 40000, Duration: 1800},
	}
	tw, ok := TimeWeightedMean(depth, dives)
	require.True(t, ok)
	assert.InDelta(t, 32.5, tw, 1e-9) // (10*600 + 40*1800) / 2400
}

func TestSumOperation(t *testing.T) {
	types, _ := newTestTypes(t)
	duration := mustType(t, types, "duration")

	dives := []*models.Dive{
		{Duration: 1800},
		{Duration: 3600},
		{Duration: 0}, // no data, skipped
	}
	v, ok := types.ApplyOperation(duration, OpSum, dives)
	require.True(t, ok)
	assert.InDelta(t, 90.0, v, 1e-9)
}

func TestApplyOperationUnsupportedFallsBackToMedian(t *testing.T) {
	types, logger := newTestTypes(t)
	depth := mustType(t, types, "maxDepth")
	require.False(t, depth.Supports(OpSum))

	dives := []*models.Dive{
		{MaxDepth: 10000},
		{MaxDepth: 20000},
		{MaxDepth: 30000},
	}
	v, ok := types.ApplyOperation(depth, OpSum, dives)
	require.True(t, ok)
	assert.InDelta(t, 20.0, v, 1e-9)
	assert.NotEmpty(t, logger.warnings)
}

func TestApplyOperationNoData(t *testing.T) {
	types, _ := newTestTypes(t)
	sac := mustType(t, types, "sac")
	_, ok := types.ApplyOperation(sac, OpMean, []*models.Dive{{}})
	assert.False(t, ok)
}

func TestScatterSortedAndFiltered(t *testing.T) {
	types, _ := newTestTypes(t)
	depth := mustType(t, types, "maxDepth")
	duration := mustType(t, types, "duration")

	dives := []*models.Dive{
		{MaxDepth: 30000, Duration: 3600},
		{MaxDepth: 10000, Duration: 1800},
		{MaxDepth: 20000}, // no duration, dropped
	}
	points := Scatter(depth, duration, dives)
	require.Len(t, points, 2)
	assert.InDelta(t, 10.0, points[0].X, 1e-9)
	assert.InDelta(t, 30.0, points[1].X, 1e-9)
}

func TestCrossKindBinComparisonLogs(t *testing.T) {
	types, logger := newTestTypes(t)
	assert.False(t, types.BinLess(intBin(1), stringBin("a")))
	assert.False(t, types.BinEqual(intBin(1), stringBin("a")))
	assert.Len(t, logger.warnings, 2)
}

func TestImperialBinners(t *testing.T) {
	logger := &recordingLogger{}
	conf := &structures.Config{}
	conf.Units.Length = "feet"
	conf.Units.Volume = "cuft"
	types := New(conf, logger)

	depth := mustType(t, types, "maxDepth")
	assert.Equal(t, "ft", depth.UnitSymbol())
	binner := mustBinner(t, depth, "30ft")
	dives := []*models.Dive{{MaxDepth: units.Depth(units.FeetToMm(65))}}
	bins := binner.CountDives(dives, false)
	require.Len(t, bins, 1)
	assert.Equal(t, "60-90 ft", binner.Format(bins[0].Bin))

	sac := mustType(t, types, "sac")
	sacBinner := mustBinner(t, sac, "0.2cuft")
	sacBins := sacBinner.CountDives([]*models.Dive{{SAC: int(units.CuftToMl(0.5))}}, false)
	require.Len(t, sacBins, 1)
	assert.Equal(t, "0.4-0.6 cuft", sacBinner.Format(sacBins[0].Bin))
}

func TestParseOperation(t *testing.T) {
	op, ok := ParseOperation("timeWeightedMean")
	require.True(t, ok)
	assert.Equal(t, OpTimeWeightedMean, op)

	_, ok = ParseOperation("variance")
	assert.False(t, ok)
}

func TestOperationNamesRoundTrip(t *testing.T) {
	for op, name := range operationNames {
		parsed, ok := ParseOperation(name)
		require.True(t, ok, name)
		assert.Equal(t, op, parsed)
		assert.Equal(t, name, fmt.Sprint(op))
	}
}
