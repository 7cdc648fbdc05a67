package services

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"divelog/internal/divefilter"
	"divelog/internal/models"
	"divelog/internal/planner"
	"divelog/internal/providers"
	"divelog/internal/stats"
	"divelog/internal/structures"
)

type LogbookServiceInterface interface {
	ImportLogbook(book *models.LogbookV1) int
	AddDive(d *models.Dive) *models.Dive
	RemoveDive(id int) bool
	Dives() []*models.Dive
	VisibleDives() []*models.Dive
	Sites() []*models.DiveSite
	DiveCount() int
	ShownDives() int
	ShownText() string
	SetFilter(data divefilter.FilterData)
	ResetFilter()
	BinCounts(typeName, binnerName string, fillEmpty bool) ([]structures.BinCountEntry, error)
	Aggregate(typeName, binnerName, opName string) ([]structures.AggregateEntry, error)
	Summary(typeName string) (structures.SummaryResult, error)
	Scatter(xName, yName string) ([]structures.ScatterEntry, error)
	RenderPlan(plan *models.Diveplan, dive *models.Dive, aborted bool) string
	Snapshot() *models.LogbookV1
	LoadSnapshot(book *models.LogbookV1) int
	Generation() uint64
}

// LogbookService owns the dive table, the site list, the filter state and
// the statistics catalogue. All access goes through its methods; the mutex
// keeps the filter counters consistent with the per-dive flags.
type LogbookService struct {
	mu       sync.Mutex
	conf     *structures.Config
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	notifier providers.NotifierInterface

	table      *models.DiveTable
	sites      []*models.DiveSite
	siteByID   map[string]*models.DiveSite
	filter     *divefilter.DiveFilter
	types      *stats.Types
	generation atomic.Uint64
}

func NewLogbookService(conf *structures.Config, logger providers.Logger,
	metrics providers.MetricsProviderInterface, notifier providers.NotifierInterface) LogbookServiceInterface {
	ls := &LogbookService{
		conf:     conf,
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
		table:    models.NewDiveTable(),
		siteByID: make(map[string]*models.DiveSite),
		types:    stats.New(conf, logger),
	}
	ls.filter = divefilter.New(ls.table, conf, notifier)
	// Filter resets invalidate cached responses built from shown dives.
	notifier.OnFilterReset(func() {
		ls.generation.Inc()
	})
	return ls
}

// Generation changes whenever the set of visible dives may have changed.
// Cache keys include it so stale responses are never served.
func (ls *LogbookService) Generation() uint64 {
	return ls.generation.Load()
}

func (ls *LogbookService) bump() {
	ls.generation.Inc()
}

func (ls *LogbookService) addSiteLocked(site *models.DiveSite) {
	if site == nil {
		return
	}
	key := site.ID.String()
	if _, ok := ls.siteByID[key]; ok {
		return
	}
	ls.siteByID[key] = site
	ls.sites = append(ls.sites, site)
}

func (ls *LogbookService) addDiveLocked(d *models.Dive) {
	if site, ok := ls.siteByID[d.SiteID.String()]; ok {
		d.Site = site
	} else {
		d.Site = nil
	}
	models.UpdateCylinderRelatedInfo(d)
	ls.table.Append(d)
	ls.filter.DiveAdded(d)
}

// ImportLogbook merges a snapshot into the current logbook and returns the
// number of dives added. New dives are run through the installed filter.
func (ls *LogbookService) ImportLogbook(book *models.LogbookV1) int {
	if book == nil {
		return 0
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	for _, site := range book.Sites {
		ls.addSiteLocked(site)
	}
	added := make([]*models.Dive, 0, len(book.Dives))
	for _, d := range book.Dives {
		if d == nil {
			continue
		}
		d.ID = 0
		ls.addDiveLocked(d)
		added = append(added, d)
	}
	ls.filter.Update(added)
	ls.metrics.SetShownDives(ls.filter.ShownDives())
	ls.bump()
	ls.logger.Infof(providers.TypeApp, "imported %d dives, %d sites", len(added), len(book.Sites))
	return len(added)
}

func (ls *LogbookService) AddDive(d *models.Dive) *models.Dive {
	if d == nil {
		return nil
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	d.ID = 0
	ls.addDiveLocked(d)
	ls.filter.Update([]*models.Dive{d})
	ls.metrics.SetShownDives(ls.filter.ShownDives())
	ls.bump()
	return d
}

func (ls *LogbookService) RemoveDive(id int) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	d := ls.table.ByID(id)
	if d == nil {
		return false
	}
	ls.filter.DiveRemoved(d)
	ls.table.Remove(d)
	ls.metrics.SetShownDives(ls.filter.ShownDives())
	ls.bump()
	return true
}

func (ls *LogbookService) Dives() []*models.Dive {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	out := make([]*models.Dive, len(ls.table.Dives))
	copy(out, ls.table.Dives)
	return out
}

func (ls *LogbookService) VisibleDives() []*models.Dive {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.visibleLocked()
}

func (ls *LogbookService) visibleLocked() []*models.Dive {
	out := make([]*models.Dive, 0, ls.table.Size())
	ls.table.ForEachDive(func(d *models.Dive) {
		if !d.HiddenByFilter {
			out = append(out, d)
		}
	})
	return out
}

func (ls *LogbookService) Sites() []*models.DiveSite {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	out := make([]*models.DiveSite, len(ls.sites))
	copy(out, ls.sites)
	return out
}

func (ls *LogbookService) DiveCount() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.table.Size()
}

func (ls *LogbookService) ShownDives() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.filter.ShownDives()
}

func (ls *LogbookService) ShownText() string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.filter.ShownText()
}

func (ls *LogbookService) SetFilter(data divefilter.FilterData) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	start := time.Now()
	ls.filter.SetFilter(data)
	ls.filter.UpdateAll()
	ls.metrics.ObserveFilterDuration(time.Since(start))
	ls.metrics.SetShownDives(ls.filter.ShownDives())
}

func (ls *LogbookService) ResetFilter() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.filter.Reset()
	ls.metrics.SetShownDives(ls.filter.ShownDives())
}

func (ls *LogbookService) lookupType(name string) (stats.Type, error) {
	ty, ok := ls.types.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown statistics type %q", name)
	}
	return ty, nil
}

// BinCounts answers "how many dives per bin" for one variable.
func (ls *LogbookService) BinCounts(typeName, binnerName string, fillEmpty bool) ([]structures.BinCountEntry, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ty, err := ls.lookupType(typeName)
	if err != nil {
		return nil, err
	}
	binner, ok := ty.BinnerByName(binnerName)
	if !ok {
		return nil, fmt.Errorf("type %q has no binner %q", typeName, binnerName)
	}
	counts := binner.CountDives(ls.visibleLocked(), fillEmpty)
	out := make([]structures.BinCountEntry, 0, len(counts))
	for _, bc := range counts {
		out = append(out, structures.BinCountEntry{
			Label: binner.Format(bc.Bin),
			Count: bc.Count,
		})
	}
	return out, nil
}

// Aggregate bins the visible dives by one variable and reduces a second
// variable within each bin.
func (ls *LogbookService) Aggregate(typeName, binnerName, opName string) ([]structures.AggregateEntry, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	binType, err := ls.lookupType(typeName)
	if err != nil {
		return nil, err
	}
	parts := splitAggregateOp(opName)
	valueType := binType
	if parts.valueType != "" {
		valueType, err = ls.lookupType(parts.valueType)
		if err != nil {
			return nil, err
		}
	}
	op, ok := stats.ParseOperation(parts.op)
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", parts.op)
	}
	binner, ok := binType.BinnerByName(binnerName)
	if !ok {
		return nil, fmt.Errorf("type %q has no binner %q", typeName, binnerName)
	}

	bins := binner.BinDives(ls.visibleLocked(), false)
	out := make([]structures.AggregateEntry, 0, len(bins))
	for _, bd := range bins {
		value, valid := ls.types.ApplyOperation(valueType, op, bd.Dives)
		out = append(out, structures.AggregateEntry{
			Label: binner.Format(bd.Bin),
			Count: len(bd.Dives),
			Value: value,
			Valid: valid,
		})
	}
	return out, nil
}

// aggregateOp is "<type>:<operation>", e.g. "maxDepth:mean". A bare
// operation aggregates the binning variable itself.
type aggregateOpParts struct {
	valueType string
	op        string
}

func splitAggregateOp(s string) aggregateOpParts {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return aggregateOpParts{valueType: s[:i], op: s[i+1:]}
		}
	}
	return aggregateOpParts{valueType: "", op: s}
}

// Summary computes the five-number summary and the mean of one variable
// over the visible dives.
func (ls *LogbookService) Summary(typeName string) (structures.SummaryResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ty, err := ls.lookupType(typeName)
	if err != nil {
		return structures.SummaryResult{}, err
	}
	values := stats.Values(ty, ls.visibleLocked())
	res := structures.SummaryResult{
		Count: len(values),
		Unit:  ty.UnitSymbol(),
	}
	if q, ok := stats.ComputeQuartiles(values); ok {
		res.Min = q.Min
		res.Q1 = q.Q1
		res.Median = q.Q2
		res.Q3 = q.Q3
		res.Max = q.Max
	}
	if mean, ok := stats.Mean(values); ok {
		res.Mean = mean
	}
	return res, nil
}

func (ls *LogbookService) Scatter(xName, yName string) ([]structures.ScatterEntry, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	xt, err := ls.lookupType(xName)
	if err != nil {
		return nil, err
	}
	yt, err := ls.lookupType(yName)
	if err != nil {
		return nil, err
	}
	points := stats.Scatter(xt, yt, ls.visibleLocked())
	out := make([]structures.ScatterEntry, 0, len(points))
	for _, p := range points {
		out = append(out, structures.ScatterEntry{
			DiveID: p.Dive.ID,
			X:      p.X,
			Y:      p.Y,
		})
	}
	return out, nil
}

// RenderPlan produces the dive-plan notes for a planned dive and stores
// them on the dive. The dive is not added to the logbook. The aborted flag
// comes from the deco computation and replaces the notes with a warning.
func (ls *LogbookService) RenderPlan(plan *models.Diveplan, dive *models.Dive, aborted bool) string {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	doc := planner.Build(ls.conf, plan, dive, true, aborted)
	dive.Notes = doc.HTML()
	return dive.Notes
}

// Snapshot captures the logbook for persistence. Slices are copied so the
// file manager can marshal outside the service lock.
func (ls *LogbookService) Snapshot() *models.LogbookV1 {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	book := &models.LogbookV1{Version: models.LogbookVersion}
	book.Sites = make([]*models.DiveSite, len(ls.sites))
	copy(book.Sites, ls.sites)
	book.Dives = make([]*models.Dive, len(ls.table.Dives))
	copy(book.Dives, ls.table.Dives)
	return book
}

// LoadSnapshot replaces the entire logbook with the given snapshot. Any
// installed filter is dropped.
func (ls *LogbookService) LoadSnapshot(book *models.LogbookV1) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.table = models.NewDiveTable()
	ls.sites = nil
	ls.siteByID = make(map[string]*models.DiveSite)
	ls.filter = divefilter.New(ls.table, ls.conf, ls.notifier)

	if book == nil {
		ls.bump()
		return 0
	}
	for _, site := range book.Sites {
		ls.addSiteLocked(site)
	}
	count := 0
	for _, d := range book.Dives {
		if d == nil {
			continue
		}
		ls.addDiveLocked(d)
		count++
	}
	ls.filter.UpdateAll()
	ls.metrics.SetShownDives(ls.filter.ShownDives())
	ls.bump()
	return count
}
