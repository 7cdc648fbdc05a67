// Package divefilter maintains the hidden_by_filter flag on every dive of
// the logbook. There are three evaluation modes, in priority order:
// dive-site scope, full-text query, structured constraints.
package divefilter

import (
	"fmt"
	"sort"

	"divelog/internal/fulltext"
	"divelog/internal/models"
	"divelog/internal/providers"
	"divelog/internal/structures"
)

// FilterData is the installed filter specification. The normalized query is
// derived from FullText on installation.
type FilterData struct {
	FullText   string              `json:"fullText"`
	StringMode fulltext.StringMode `json:"stringMode"`
	Constraints []Constraint       `json:"constraints,omitempty"`

	normalized string
}

func (f *FilterData) normalize() {
	f.normalized = fulltext.Normalize(f.FullText)
}

func (f *FilterData) doFullText() bool {
	return f.normalized != ""
}

// ValidFilter reports whether the data filters anything at all.
func (f *FilterData) ValidFilter() bool {
	return f.doFullText() || len(f.Constraints) > 0
}

func (f *FilterData) Equals(o *FilterData) bool {
	if f.FullText != o.FullText || f.StringMode != o.StringMode ||
		len(f.Constraints) != len(o.Constraints) {
		return false
	}
	for i := range f.Constraints {
		if !f.Constraints[i].equals(o.Constraints[i]) {
			return false
		}
	}
	return true
}

// ShownChange summarises one filter run: dives that flipped to shown, dives
// that flipped to hidden, and whether the current dive was reassigned as a
// side effect of deselection.
type ShownChange struct {
	NewShown       []*models.Dive
	NewHidden      []*models.Dive
	CurrentChanged bool
}

// DiveFilter owns the shown-dives counter and the dive-site scope. It is
// instantiated once at startup and serialised by the service layer.
type DiveFilter struct {
	table    *models.DiveTable
	conf     *structures.Config
	notifier providers.NotifierInterface

	filterData       FilterData
	diveSiteRefCount int
	diveSites        []*models.DiveSite // sorted by id
	shownDives       int
}

func New(table *models.DiveTable, conf *structures.Config, notifier providers.NotifierInterface) *DiveFilter {
	return &DiveFilter{
		table:      table,
		conf:       conf,
		notifier:   notifier,
		shownDives: table.Size(),
	}
}

// ShownDives is the number of dives currently not hidden by the filter.
// It is maintained strictly alongside the per-dive flags.
func (f *DiveFilter) ShownDives() int {
	return f.shownDives
}

// setFilterStatus updates one dive's flag and the counter, returning whether
// the status changed. Hiding a selected dive deselects it.
func (f *DiveFilter) setFilterStatus(d *models.Dive, shown bool) bool {
	if d == nil {
		return false
	}
	oldShown := !d.HiddenByFilter
	d.HiddenByFilter = !shown
	if !shown && d.Selected {
		f.table.Deselect(d)
	}
	if oldShown == shown {
		return false
	}
	if shown {
		f.shownDives++
	} else {
		f.shownDives--
	}
	return true
}

func (f *DiveFilter) updateDiveStatus(d *models.Dive, newStatus bool, change *ShownChange) {
	if f.setFilterStatus(d, newStatus) {
		if newStatus {
			change.NewShown = append(change.NewShown, d)
		} else {
			change.NewHidden = append(change.NewHidden, d)
		}
	}
}

// showDive evaluates the constraint mode for one dive.
func (f *DiveFilter) showDive(d *models.Dive) bool {
	if d.Invalid && !f.conf.Filter.DisplayInvalidDives {
		return false
	}
	if !f.filterData.ValidFilter() {
		return true
	}
	for _, c := range f.filterData.Constraints {
		if !c.MatchesDive(d) {
			return false
		}
	}
	return true
}

// SetFilter installs a new filter specification and notifies subscribers.
// Recomputation is driven separately via UpdateAll.
func (f *DiveFilter) SetFilter(data FilterData) {
	data.normalize()
	f.filterData = data
	f.notifier.FilterReset()
}

// Update recomputes the shown status of the given dives only.
func (f *DiveFilter) Update(dives []*models.Dive) ShownChange {
	oldCurrent := f.table.CurrentDive()

	var res ShownChange
	doDS := f.DiveSiteMode()
	doFullText := f.filterData.doFullText()
	for _, d := range dives {
		if d == nil {
			continue
		}
		var newStatus bool
		switch {
		case doDS:
			newStatus = f.containsSite(d.Site)
		case doFullText:
			newStatus = fulltext.DiveMatches(d, f.filterData.normalized, f.filterData.StringMode) && f.showDive(d)
		default:
			newStatus = f.showDive(d)
		}
		f.updateDiveStatus(d, newStatus, &res)
	}
	res.CurrentChanged = oldCurrent != f.table.CurrentDive()
	return res
}

// UpdateAll recomputes the shown status across the whole dive table in
// canonical order.
func (f *DiveFilter) UpdateAll() ShownChange {
	oldCurrent := f.table.CurrentDive()

	var res ShownChange
	switch {
	case f.DiveSiteMode():
		f.table.ForEachDive(func(d *models.Dive) {
			f.updateDiveStatus(d, f.containsSite(d.Site), &res)
		})
	case f.filterData.doFullText():
		ft := fulltext.FindDives(f.table, f.filterData.normalized, f.filterData.StringMode)
		f.table.ForEachDive(func(d *models.Dive) {
			f.updateDiveStatus(d, ft.DiveMatches(d) && f.showDive(d), &res)
		})
	default:
		f.table.ForEachDive(func(d *models.Dive) {
			f.updateDiveStatus(d, f.showDive(d), &res)
		})
	}
	res.CurrentChanged = oldCurrent != f.table.CurrentDive()
	return res
}

// Reset clears all filtering: the filter data is dropped and every dive
// becomes shown.
func (f *DiveFilter) Reset() {
	f.filterData = FilterData{}
	f.shownDives = f.table.Size()
	f.table.ForEachDive(func(d *models.Dive) {
		d.HiddenByFilter = false
	})
	f.notifier.FilterReset()
}

// DiveAdded adjusts the counter after a dive enters the table. The next
// Update call may still hide the dive again.
func (f *DiveFilter) DiveAdded(d *models.Dive) {
	if d != nil && !d.HiddenByFilter {
		f.shownDives++
	}
}

// DiveRemoved adjusts the counter before a dive leaves the table.
func (f *DiveFilter) DiveRemoved(d *models.Dive) {
	if d != nil && !d.HiddenByFilter {
		f.shownDives--
	}
}

// StartFilterDiveSites enters the dive-site scope. The scope is reference
// counted: only the outermost entry installs the list and raises the reset
// signal; nested entries just swap the list.
func (f *DiveFilter) StartFilterDiveSites(sites []*models.DiveSite) {
	f.diveSiteRefCount++
	if f.diveSiteRefCount > 1 {
		f.diveSites = sortSites(sites)
		return
	}
	f.diveSites = sortSites(sites)
	f.notifier.FilterReset()
}

// StopFilterDiveSites leaves the dive-site scope; the last exit clears the
// site list and raises the reset signal.
func (f *DiveFilter) StopFilterDiveSites() {
	f.diveSiteRefCount--
	if f.diveSiteRefCount > 0 {
		return
	}
	f.diveSiteRefCount = 0
	f.diveSites = nil
	f.notifier.FilterReset()
}

// SetFilterDiveSite replaces the site list inside an open scope. Equal lists
// (under permutation) are a no-op.
func (f *DiveFilter) SetFilterDiveSite(sites []*models.DiveSite) {
	sorted := sortSites(sites)
	if sitesEqual(sorted, f.diveSites) {
		return
	}
	f.diveSites = sorted
	f.notifier.FilterReset()
}

func (f *DiveFilter) FilteredDiveSites() []*models.DiveSite {
	return f.diveSites
}

func (f *DiveFilter) DiveSiteMode() bool {
	return f.diveSiteRefCount > 0
}

func (f *DiveFilter) containsSite(site *models.DiveSite) bool {
	if site == nil {
		return false
	}
	id := site.ID.String()
	i := sort.Search(len(f.diveSites), func(i int) bool {
		return f.diveSites[i].ID.String() >= id
	})
	return i < len(f.diveSites) && f.diveSites[i] == site
}

func sortSites(sites []*models.DiveSite) []*models.DiveSite {
	sorted := make([]*models.DiveSite, len(sites))
	copy(sorted, sites)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return sorted
}

func sitesEqual(a, b []*models.DiveSite) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ShownText is the status line of the dive list.
func (f *DiveFilter) ShownText() string {
	if f.DiveSiteMode() || f.filterData.ValidFilter() {
		return fmt.Sprintf("%d/%d shown", f.shownDives, f.table.Size())
	}
	return fmt.Sprintf("%d dives", f.table.Size())
}
