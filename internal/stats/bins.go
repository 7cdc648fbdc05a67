// Package stats bins dives along configurable axes and reduces a second
// variable per bin. Results are always sorted ascending by bin key.
package stats

import (
	"sort"

	"divelog/internal/models"
)

// Bin is an equivalence class of dives along one axis. Bins are only
// comparable with bins of the same dynamic kind; comparing across kinds is
// a programming error that is logged and answered with false.
type Bin interface {
	lessThan(other Bin, log warnFunc) bool
	equals(other Bin, log warnFunc) bool
}

type warnFunc func(format string, args ...interface{})

type intBin int

func (b intBin) lessThan(other Bin, log warnFunc) bool {
	o, ok := other.(intBin)
	if !ok {
		log("stats: comparing int bin with %T", other)
		return false
	}
	return b < o
}

func (b intBin) equals(other Bin, log warnFunc) bool {
	o, ok := other.(intBin)
	if !ok {
		log("stats: comparing int bin with %T", other)
		return false
	}
	return b == o
}

// pairValue is a (year, part) pair for quarter and month binners.
type pairValue struct {
	Year int
	Part int
}

func (p pairValue) less(o pairValue) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Part < o.Part
}

type pairBin pairValue

func (b pairBin) lessThan(other Bin, log warnFunc) bool {
	o, ok := other.(pairBin)
	if !ok {
		log("stats: comparing pair bin with %T", other)
		return false
	}
	return pairValue(b).less(pairValue(o))
}

func (b pairBin) equals(other Bin, log warnFunc) bool {
	o, ok := other.(pairBin)
	if !ok {
		log("stats: comparing pair bin with %T", other)
		return false
	}
	return b == o
}

type stringBin string

func (b stringBin) lessThan(other Bin, log warnFunc) bool {
	o, ok := other.(stringBin)
	if !ok {
		log("stats: comparing string bin with %T", other)
		return false
	}
	return b < o
}

func (b stringBin) equals(other Bin, log warnFunc) bool {
	o, ok := other.(stringBin)
	if !ok {
		log("stats: comparing string bin with %T", other)
		return false
	}
	return b == o
}

type siteBin struct {
	site *models.DiveSite
}

func (b siteBin) lessThan(other Bin, log warnFunc) bool {
	o, ok := other.(siteBin)
	if !ok {
		log("stats: comparing site bin with %T", other)
		return false
	}
	return b.site.ID.String() < o.site.ID.String()
}

func (b siteBin) equals(other Bin, log warnFunc) bool {
	o, ok := other.(siteBin)
	if !ok {
		log("stats: comparing site bin with %T", other)
		return false
	}
	return b.site == o.site
}

// BinDives is one bin with the dives that fell into it.
type BinDives struct {
	Bin   Bin
	Dives []*models.Dive
}

// BinCount is one bin with the number of dives that fell into it.
type BinCount struct {
	Bin   Bin
	Count int
}

// valueBin pairs a raw bin value with its accumulating dive list. The
// machinery below keeps the slices sorted by value using binary search, so
// the output order comes for free.
type valueBin[V any] struct {
	value V
	dives []*models.Dive
	count int
}

func lowerBound[V any](bins []valueBin[V], value V, less func(a, b V) bool) int {
	return sort.Search(len(bins), func(i int) bool {
		return !less(bins[i].value, value)
	})
}

func addDiveToValueBin[V comparable](bins []valueBin[V], value V, d *models.Dive, less func(a, b V) bool) []valueBin[V] {
	i := lowerBound(bins, value, less)
	if i < len(bins) && bins[i].value == value {
		bins[i].dives = append(bins[i].dives, d)
		return bins
	}
	bins = append(bins, valueBin[V]{})
	copy(bins[i+1:], bins[i:])
	bins[i] = valueBin[V]{value: value, dives: []*models.Dive{d}}
	return bins
}

func incrementCountBin[V comparable](bins []valueBin[V], value V, less func(a, b V) bool) []valueBin[V] {
	i := lowerBound(bins, value, less)
	if i < len(bins) && bins[i].value == value {
		bins[i].count++
		return bins
	}
	bins = append(bins, valueBin[V]{})
	copy(bins[i+1:], bins[i:])
	bins[i] = valueBin[V]{value: value, count: 1}
	return bins
}
