package structures

// BinCountEntry is one histogram bar of a binned count query.
type BinCountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AggregateEntry is one bin of an aggregation query: the reduction of a
// second variable over the dives of the bin.
type AggregateEntry struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Value float64 `json:"value,omitempty"`
	Valid bool    `json:"valid"`
}

// SummaryResult describes one variable over the visible dives.
type SummaryResult struct {
	Count  int     `json:"count"`
	Unit   string  `json:"unit,omitempty"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// ScatterEntry is one dive plotted against two numeric variables.
type ScatterEntry struct {
	DiveID int     `json:"diveId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}
