package testutil

import (
	"sync"
	"time"

	"divelog/internal/divefilter"
	"divelog/internal/models"
	"divelog/internal/providers"
	"divelog/internal/structures"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                sync.Mutex
	RequestCalls      int
	FilterObservation int
	PersistCalls      int
	CacheHits         int
	CacheMisses       int
	ShownDives        int
	Gauges            map[string]func() float64
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCalls++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistCalls++
}
func (m *MockMetrics) ObserveFilterDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilterObservation++
}
func (m *MockMetrics) SetShownDives(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShownDives = n
}
func (m *MockMetrics) RegisterGauge(name, _ string, fn func() float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Gauges == nil {
		m.Gauges = make(map[string]func() float64)
	}
	m.Gauges[name] = fn
}

// MockLogbookService implements services.LogbookServiceInterface with
// injectable data for controller tests.
type MockLogbookService struct {
	mu              sync.Mutex
	DiveList        []*models.Dive
	VisibleList     []*models.Dive
	SiteList        []*models.DiveSite
	Shown           int
	Text            string
	Gen             uint64
	ImportedBooks   []*models.LogbookV1
	AddedDives      []*models.Dive
	RemovedIDs      []int
	RemoveResult    bool
	FilterCalls     []divefilter.FilterData
	ResetCalls      int
	BinCountResult  []structures.BinCountEntry
	AggregateResult []structures.AggregateEntry
	SummaryData     structures.SummaryResult
	ScatterResult   []structures.ScatterEntry
	PlanHTML        string
	PlanAborted     []bool
	Err             error
	SnapshotData    *models.LogbookV1
	LoadedBooks     []*models.LogbookV1
}

func (m *MockLogbookService) ImportLogbook(book *models.LogbookV1) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImportedBooks = append(m.ImportedBooks, book)
	if book == nil {
		return 0
	}
	return len(book.Dives)
}

func (m *MockLogbookService) AddDive(d *models.Dive) *models.Dive {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddedDives = append(m.AddedDives, d)
	if d != nil && d.ID == 0 {
		d.ID = len(m.AddedDives)
	}
	return d
}

func (m *MockLogbookService) RemoveDive(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemovedIDs = append(m.RemovedIDs, id)
	return m.RemoveResult
}

func (m *MockLogbookService) Dives() []*models.Dive        { return m.DiveList }
func (m *MockLogbookService) VisibleDives() []*models.Dive { return m.VisibleList }
func (m *MockLogbookService) Sites() []*models.DiveSite    { return m.SiteList }
func (m *MockLogbookService) DiveCount() int               { return len(m.DiveList) }
func (m *MockLogbookService) ShownDives() int              { return m.Shown }
func (m *MockLogbookService) ShownText() string            { return m.Text }
func (m *MockLogbookService) Generation() uint64           { return m.Gen }

func (m *MockLogbookService) SetFilter(data divefilter.FilterData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilterCalls = append(m.FilterCalls, data)
}

func (m *MockLogbookService) ResetFilter() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetCalls++
}

func (m *MockLogbookService) BinCounts(_, _ string, _ bool) ([]structures.BinCountEntry, error) {
	return m.BinCountResult, m.Err
}

func (m *MockLogbookService) Aggregate(_, _, _ string) ([]structures.AggregateEntry, error) {
	return m.AggregateResult, m.Err
}

func (m *MockLogbookService) Summary(_ string) (structures.SummaryResult, error) {
	return m.SummaryData, m.Err
}

func (m *MockLogbookService) Scatter(_, _ string) ([]structures.ScatterEntry, error) {
	return m.ScatterResult, m.Err
}

func (m *MockLogbookService) RenderPlan(_ *models.Diveplan, dive *models.Dive, aborted bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlanAborted = append(m.PlanAborted, aborted)
	if dive != nil {
		dive.Notes = m.PlanHTML
	}
	return m.PlanHTML
}

func (m *MockLogbookService) Snapshot() *models.LogbookV1 {
	if m.SnapshotData != nil {
		return m.SnapshotData
	}
	return &models.LogbookV1{Version: models.LogbookVersion}
}

func (m *MockLogbookService) LoadSnapshot(book *models.LogbookV1) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadedBooks = append(m.LoadedBooks, book)
	if book == nil {
		return 0
	}
	return len(book.Dives)
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
