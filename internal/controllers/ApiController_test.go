package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divelog/internal/models"
	"divelog/internal/structures"
	"divelog/internal/testutil"
	"divelog/internal/units"
)

// mockCache is scoped to controller tests.
type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache                     { return &mockCache{data: make(map[string][]byte)} }
func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte)  { m.data[key] = value }

func newTestController(svc *testutil.MockLogbookService, cache *mockCache) *ApiController {
	return NewApiController(&testutil.MockLogger{}, svc, cache)
}

// --- AddDive tests ---

func TestAddDive_ValidPayload(t *testing.T) {
	svc := &testutil.MockLogbookService{}
	ac := newTestController(svc, newMockCache())

	payload := `{"when":1700000000,"duration":2700,"maxDepth":30000,"buddy":"Alice"}`
	req := httptest.NewRequest(http.MethodPost, "/dives", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.AddDive(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, svc.AddedDives, 1)
	assert.Equal(t, "Alice", svc.AddedDives[0].Buddy)
	assert.Equal(t, units.Depth(30000), svc.AddedDives[0].MaxDepth)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["id"])
}

func TestAddDive_InvalidJSON(t *testing.T) {
	svc := &testutil.MockLogbookService{}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodPost, "/dives", strings.NewReader("not json"))
	rr := httptest.NewRecorder()

	ac.AddDive(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.AddedDives)
}

func TestAddDive_OversizedBody(t *testing.T) {
	svc := &testutil.MockLogbookService{}
	ac := newTestController(svc, newMockCache())

	big := strings.Repeat("x", maxRequestBodySize+1)
	req := httptest.NewRequest(http.MethodPost, "/dives", strings.NewReader(big))
	rr := httptest.NewRecorder()

	ac.AddDive(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- ImportLogbook tests ---

func TestImportLogbook_ValidPayload(t *testing.T) {
	svc := &testutil.MockLogbookService{}
	ac := newTestController(svc, newMockCache())

	payload := `{"version":1,"dives":[{"when":1700000000,"duration":2700},{"when":1700090000,"duration":1800}]}`
	req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.ImportLogbook(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, svc.ImportedBooks, 1)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["imported"])
}

// --- RemoveDive tests ---

func TestRemoveDive_Found(t *testing.T) {
	svc := &testutil.MockLogbookService{RemoveResult: true}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodDelete, "/dives?id=3", nil)
	rr := httptest.NewRecorder()

	ac.RemoveDive(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []int{3}, svc.RemovedIDs)
}

func TestRemoveDive_NotFound(t *testing.T) {
	svc := &testutil.MockLogbookService{RemoveResult: false}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodDelete, "/dives?id=99", nil)
	rr := httptest.NewRecorder()

	ac.RemoveDive(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRemoveDive_MissingID(t *testing.T) {
	svc := &testutil.MockLogbookService{}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodDelete, "/dives", nil)
	rr := httptest.NewRecorder()

	ac.RemoveDive(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.RemovedIDs)
}

// --- GetDives tests ---

func TestGetDives_ReturnsJSON(t *testing.T) {
	svc := &testutil.MockLogbookService{
		DiveList:    []*models.Dive{{ID: 1}, {ID: 2}},
		VisibleList: []*models.Dive{{ID: 1}},
		Text:        "1/2 shown",
	}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodGet, "/dives", nil)
	rr := httptest.NewRecorder()

	ac.GetDives(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp divesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "1/2 shown", resp.Shown)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Dives, 1)
	assert.Equal(t, 1, resp.Dives[0].ID)
}

// --- Filter tests ---

func TestSetFilter_ValidPayload(t *testing.T) {
	svc := &testutil.MockLogbookService{Shown: 3, Text: "3/5 shown"}
	ac := newTestController(svc, newMockCache())

	payload := `{"fullText":"reef","constraints":[{"field":1,"op":2,"from":20000}]}`
	req := httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.SetFilter(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.FilterCalls, 1)
	assert.Equal(t, "reef", svc.FilterCalls[0].FullText)

	var resp filterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ShownDives)
	assert.Equal(t, "3/5 shown", resp.Shown)
}

func TestSetFilter_InvalidJSON(t *testing.T) {
	svc := &testutil.MockLogbookService{}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader("{"))
	rr := httptest.NewRecorder()

	ac.SetFilter(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.FilterCalls)
}

func TestResetFilter(t *testing.T) {
	svc := &testutil.MockLogbookService{Shown: 5, Text: "5 dives"}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodDelete, "/filter", nil)
	rr := httptest.NewRecorder()

	ac.ResetFilter(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, svc.ResetCalls)
}

// --- Stats tests ---

func TestGetStats_BinCounts(t *testing.T) {
	svc := &testutil.MockLogbookService{
		BinCountResult: []structures.BinCountEntry{{Label: "0-10 m", Count: 4}},
	}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodGet, "/stats?type=maxDepth&binner=10m", nil)
	rr := httptest.NewRecorder()

	ac.GetStats(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var result []structures.BinCountEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, "0-10 m", result[0].Label)
	assert.Equal(t, 4, result[0].Count)
}

func TestGetStats_Aggregate(t *testing.T) {
	svc := &testutil.MockLogbookService{
		AggregateResult: []structures.AggregateEntry{{Label: "2024", Count: 7, Value: 21.5, Valid: true}},
	}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodGet, "/stats?type=date&binner=year&op=maxDepth:mean", nil)
	rr := httptest.NewRecorder()

	ac.GetStats(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var result []structures.AggregateEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.InDelta(t, 21.5, result[0].Value, 1e-9)
}

func TestGetStats_UnknownType(t *testing.T) {
	svc := &testutil.MockLogbookService{Err: fmt.Errorf("unknown statistics type %q", "bogus")}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodGet, "/stats?type=bogus&binner=10m", nil)
	rr := httptest.NewRecorder()

	ac.GetStats(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetSummary(t *testing.T) {
	svc := &testutil.MockLogbookService{
		SummaryData: structures.SummaryResult{Count: 4, Unit: "m", Median: 25},
	}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodGet, "/summary?type=maxDepth", nil)
	rr := httptest.NewRecorder()

	ac.GetSummary(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var result structures.SummaryResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 4, result.Count)
	assert.InDelta(t, 25.0, result.Median, 1e-9)
}

func TestGetScatter(t *testing.T) {
	svc := &testutil.MockLogbookService{
		ScatterResult: []structures.ScatterEntry{{DiveID: 1, X: 18, Y: 45}},
	}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodGet, "/scatter?x=maxDepth&y=duration", nil)
	rr := httptest.NewRecorder()

	ac.GetScatter(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var result []structures.ScatterEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].DiveID)
}

// --- RenderPlan tests ---

func TestRenderPlan_ValidPayload(t *testing.T) {
	svc := &testutil.MockLogbookService{PlanHTML: "<div>plan</div>"}
	ac := newTestController(svc, newMockCache())

	payload := `{
		"dive": {"cylinders":[{"gasmix":{"o2":0,"he":0},"size":24000,"start":220000}]},
		"when": 1700000000,
		"gfLow": 30, "gfHigh": 70,
		"segments": [
			{"depth":30000,"time":1200,"entered":true},
			{"depth":0,"time":1500}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.RenderPlan(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp planResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "<div>plan</div>", resp.Notes)
	require.Len(t, svc.PlanAborted, 1)
	assert.False(t, svc.PlanAborted[0])
}

func TestRenderPlan_ErrorFlagPassedThrough(t *testing.T) {
	svc := &testutil.MockLogbookService{PlanHTML: "<div>aborted</div>"}
	ac := newTestController(svc, newMockCache())

	payload := `{
		"dive": {},
		"error": true,
		"segments": [{"depth":30000,"time":1200,"entered":true}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.RenderPlan(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.PlanAborted, 1)
	assert.True(t, svc.PlanAborted[0])
}

func TestRenderPlan_InvalidJSON(t *testing.T) {
	svc := &testutil.MockLogbookService{}
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader("nope"))
	rr := httptest.NewRecorder()

	ac.RenderPlan(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- Cache behavior tests ---

func TestCacheHit_ServiceNotCalled(t *testing.T) {
	cache := newMockCache()
	cachedData, _ := json.Marshal(divesResponse{Shown: "cached"})
	cache.Set("dives:7", cachedData)

	svc := &testutil.MockLogbookService{Gen: 7, Text: "fresh"}
	ac := newTestController(svc, cache)

	req := httptest.NewRequest(http.MethodGet, "/dives", nil)
	rr := httptest.NewRecorder()

	ac.GetDives(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(cachedData), rr.Body.String())
}

func TestCacheMiss_SavesResult(t *testing.T) {
	cache := newMockCache()
	svc := &testutil.MockLogbookService{Gen: 3, Text: "2 dives"}
	ac := newTestController(svc, cache)

	req := httptest.NewRequest(http.MethodGet, "/dives", nil)
	rr := httptest.NewRecorder()

	ac.GetDives(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	val, ok := cache.Get("dives:3")
	assert.True(t, ok)
	assert.NotEmpty(t, val)
}

func TestCacheKey_ChangesWithGeneration(t *testing.T) {
	cache := newMockCache()
	svc := &testutil.MockLogbookService{Gen: 1, Text: "old"}
	ac := newTestController(svc, cache)

	req := httptest.NewRequest(http.MethodGet, "/dives", nil)
	ac.GetDives(httptest.NewRecorder(), req)
	_, ok := cache.Get("dives:1")
	require.True(t, ok)

	svc.Gen = 2
	svc.Text = "new"
	rr := httptest.NewRecorder()
	ac.GetDives(rr, req)

	var resp divesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "new", resp.Shown)
}

func TestCacheKey_StatsIncludesQuery(t *testing.T) {
	cache := newMockCache()
	svc := &testutil.MockLogbookService{Gen: 5}
	ac := newTestController(svc, cache)

	req := httptest.NewRequest(http.MethodGet, "/stats?type=maxDepth&binner=10m&fill=true", nil)
	rr := httptest.NewRecorder()

	ac.GetStats(rr, req)

	_, ok := cache.Get("stats:maxDepth:10m::true:5")
	assert.True(t, ok)
}

// --- Content-Type tests ---

func TestContentType_AllGetEndpoints(t *testing.T) {
	svc := &testutil.MockLogbookService{}
	cache := newMockCache()
	ac := newTestController(svc, cache)

	endpoints := []struct {
		path    string
		handler func(http.ResponseWriter, *http.Request)
	}{
		{"/dives", ac.GetDives},
		{"/sites", ac.GetSites},
		{"/stats?type=maxDepth&binner=10m", ac.GetStats},
		{"/summary?type=maxDepth", ac.GetSummary},
		{"/scatter?x=maxDepth&y=duration", ac.GetScatter},
	}

	for _, ep := range endpoints {
		t.Run(ep.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, ep.path, nil)
			rr := httptest.NewRecorder()
			ep.handler(rr, req)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}
