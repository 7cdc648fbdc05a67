package controllers

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"divelog/internal/divefilter"
	"divelog/internal/models"
	"divelog/internal/providers"
	"divelog/internal/services"
	"divelog/internal/units"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.LogbookServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.LogbookServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

// divesResponse is the dive list plus the filter status line.
type divesResponse struct {
	Shown string         `json:"shown"`
	Total int            `json:"total"`
	Dives []*models.Dive `json:"dives"`
}

type filterResponse struct {
	Shown      string `json:"shown"`
	ShownDives int    `json:"shownDives"`
}

// cacheKey folds the logbook generation into the key so that any mutation
// or filter change invalidates all cached responses at once.
func (ac *ApiController) cacheKey(prefix string) string {
	return fmt.Sprintf("%s:%d", prefix, ac.service.Generation())
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// GetDives lists the dives currently shown by the filter.
func (ac *ApiController) GetDives(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, ac.cacheKey("dives"), func() (any, error) {
		return divesResponse{
			Shown: ac.service.ShownText(),
			Total: ac.service.DiveCount(),
			Dives: ac.service.VisibleDives(),
		}, nil
	})
}

// AddDive stores a single dive posted as JSON.
func (ac *ApiController) AddDive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.Dive
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	d := ac.service.AddDive(&payload)
	ac.logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "added dive %d", d.ID)
	writeJSON(w, http.StatusCreated, map[string]int{"id": d.ID})
}

// ImportLogbook merges a posted logbook snapshot into the current one.
func (ac *ApiController) ImportLogbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.LogbookV1
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	count := ac.service.ImportLogbook(&payload)
	writeJSON(w, http.StatusCreated, map[string]int{"imported": count})
}

// RemoveDive deletes a dive by id.
func (ac *ApiController) RemoveDive(w http.ResponseWriter, r *http.Request) {
	id := cast.ToInt(r.URL.Query().Get("id"))
	if id <= 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !ac.service.RemoveDive(id) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSites lists the known dive sites.
func (ac *ApiController) GetSites(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, ac.cacheKey("sites"), func() (any, error) {
		return ac.service.Sites(), nil
	})
}

// SetFilter installs a filter specification and reports the new counts.
func (ac *ApiController) SetFilter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload divefilter.FilterData
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.service.SetFilter(payload)
	writeJSON(w, http.StatusOK, filterResponse{
		Shown:      ac.service.ShownText(),
		ShownDives: ac.service.ShownDives(),
	})
}

// ResetFilter drops the installed filter; every dive becomes shown again.
func (ac *ApiController) ResetFilter(w http.ResponseWriter, r *http.Request) {
	ac.service.ResetFilter()
	writeJSON(w, http.StatusOK, filterResponse{
		Shown:      ac.service.ShownText(),
		ShownDives: ac.service.ShownDives(),
	})
}

// GetStats answers binned count and aggregation queries:
//
//	/stats?type=maxDepth&binner=10m              counts per bin
//	/stats?type=date&binner=month&op=sac:mean    aggregation per bin
func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typeName := q.Get("type")
	binnerName := q.Get("binner")
	opName := q.Get("op")
	fillEmpty := cast.ToBool(q.Get("fill"))

	key := ac.cacheKey("stats:" + typeName + ":" + binnerName + ":" + opName + ":" + q.Get("fill"))
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		if opName == "" {
			return ac.service.BinCounts(typeName, binnerName, fillEmpty)
		}
		return ac.service.Aggregate(typeName, binnerName, opName)
	})
}

// GetSummary answers five-number summaries: /summary?type=maxDepth
func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	typeName := r.URL.Query().Get("type")
	ac.serveFromCacheOrCompute(w, ac.cacheKey("summary:"+typeName), func() (any, error) {
		return ac.service.Summary(typeName)
	})
}

// GetScatter answers scatter plots: /scatter?x=maxDepth&y=duration
func (ac *ApiController) GetScatter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	xName, yName := q.Get("x"), q.Get("y")
	ac.serveFromCacheOrCompute(w, ac.cacheKey("scatter:"+xName+":"+yName), func() (any, error) {
		return ac.service.Scatter(xName, yName)
	})
}

// planSegment is one waypoint of a posted dive plan. Depths are mm, times
// seconds, setpoints mbar.
type planSegment struct {
	Depth      int  `json:"depth"`
	Time       int  `json:"time"`
	CylinderID int  `json:"cylinderId"`
	Setpoint   int  `json:"setpoint"`
	Entered    bool `json:"entered"`
}

type planRequest struct {
	Dive             models.Dive   `json:"dive"`
	When             int64         `json:"when"`
	Error            bool          `json:"error"`
	SurfaceInterval  int32         `json:"surfaceInterval"`
	GFLow            int           `json:"gfLow"`
	GFHigh           int           `json:"gfHigh"`
	EffGFLow         int           `json:"effGfLow"`
	EffGFHigh        int           `json:"effGfHigh"`
	VPMBConservatism int           `json:"vpmbConservatism"`
	SurfacePressure  int           `json:"surfacePressure"`
	Segments         []planSegment `json:"segments"`
}

type planResponse struct {
	Notes string `json:"notes"`
}

// RenderPlan turns a posted dive plan into formatted plan notes. The dive
// is not stored; the caller decides what to do with the notes. An error
// flag from the deco computation yields the aborted-plan warning instead
// of an itinerary.
func (ac *ApiController) RenderPlan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload planRequest
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	plan := &models.Diveplan{
		When:             units.Timestamp(payload.When),
		SurfaceInterval:  payload.SurfaceInterval,
		GFLow:            payload.GFLow,
		GFHigh:           payload.GFHigh,
		EffGFLow:         payload.EffGFLow,
		EffGFHigh:        payload.EffGFHigh,
		VPMBConservatism: payload.VPMBConservatism,
		SurfacePressure:  units.Pressure(payload.SurfacePressure),
	}
	for _, seg := range payload.Segments {
		plan.AddDatapoint(&models.Datapoint{
			Depth:      units.Depth(seg.Depth),
			Time:       units.Duration(seg.Time),
			CylinderID: seg.CylinderID,
			Setpoint:   units.Pressure(seg.Setpoint),
			Entered:    seg.Entered,
		})
	}

	notes := ac.service.RenderPlan(plan, &payload.Dive, payload.Error)
	writeJSON(w, http.StatusOK, planResponse{Notes: notes})
}
