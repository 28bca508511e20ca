package controllers

import (
	"net/http"
	"replyguy/internal/providers"
	"replyguy/internal/registry"
	"replyguy/internal/services"

	json "github.com/goccy/go-json"
)

// StatusController exposes read-only registry and dashboard summaries on
// the ops server.
type StatusController struct {
	logger   providers.Logger
	registry *registry.Registry
	reports  services.ReportServiceInterface
	cache    providers.CacheProviderInterface
}

type statusResponse struct {
	TotalUsers int            `json:"total_users"`
	ByStatus   map[string]int `json:"by_status"`
}

func NewStatusController(logger providers.Logger, reg *registry.Registry, reports services.ReportServiceInterface, cache providers.CacheProviderInterface) *StatusController {
	return &StatusController{
		logger:   logger,
		registry: reg,
		reports:  reports,
		cache:    cache,
	}
}

func (sc *StatusController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := sc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		sc.logger.Errorf(providers.TypeHttp, "Status computation failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (sc *StatusController) Status(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, "status", func() (any, error) {
		resp := statusResponse{ByStatus: map[string]int{}}
		for _, row := range sc.registry.List() {
			resp.TotalUsers++
			resp.ByStatus[string(row.Entry.Status)]++
		}
		return resp, nil
	})
}

func (sc *StatusController) Dashboard(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, "status:dashboard", func() (any, error) {
		return sc.reports.Dashboard()
	})
}
