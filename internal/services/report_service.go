package services

import (
	"math"
	"replyguy/internal/ledger"
	"replyguy/internal/models"
	"replyguy/internal/providers"
	"replyguy/internal/registry"
	"sort"

	json "github.com/goccy/go-json"
)

const dashboardCacheKey = "dashboard"

type ReportServiceInterface interface {
	Dashboard() (*models.DashboardStats, error)
	TrackedUsers() int
}

// ReportService aggregates ledger contents for the admin dashboard.
// Results are cached; staleness is bounded by the cache TTL.
type ReportService struct {
	registry *registry.Registry
	ledgers  *ledger.Store
	cache    providers.CacheProviderInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
}

func NewReportService(reg *registry.Registry, ledgers *ledger.Store, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ReportServiceInterface {
	return &ReportService{
		registry: reg,
		ledgers:  ledgers,
		cache:    cache,
		logger:   logger,
		metrics:  metrics,
	}
}

func (rs *ReportService) Dashboard() (*models.DashboardStats, error) {
	if data, ok := rs.cache.Get(dashboardCacheKey); ok {
		var cached models.DashboardStats
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	rows := rs.registry.List()
	rs.metrics.SetTrackedUsers(len(rows))

	stats := &models.DashboardStats{
		TotalUsers: len(rows),
		Top:        []models.UserCount{},
	}
	for _, row := range rows {
		count, err := rs.ledgers.CountLinks(row.Entry.Username)
		if err != nil {
			// A member without a workbook yet still shows up with zero.
			count = 0
		}
		stats.TotalLinks += count
		stats.Top = append(stats.Top, models.UserCount{Username: row.Entry.Username, Links: count})
	}

	sort.Slice(stats.Top, func(i, j int) bool {
		return stats.Top[i].Links > stats.Top[j].Links
	})
	if len(stats.Top) > 5 {
		stats.Top = stats.Top[:5]
	}
	if stats.TotalUsers > 0 {
		stats.AvgLinks = math.Round(float64(stats.TotalLinks)/float64(stats.TotalUsers)*100) / 100
	}

	if data, err := json.Marshal(stats); err == nil {
		rs.cache.Set(dashboardCacheKey, data)
	}
	return stats, nil
}

func (rs *ReportService) TrackedUsers() int {
	rows := rs.registry.List()
	rs.metrics.SetTrackedUsers(len(rows))
	return len(rows)
}
