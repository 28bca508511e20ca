package controllers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"replyguy/internal/ledger"
	"replyguy/internal/models"
	"replyguy/internal/registry"
	"replyguy/internal/services"
	"replyguy/internal/structures"
	"replyguy/internal/testutil"
	"testing"

	"github.com/bwmarrin/discordgo"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) (*registry.Registry, services.ReportServiceInterface, *testutil.MockCache) {
	t.Helper()
	base := t.TempDir()
	conf := &structures.Config{
		Registry: structures.RegistryConfig{
			FilePath: filepath.Join(base, "users.json"),
		},
		Reports: structures.ReportsConfig{
			Dir:        filepath.Join(base, "reports"),
			ArchiveDir: filepath.Join(base, "archive"),
			WindowDays: 60,
			LinkCap:    50,
		},
	}
	logger := &testutil.MockLogger{}
	reg, err := registry.NewRegistry(conf, logger)
	require.NoError(t, err)
	store, err := ledger.NewStore(conf, logger, &testutil.MockMetrics{})
	require.NoError(t, err)
	cache := &testutil.MockCache{}
	reports := services.NewReportService(reg, store, cache, logger, &testutil.MockMetrics{})
	return reg, reports, cache
}

func TestHealthController_OK(t *testing.T) {
	_, reports, _ := newTestBackend(t)
	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)

	hc := NewHealthController(session, reports)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "gateway_latency_ms")
	assert.Equal(t, float64(0), resp["tracked_users"])
}

func TestHealthController_RejectsPost(t *testing.T) {
	_, reports, _ := newTestBackend(t)
	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)

	hc := NewHealthController(session, reports)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h0m5s", formatDuration(5*1e9))
	assert.Equal(t, "1h1m1s", formatDuration(3661*1e9))
	assert.Equal(t, "25h0m0s", formatDuration(25*3600*1e9))
}

func TestStatusController_CountsByStatus(t *testing.T) {
	reg, reports, cache := newTestBackend(t)
	require.NoError(t, reg.Upsert("1", "100", "alice", 5, models.StatusActive, "2025-06-01"))
	require.NoError(t, reg.Upsert("2", "200", "bob", 3, models.StatusActive, "2025-06-01"))
	require.NoError(t, reg.Upsert("3", "300", "carol", 2, models.StatusPaused, "2025-06-01"))

	sc := NewStatusController(&testutil.MockLogger{}, reg, reports, cache)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	sc.Status(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalUsers)
	assert.Equal(t, 2, resp.ByStatus["active"])
	assert.Equal(t, 1, resp.ByStatus["paused"])
}

func TestStatusController_ServesCachedPayload(t *testing.T) {
	reg, reports, cache := newTestBackend(t)
	cache.Set("status", []byte(`{"total_users":99,"by_status":{}}`))

	sc := NewStatusController(&testutil.MockLogger{}, reg, reports, cache)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	sc.Status(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total_users":99,"by_status":{}}`, rr.Body.String())
}

func TestStatusController_PopulatesCache(t *testing.T) {
	reg, reports, cache := newTestBackend(t)
	require.NoError(t, reg.Upsert("1", "100", "alice", 5, models.StatusActive, "2025-06-01"))

	sc := NewStatusController(&testutil.MockLogger{}, reg, reports, cache)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	sc.Status(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	_, ok := cache.Get("status")
	assert.True(t, ok)
}

func TestStatusController_Dashboard(t *testing.T) {
	reg, reports, cache := newTestBackend(t)
	require.NoError(t, reg.Upsert("1", "100", "alice", 5, models.StatusActive, "2025-06-01"))

	sc := NewStatusController(&testutil.MockLogger{}, reg, reports, cache)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	sc.Dashboard(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var stats models.DashboardStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalUsers)
}
