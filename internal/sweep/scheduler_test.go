package sweep

import (
	"os"
	"path/filepath"
	"replyguy/internal/ledger"
	"replyguy/internal/models"
	"replyguy/internal/registry"
	"replyguy/internal/structures"
	"replyguy/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, compress bool) (*Scheduler, *registry.Registry, *ledger.Store, *testutil.MockNotifier, *testutil.MockMetrics) {
	t.Helper()
	base := t.TempDir()
	conf := &structures.Config{
		Discord: structures.DiscordConfig{
			GuildID:       "guild",
			TrackedRoleID: "role",
		},
		Registry: structures.RegistryConfig{
			FilePath: filepath.Join(base, "users.json"),
		},
		Reports: structures.ReportsConfig{
			Dir:        filepath.Join(base, "reports"),
			ArchiveDir: filepath.Join(base, "archive"),
			WindowDays: 60,
			LinkCap:    50,
		},
		Sweep: structures.SweepConfig{
			Interval:        6 * time.Hour,
			CompressBackups: compress,
		},
	}
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	notifier := &testutil.MockNotifier{}
	reg, err := registry.NewRegistry(conf, logger)
	require.NoError(t, err)
	store, err := ledger.NewStore(conf, logger, metrics)
	require.NoError(t, err)
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)

	s := &Scheduler{
		config:     conf,
		logger:     logger,
		registry:   reg,
		ledgers:    store,
		notifier:   notifier,
		metrics:    metrics,
		compressor: compressor,
	}
	return s, reg, store, notifier, metrics
}

func TestScheduler_RunOnceEmptyRegistry(t *testing.T) {
	s, _, _, notifier, metrics := newTestScheduler(t, false)

	evicted, err := s.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, 1, metrics.SweepRuns)
	assert.Equal(t, 0, metrics.SweepEvictions)
	assert.Empty(t, notifier.Messages)
}

func TestScheduler_EvictArchivesAndRemoves(t *testing.T) {
	s, reg, store, notifier, metrics := newTestScheduler(t, false)

	day, _ := time.Parse(ledger.DateLayout, "2025-06-01")
	_, err := store.Create("alice", day, day.AddDate(0, 0, 3), 5)
	require.NoError(t, err)
	require.NoError(t, reg.Upsert("42", "", "alice", 5, models.StatusActive, "2025-06-01"))

	row := models.UserRow{ID: "42", Entry: models.Entry{Username: "alice"}}
	s.evict(row)
	metrics.IncSweepEvictions()

	_, ok := reg.Get("42")
	assert.False(t, ok)

	require.Len(t, notifier.Files, 1)
	assert.Contains(t, notifier.Messages[0], "<@42>")

	// Archive keeps a copy, the working report is untouched.
	_, ok = store.Resolve("alice")
	assert.True(t, ok)
}

func TestScheduler_EvictWithoutReport(t *testing.T) {
	s, reg, _, notifier, _ := newTestScheduler(t, false)
	require.NoError(t, reg.Upsert("42", "", "ghost", 0, models.StatusPending, ""))

	s.evict(models.UserRow{ID: "42", Entry: models.Entry{Username: "ghost"}})

	_, ok := reg.Get("42")
	assert.False(t, ok)
	assert.Empty(t, notifier.Files)
	assert.Empty(t, notifier.Messages)
}

func TestScheduler_BackupRegistryPlain(t *testing.T) {
	s, reg, _, _, _ := newTestScheduler(t, false)
	require.NoError(t, reg.Upsert("1", "100", "alice", 5, models.StatusActive, "2025-06-01"))

	require.NoError(t, s.backupRegistry())

	matches, err := filepath.Glob(filepath.Join(s.config.Reports.ArchiveDir, "registry-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "alice")
}

func TestScheduler_BackupRegistryCompressed(t *testing.T) {
	s, reg, _, _, _ := newTestScheduler(t, true)
	require.NoError(t, reg.Upsert("1", "100", "alice", 5, models.StatusActive, "2025-06-01"))

	require.NoError(t, s.backupRegistry())

	matches, err := filepath.Glob(filepath.Join(s.config.Reports.ArchiveDir, "registry-*.json.zst"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, strings.HasSuffix(matches[0], ".json.zst"))

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	restored, err := s.compressor.Decompress(data)
	require.NoError(t, err)
	assert.Contains(t, string(restored), "alice")
}

func TestScheduler_StopWithoutInit(t *testing.T) {
	s, _, _, _, _ := newTestScheduler(t, false)
	s.Stop()
}
