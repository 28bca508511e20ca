package ledger

import (
	"path/filepath"
	"replyguy/internal/structures"
	"replyguy/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	conf := &structures.Config{
		Reports: structures.ReportsConfig{
			Dir:        filepath.Join(base, "reports"),
			ArchiveDir: filepath.Join(base, "archive"),
			WindowDays: 60,
			LinkCap:    50,
		},
	}
	store, err := NewStore(conf, &testutil.MockLogger{}, &testutil.MockMetrics{})
	require.NoError(t, err)
	return store
}

func date(t *testing.T, iso string) time.Time {
	t.Helper()
	day, err := time.Parse(DateLayout, iso)
	require.NoError(t, err)
	return day
}

func headerRow(t *testing.T, path string) []string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	return rows[0]
}

func TestStore_CreateThenResolve(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-05"), 5)
	require.NoError(t, err)

	path, ok := store.Resolve("alice")
	require.True(t, ok)

	header := headerRow(t, path)
	require.Len(t, header, 6)
	assert.Equal(t, "Day", header[0])
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05"}, header[1:])

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	label, err := f.GetCellValue(SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Target", label)
	target, err := f.GetCellValue(SheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "5", target)
}

func TestStore_CreateSpansInclusiveWindow(t *testing.T) {
	store := newTestStore(t)

	start := date(t, "2025-01-01")
	end := start.AddDate(0, 0, 60)
	path, err := store.Create("alice", start, end, 5)
	require.NoError(t, err)

	header := headerRow(t, path)
	// 61 date columns plus the Day label.
	assert.Len(t, header, 62)
}

func TestStore_ResolveMissing(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Resolve("nobody")
	assert.False(t, ok)
}

func TestStore_ResolveUsesSanitizedName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create("john doe", date(t, "2025-01-01"), date(t, "2025-01-02"), 1)
	require.NoError(t, err)

	path, ok := store.Resolve("john doe")
	require.True(t, ok)
	assert.Equal(t, "john_doe.xlsx", filepath.Base(path))
}

func TestStore_RecordLinksMissingWorkbook(t *testing.T) {
	store := newTestStore(t)

	_, err := store.RecordLinks("nobody", date(t, "2025-01-02"), []string{"u"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RecordLinksSequentialRows(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-05"), 5)
	require.NoError(t, err)

	day := date(t, "2025-01-02")
	n, err := store.RecordLinks("alice", day, []string{"https://x.com/a/status/1", "https://x.com/a/status/2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.RecordLinks("alice", day, []string{"https://x.com/a/status/3"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	path, _ := store.Resolve("alice")
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// 2025-01-02 is column C; labels run 1..3 from row 3.
	for row, want := range map[int]string{3: "1", 4: "2", 5: "3"} {
		cell, err := excelize.CoordinatesToCellName(3, row)
		require.NoError(t, err)
		val, err := f.GetCellValue(SheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, want, val)
	}

	ok, target, err := f.GetCellHyperLink(SheetName, "C3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://x.com/a/status/1", target)

	// Neighboring date columns stay empty.
	val, err := f.GetCellValue(SheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "", val)
	val, err = f.GetCellValue(SheetName, "D3")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestStore_RecordLinksAppendsNewDateColumn(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-03"), 5)
	require.NoError(t, err)

	n, err := store.RecordLinks("alice", date(t, "2025-02-10"), []string{"https://x.com/a/status/9"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	path, _ := store.Resolve("alice")
	header := headerRow(t, path)
	// One new column at the next free index.
	require.Len(t, header, 5)
	assert.Equal(t, "2025-02-10", header[4])

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	val, err := f.GetCellValue(SheetName, "E3")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestStore_RecordLinksHonorsCap(t *testing.T) {
	base := t.TempDir()
	conf := &structures.Config{
		Reports: structures.ReportsConfig{
			Dir:        filepath.Join(base, "reports"),
			ArchiveDir: filepath.Join(base, "archive"),
			WindowDays: 60,
			LinkCap:    2,
		},
	}
	store, err := NewStore(conf, &testutil.MockLogger{}, &testutil.MockMetrics{})
	require.NoError(t, err)
	_, err = store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-03"), 5)
	require.NoError(t, err)

	n, err := store.RecordLinks("alice", date(t, "2025-01-01"), []string{
		"https://x.com/a/status/1", "https://x.com/a/status/2", "https://x.com/a/status/3",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := store.CountLinks("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_RecordLinksEmptyBatch(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-03"), 5)
	require.NoError(t, err)

	n, err := store.RecordLinks("alice", date(t, "2025-01-01"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_CountLinksAcrossDates(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-05"), 5)
	require.NoError(t, err)

	_, err = store.RecordLinks("alice", date(t, "2025-01-01"), []string{"https://x.com/a/status/1", "https://x.com/a/status/2"})
	require.NoError(t, err)
	_, err = store.RecordLinks("alice", date(t, "2025-01-03"), []string{"https://x.com/a/status/3"})
	require.NoError(t, err)

	count, err := store.CountLinks("alice")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_ArchiveCopy(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-03"), 5)
	require.NoError(t, err)

	dest, err := store.Archive("alice", false)
	require.NoError(t, err)

	name := filepath.Base(dest)
	assert.True(t, strings.HasPrefix(name, "alice-"))
	assert.True(t, strings.HasSuffix(name, "Z.xlsx"))

	// Copy keeps the original in place.
	_, ok := store.Resolve("alice")
	assert.True(t, ok)
}

func TestStore_ArchiveMove(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-03"), 5)
	require.NoError(t, err)

	_, err = store.Archive("alice", true)
	require.NoError(t, err)

	_, ok := store.Resolve("alice")
	assert.False(t, ok)
}

func TestStore_ArchiveMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Archive("nobody", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_CompileMaster(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("alice", date(t, "2025-01-01"), date(t, "2025-01-03"), 5)
	require.NoError(t, err)
	_, err = store.Create("bob", date(t, "2025-01-01"), date(t, "2025-01-03"), 2)
	require.NoError(t, err)

	path, err := store.CompileMaster()
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "alice")
	assert.Contains(t, sheets, "bob")

	val, err := f.GetCellValue("alice", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Day", val)
}
