package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"replyguy/internal/providers"
	"replyguy/internal/structures"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName  = "Replies"
	DateLayout = "2006-01-02"

	headerLabel = "Day"
	targetLabel = "Target"

	// Link rows start below the header and target rows.
	linkStartRow = 3

	archiveStampLayout = "20060102T150405Z"
	masterReportName   = "master_report.xlsx"
)

var ErrNotFound = errors.New("report workbook not found")

// Store owns the per-user report workbooks: one .xlsx per sanitized
// username under the reports dir, archive copies under the archive dir.
type Store struct {
	dir        string
	archiveDir string
	linkCap    int
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewStore(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (*Store, error) {
	for _, dir := range []string{conf.Reports.Dir, conf.Reports.ArchiveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create reports dir %s: %w", dir, err)
		}
	}
	return &Store{
		dir:        conf.Reports.Dir,
		archiveDir: conf.Reports.ArchiveDir,
		linkCap:    conf.Reports.LinkCap,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Path maps a username to its workbook path via Sanitize. Two usernames
// that sanitize to the same key map to the same workbook; collisions are
// rejected upstream at setup time.
func (s *Store) Path(username string) string {
	return filepath.Join(s.dir, Sanitize(username)+".xlsx")
}

// Resolve returns the workbook path if it exists on disk.
func (s *Store) Resolve(username string) (string, bool) {
	path := s.Path(username)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Create builds a fresh workbook with one header column per calendar day
// from start to end inclusive and the target in the metadata row. An
// existing workbook of the same key is overwritten.
func (s *Store) Create(username string, start, end time.Time, target int) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return "", err
	}

	if err := f.SetCellValue(SheetName, "A1", headerLabel); err != nil {
		return "", err
	}
	col := 2
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		cell, err := excelize.CoordinatesToCellName(col, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(SheetName, cell, day.Format(DateLayout)); err != nil {
			return "", err
		}
		col++
	}

	if err := f.SetCellValue(SheetName, "A2", targetLabel); err != nil {
		return "", err
	}
	if err := f.SetCellValue(SheetName, "B2", target); err != nil {
		return "", err
	}
	_ = f.SetRowHeight(SheetName, 1, 20)

	path := s.Path(username)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	s.logger.Infof(providers.TypeTrack, "Created report workbook %s (%s..%s, target %d)",
		path, start.Format(DateLayout), end.Format(DateLayout), target)
	return path, nil
}

// RecordLinks appends up to linkCap links to the column for day,
// numbering them after the links already present. Returns the number of
// links written.
func (s *Store) RecordLinks(username string, day time.Time, links []string) (int, error) {
	if len(links) == 0 {
		return 0, nil
	}
	if len(links) > s.linkCap {
		links = links[:s.linkCap]
	}

	path, ok := s.Resolve(username)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, Sanitize(username))
	}

	started := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	col, err := s.findOrAppendDateColumn(f, day.Format(DateLayout))
	if err != nil {
		return 0, err
	}

	row, err := firstEmptyLinkRow(f, col)
	if err != nil {
		return 0, err
	}

	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return 0, err
	}

	label := row - linkStartRow + 1
	for _, link := range links {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(SheetName, cell, label); err != nil {
			return 0, err
		}
		if err := f.SetCellHyperLink(SheetName, cell, link, "External"); err != nil {
			return 0, err
		}
		_ = f.SetCellStyle(SheetName, cell, cell, centered)
		row++
		label++
	}

	if err := f.Save(); err != nil {
		return 0, fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	s.metrics.ObserveLedgerWriteDuration(time.Since(started))
	return len(links), nil
}

// findOrAppendDateColumn scans row 1 from column 2 for dateISO and
// appends a new header column when the date is not present.
func (s *Store) findOrAppendDateColumn(f *excelize.File, dateISO string) (int, error) {
	rows, err := f.GetRows(SheetName)
	if err != nil {
		return 0, err
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	for i := 1; i < len(header); i++ {
		if header[i] == dateISO {
			return i + 1, nil
		}
	}

	col := len(header) + 1
	if col < 2 {
		col = 2
	}
	cell, err := excelize.CoordinatesToCellName(col, 1)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellValue(SheetName, cell, dateISO); err != nil {
		return 0, err
	}
	return col, nil
}

// firstEmptyLinkRow scans downward from the link start row until the
// first empty cell in col.
func firstEmptyLinkRow(f *excelize.File, col int) (int, error) {
	row := linkStartRow
	for {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return 0, err
		}
		val, err := f.GetCellValue(SheetName, cell)
		if err != nil {
			return 0, err
		}
		if val == "" {
			return row, nil
		}
		row++
	}
}

// CountLinks counts the populated link cells of a workbook (rows below
// the target row, date columns only).
func (s *Store) CountLinks(username string) (int, error) {
	path, ok := s.Resolve(username)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, Sanitize(username))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := linkStartRow - 1; i < len(rows); i++ {
		for j := 1; j < len(rows[i]); j++ {
			if rows[i][j] != "" {
				count++
			}
		}
	}
	return count, nil
}

// Archive duplicates the workbook into the archive dir under a
// timestamped name. With move set the original is removed afterwards
// (terminal stop); otherwise the original stays in place.
func (s *Store) Archive(username string, move bool) (string, error) {
	path, ok := s.Resolve(username)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, Sanitize(username))
	}

	stamp := time.Now().UTC().Format(archiveStampLayout)
	dest := filepath.Join(s.archiveDir, fmt.Sprintf("%s-%s.xlsx", Sanitize(username), stamp))

	if err := copyFile(path, dest); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	if move {
		if err := os.Remove(path); err != nil {
			return "", err
		}
	}
	s.logger.Infof(providers.TypeTrack, "Archived report %s -> %s", path, dest)
	return dest, nil
}

// CompileMaster merges every report workbook into one master workbook,
// one sheet per user, and returns its path.
func (s *Store) CompileMaster() (string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.xlsx"))
	if err != nil {
		return "", err
	}

	master := excelize.NewFile()
	defer master.Close()

	for _, path := range paths {
		if filepath.Base(path) == masterReportName {
			continue
		}
		if err := appendReportSheet(master, path); err != nil {
			s.logger.Warnf(providers.TypeTrack, "Skipping %s in master report: %s", path, err)
			continue
		}
	}

	if len(master.GetSheetList()) > 1 {
		if err := master.DeleteSheet("Sheet1"); err != nil {
			return "", err
		}
	}

	masterPath := filepath.Join(s.dir, masterReportName)
	if err := master.SaveAs(masterPath); err != nil {
		return "", err
	}
	return masterPath, nil
}

func appendReportSheet(master *excelize.File, path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), ".xlsx")
	if len(name) > 30 {
		name = name[:30]
	}
	if _, err := master.NewSheet(name); err != nil {
		return err
	}

	for i, row := range rows {
		for j, val := range row {
			if val == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := master.SetCellValue(name, cell, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
