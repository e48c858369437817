package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rondoninha/leitura/internal/bible"
	"github.com/rondoninha/leitura/internal/plan"
	"github.com/rondoninha/leitura/internal/store"
)

// Expected spreadsheet layout, one row per assignment:
//
//	A: date (YYYY-MM-DD or DD/MM/YYYY)
//	B: book name, matching the canon catalog exactly
//	C: chapter range ("5" or "1-3")
//
// The first row is treated as a header and skipped.

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// RowError describes why one spreadsheet row was rejected.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Result summarizes an import run.
type Result struct {
	PlanName      string
	EntriesAdded  int
	TotalChapters int
	RowErrors     []RowError
}

// Importer loads reading plans from xlsx spreadsheets. Unlike the runtime
// expansion, the importer is strict: a malformed row fails the whole import
// so a typo never becomes a silently shorter plan.
type Importer struct {
	plans  *store.PlanStore
	logger *slog.Logger
}

func New(ps *store.PlanStore, logger *slog.Logger) *Importer {
	return &Importer{plans: ps, logger: logger}
}

type parsedRow struct {
	date     time.Time
	book     string
	chapters string
	count    int
}

// Import reads a spreadsheet and creates the named plan with its entries.
// It fails without writing anything if the plan already exists or any row
// is invalid.
func (im *Importer) Import(r io.Reader, planName string) (*Result, error) {
	planName = strings.TrimSpace(planName)
	if planName == "" {
		return nil, fmt.Errorf("plan name is required")
	}

	existing, err := im.plans.GetByName(planName)
	if err != nil {
		return nil, fmt.Errorf("look up plan: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("plan %q already exists", planName)
	}

	rows, rowErrs, err := im.parse(r)
	if err != nil {
		return nil, err
	}
	if len(rowErrs) > 0 {
		return &Result{PlanName: planName, RowErrors: rowErrs}, fmt.Errorf("%d invalid rows", len(rowErrs))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet has no entries")
	}

	entries := make([]store.EntryInput, 0, len(rows))
	total := 0
	for _, row := range rows {
		entries = append(entries, store.EntryInput{
			BookName:    row.book,
			ReadingDate: row.date,
			Chapters:    row.chapters,
		})
		total += row.count
	}

	// One transaction for the plan and every entry: a failed row leaves no
	// plan behind.
	if _, err := im.plans.CreateWithEntries(planName, entries); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	result := &Result{PlanName: planName, EntriesAdded: len(entries), TotalChapters: total}

	im.logger.Info("plan imported",
		"plan", planName,
		"entries", result.EntriesAdded,
		"chapters", result.TotalChapters)
	return result, nil
}

// parse validates every data row, collecting per-row errors instead of
// stopping at the first.
func (im *Importer) parse(r io.Reader) ([]parsedRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("spreadsheet has no sheets")
	}
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}

	var rows []parsedRow
	var rowErrs []RowError
	for i, cells := range raw {
		if i == 0 {
			continue
		}
		rowNum := i + 1
		if isBlank(cells) {
			continue
		}
		if len(cells) < 3 {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "expected date, book, and chapters"})
			continue
		}

		date, err := parseDate(strings.TrimSpace(cells[0]))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		bookName := strings.TrimSpace(cells[1])
		if _, ok := bible.Lookup(bookName); !ok {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: fmt.Sprintf("unknown book %q", bookName)})
			continue
		}

		token := strings.TrimSpace(cells[2])
		chapters, err := plan.ParseChapterRange(token)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		if len(chapters) == 0 {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: fmt.Sprintf("range %q covers no chapters", token)})
			continue
		}

		rows = append(rows, parsedRow{date: date, book: bookName, chapters: token, count: len(chapters)})
	}
	return rows, rowErrs, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
