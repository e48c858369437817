package importer

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rondoninha/leitura/internal/database"
	"github.com/rondoninha/leitura/internal/logging"
	"github.com/rondoninha/leitura/internal/store"
)

func setupImporter(t *testing.T) (*Importer, *store.PlanStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	plans := store.NewPlanStore(db)
	return New(plans, logging.Setup("error")), plans, db
}

// sheet builds an xlsx workbook with a header row followed by the given
// data rows.
func sheet(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	all := append([][]string{{"Date", "Book", "Chapters"}}, rows...)
	for i, row := range all {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", ref, cell); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportCreatesPlan(t *testing.T) {
	im, plans, _ := setupImporter(t)

	r := sheet(t, [][]string{
		{"2026-01-01", "Ruth", "1-2"},
		{"02/01/2026", "Ruth", "3-4"},
		{"2026-01-03", "Jonah", "1"},
	})

	result, err := im.Import(r, "Plano 2026")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.EntriesAdded != 3 {
		t.Errorf("entries = %d, want 3", result.EntriesAdded)
	}
	if result.TotalChapters != 5 {
		t.Errorf("chapters = %d, want 5", result.TotalChapters)
	}

	p, err := plans.GetByName("Plano 2026")
	if err != nil || p == nil {
		t.Fatalf("plan not created: %v", err)
	}
	rows, err := plans.ListEntryRows()
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("stored rows = %d, want 3", len(rows))
	}
}

func TestImportRejectsBadRows(t *testing.T) {
	im, plans, _ := setupImporter(t)

	r := sheet(t, [][]string{
		{"2026-01-01", "Ruth", "1-2"},
		{"2026-01-02", "Atlantis", "1"},     // unknown book
		{"2026-01-03", "Ruth", "threeish"},  // malformed range
		{"first of march", "Jonah", "1"},    // bad date
		{"2026-01-04", "Jonah", "3-1"},      // reversed range covers nothing
	})

	result, err := im.Import(r, "Plano 2026")
	if err == nil {
		t.Fatal("expected import to fail")
	}
	if len(result.RowErrors) != 4 {
		t.Fatalf("row errors = %v, want 4", result.RowErrors)
	}
	if !strings.Contains(result.RowErrors[0].Error(), "Atlantis") {
		t.Errorf("first error = %v, want unknown book", result.RowErrors[0])
	}

	// Nothing may be written on failure.
	p, err := plans.GetByName("Plano 2026")
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if p != nil {
		t.Error("failed import created the plan anyway")
	}
}

func TestImportRowFailureWritesNothing(t *testing.T) {
	im, plans, db := setupImporter(t)

	// Ruth passes the catalog check but its row is gone from the books
	// table, so the write phase fails after the Genesis entry.
	if _, err := db.Exec(`DELETE FROM books WHERE name = 'Ruth'`); err != nil {
		t.Fatalf("remove book: %v", err)
	}

	r := sheet(t, [][]string{
		{"2026-01-01", "Genesis", "1-3"},
		{"2026-01-02", "Ruth", "1-2"},
	})

	if _, err := im.Import(r, "Plano 2026"); err == nil {
		t.Fatal("expected import to fail")
	}

	p, err := plans.GetByName("Plano 2026")
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if p != nil {
		t.Error("failed import left the plan behind")
	}
	var entries int
	if err := db.QueryRow(`SELECT COUNT(*) FROM plan_entries`).Scan(&entries); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if entries != 0 {
		t.Errorf("failed import left %d entries behind", entries)
	}
}

func TestImportDuplicatePlan(t *testing.T) {
	im, plans, _ := setupImporter(t)
	if _, err := plans.Create("Plano 2026"); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	r := sheet(t, [][]string{{"2026-01-01", "Ruth", "1"}})
	if _, err := im.Import(r, "Plano 2026"); err == nil {
		t.Error("expected duplicate plan to be rejected")
	}
}

func TestImportEmptySheet(t *testing.T) {
	im, _, _ := setupImporter(t)

	r := sheet(t, nil)
	if _, err := im.Import(r, "Plano 2026"); err == nil {
		t.Error("expected empty spreadsheet to be rejected")
	}
}
