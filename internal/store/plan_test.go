package store

import (
	"testing"
	"time"
)

func TestPlanCreateAndGet(t *testing.T) {
	ts := setupTestDB(t)

	p, err := ts.plans.Create("Plano 2026")
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := ts.plans.Create("Plano 2026"); err == nil {
		t.Error("duplicate plan name should be rejected")
	}

	got, err := ts.plans.GetByName("Plano 2026")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got == nil || got.ID != p.ID {
		t.Errorf("GetByName returned %+v", got)
	}

	missing, err := ts.plans.GetByName("nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing plan, got %+v", missing)
	}
}

func TestListEntryRows(t *testing.T) {
	ts := setupTestDB(t)

	p, err := ts.plans.Create("Plano 2026")
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	ruth, err := ts.books.GetByName("Ruth")
	if err != nil || ruth == nil {
		t.Fatalf("book Ruth missing: %v", err)
	}
	jonah, err := ts.books.GetByName("Jonah")
	if err != nil || jonah == nil {
		t.Fatalf("book Jonah missing: %v", err)
	}

	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := ts.plans.AddEntry(p.ID, ruth.ID, day, "1-2"); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if err := ts.plans.AddEntry(p.ID, jonah.ID, day.AddDate(0, 0, 1), "1"); err != nil {
		t.Fatalf("add entry: %v", err)
	}

	rows, err := ts.plans.ListEntryRows()
	if err != nil {
		t.Fatalf("list entry rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.PlanName != "Plano 2026" || first.BookName != "Ruth" || first.Chapters != "1-2" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if !first.ReadingDate.Equal(day) {
		t.Errorf("reading date = %v, want %v", first.ReadingDate, day)
	}
}
