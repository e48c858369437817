package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rondoninha/leitura/internal/database"
	"github.com/rondoninha/leitura/internal/logging"
	"github.com/rondoninha/leitura/internal/store"
)

func TestAwardsList(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	books := store.NewBookStore(db)
	plans := store.NewPlanStore(db)
	readings := store.NewReadingStore(db)
	completions := store.NewCompletionStore(db)

	u, err := users.Create("Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.Create("Idle"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	p, err := plans.Create("Short books")
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Obadiah (1 chapter) then the first chapter of Jonah.
	obadiah, err := books.GetByName("Obadiah")
	if err != nil || obadiah == nil {
		t.Fatalf("book Obadiah missing: %v", err)
	}
	jonah, err := books.GetByName("Jonah")
	if err != nil || jonah == nil {
		t.Fatalf("book Jonah missing: %v", err)
	}
	if err := plans.AddEntry(p.ID, obadiah.ID, day, "1"); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if err := plans.AddEntry(p.ID, jonah.ID, day.AddDate(0, 0, 1), "1-4"); err != nil {
		t.Fatalf("add entry: %v", err)
	}

	if _, _, err := readings.RecordReading(u.ID, p.ID, obadiah.ID, 1); err != nil {
		t.Fatalf("record Obadiah: %v", err)
	}
	if _, _, err := readings.RecordReading(u.ID, p.ID, jonah.ID, 1); err != nil {
		t.Fatalf("record Jonah 1: %v", err)
	}

	h := NewAwardsHandler(completions, readings, users, logging.Setup("error"))
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/api/awards", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var rows []awardRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The idle user has no readings and no badges, so only Alice appears.
	if len(rows) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	row := rows[0]
	if row.UserName != "Alice" {
		t.Errorf("user = %q", row.UserName)
	}
	if len(row.Books) != 1 || row.Books[0] != "Obadiah" {
		t.Errorf("badges = %v, want [Obadiah]", row.Books)
	}
	if row.BibleRead != 2 || row.BibleTotal != 1189 {
		t.Errorf("bible progress = %d/%d, want 2/1189", row.BibleRead, row.BibleTotal)
	}
}
