package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rondoninha/leitura/internal/cache"
	"github.com/rondoninha/leitura/internal/database"
	"github.com/rondoninha/leitura/internal/logging"
	"github.com/rondoninha/leitura/internal/plan"
	"github.com/rondoninha/leitura/internal/store"
)

func setupDashboard(t *testing.T) (*DashboardHandler, *store.ReadingStore, func() (int64, int64, int64)) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	books := store.NewBookStore(db)
	plans := store.NewPlanStore(db)
	readings := store.NewReadingStore(db)

	pc := cache.NewPlanCache(func() (map[string]*plan.Plan, error) {
		rows, err := plans.ListEntryRows()
		if err != nil {
			return nil, err
		}
		return plan.BuildPlans(rows), nil
	})

	seed := func() (int64, int64, int64) {
		u, err := users.Create("Alice")
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		p, err := plans.Create("Ruth in 2 days")
		if err != nil {
			t.Fatalf("create plan: %v", err)
		}
		ruth, err := books.GetByName("Ruth")
		if err != nil || ruth == nil {
			t.Fatalf("book Ruth missing: %v", err)
		}
		// Both entries in the past so the full plan counts toward today's
		// target regardless of when the test runs.
		day := time.Now().UTC().AddDate(0, 0, -10)
		if err := plans.AddEntry(p.ID, ruth.ID, day, "1-2"); err != nil {
			t.Fatalf("add entry: %v", err)
		}
		if err := plans.AddEntry(p.ID, ruth.ID, day.AddDate(0, 0, 1), "3-4"); err != nil {
			t.Fatalf("add entry: %v", err)
		}
		return u.ID, p.ID, ruth.ID
	}

	h := NewDashboardHandler(readings, pc, time.UTC, logging.Setup("error"))
	return h, readings, seed
}

func TestDashboardNoData(t *testing.T) {
	h, _, seed := setupDashboard(t)
	seed()

	rec := httptest.NewRecorder()
	h.Show(rec, httptest.NewRequest("GET", "/api/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var out dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.HasData {
		t.Error("empty board should report has_data=false")
	}
	if out.Summary != nil || out.Rows != nil {
		t.Errorf("empty board carried data: %+v", out)
	}
}

func TestDashboardWithReadings(t *testing.T) {
	h, readings, seed := setupDashboard(t)
	userID, planID, bookID := seed()

	for _, c := range []int{1, 2} {
		if _, _, err := readings.RecordReading(userID, planID, bookID, c); err != nil {
			t.Fatalf("record chapter %d: %v", c, err)
		}
	}

	rec := httptest.NewRecorder()
	h.Show(rec, httptest.NewRequest("GET", "/api/dashboard", nil))

	var out dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.HasData || out.Summary == nil {
		t.Fatalf("expected data: %+v", out)
	}
	if out.Summary.TotalReaders != 1 || out.Summary.TotalChaptersRead != 2 {
		t.Errorf("summary = %+v", out.Summary)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("rows = %+v", out.Rows)
	}
	row := out.Rows[0]
	if row.UserName != "Alice" || row.ChaptersRead != 2 || row.PlanTotal != 4 {
		t.Errorf("row = %+v", row)
	}
	// The whole plan is in the past, so two of four chapters is behind.
	if row.Status != plan.StatusBehind {
		t.Errorf("status = %q, want %q", row.Status, plan.StatusBehind)
	}
}
