package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rondoninha/leitura/internal/auth"
	"github.com/rondoninha/leitura/internal/cache"
	"github.com/rondoninha/leitura/internal/plan"
	"github.com/rondoninha/leitura/internal/store"
	"github.com/rondoninha/leitura/internal/websocket"
)

// ReadingHandler serves the "my reading" flow: plan selection, the day's
// assignments with per-chapter read state, the next-unread cursor, and the
// toggle that records a chapter as read.
type ReadingHandler struct {
	plans    *store.PlanStore
	books    *store.BookStore
	readings *store.ReadingStore
	cache    *cache.PlanCache
	hub      *websocket.Hub
	loc      *time.Location
	logger   *slog.Logger
}

func NewReadingHandler(ps *store.PlanStore, bs *store.BookStore, rs *store.ReadingStore, pc *cache.PlanCache, hub *websocket.Hub, loc *time.Location, logger *slog.Logger) *ReadingHandler {
	return &ReadingHandler{plans: ps, books: bs, readings: rs, cache: pc, hub: hub, loc: loc, logger: logger}
}

func (h *ReadingHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *ReadingHandler) now() time.Time {
	return time.Now().In(h.loc)
}

type planSummary struct {
	Name          string `json:"name"`
	TotalChapters int    `json:"total_chapters"`
	EntryCount    int    `json:"entry_count"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

// ListPlans returns a summary of every plan with at least one entry.
func (h *ReadingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.cache.Get()
	if err != nil {
		h.logger.Error("load plans", "error", err)
		writeJSON(w, http.StatusOK, []planSummary{})
		return
	}

	summaries := make([]planSummary, 0, len(plans))
	for _, p := range plans {
		summaries = append(summaries, planSummary{
			Name:          p.Name,
			TotalChapters: p.TotalChapters,
			EntryCount:    len(p.Entries),
			StartDate:     p.Entries[0].Date.Format("2006-01-02"),
			EndDate:       p.Entries[len(p.Entries)-1].Date.Format("2006-01-02"),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	writeJSON(w, http.StatusOK, summaries)
}

// LastActivePlan returns the plan of the signed-in user's most recent
// reading, so the page can preselect it.
func (h *ReadingHandler) LastActivePlan(w http.ResponseWriter, r *http.Request) {
	name, err := h.readings.LastActivePlanName(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Warn("last active plan", "error", err)
		name = ""
	}
	writeJSON(w, http.StatusOK, map[string]string{"plan": name})
}

// NextUnreadDate resolves the reader's cursor within a plan: the first
// scheduled date that still has unread chapters.
func (h *ReadingHandler) NextUnreadDate(w http.ResponseWriter, r *http.Request) {
	planName := r.PathValue("name")
	plans, err := h.cache.Get()
	if err != nil {
		h.logger.Error("load plans", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"date": h.now().Format("2006-01-02")})
		return
	}

	read := h.userReadSet(r, planName)
	next := plan.NextUnreadDate(plans[planName], read, h.now())
	writeJSON(w, http.StatusOK, map[string]string{"date": next.Format("2006-01-02")})
}

// userReadSet loads the signed-in user's read set for a plan, degrading to
// empty on any failure.
func (h *ReadingHandler) userReadSet(r *http.Request, planName string) plan.ReadSet {
	p, err := h.plans.GetByName(planName)
	if err != nil || p == nil {
		return plan.ReadSet{}
	}
	readings, err := h.readings.ListByUserPlan(auth.UserID(r.Context()), p.ID)
	if err != nil {
		h.logger.Warn("list readings", "plan", planName, "error", err)
		return plan.ReadSet{}
	}
	return plan.NewReadSet(readings)
}

type chapterState struct {
	Chapter int  `json:"chapter"`
	Read    bool `json:"read"`
}

type dayAssignment struct {
	Book     string         `json:"book"`
	Chapters string         `json:"chapters"`
	State    []chapterState `json:"state"`
}

// Day returns the assignments scheduled for one date with the signed-in
// user's per-chapter read flags. An empty list means nothing scheduled.
func (h *ReadingHandler) Day(w http.ResponseWriter, r *http.Request) {
	planName := r.PathValue("name")
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	plans, err := h.cache.Get()
	if err != nil {
		h.logger.Error("load plans", "error", err)
		writeJSON(w, http.StatusOK, []dayAssignment{})
		return
	}
	p, ok := plans[planName]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}

	read := h.userReadSet(r, planName)
	assignments := []dayAssignment{}
	for _, e := range p.EntriesOn(date) {
		a := dayAssignment{Book: e.Book, Chapters: e.Chapters, State: []chapterState{}}
		for _, c := range plan.ExpandChapters(e.Chapters) {
			a.State = append(a.State, chapterState{Chapter: c, Read: read.Contains(e.Book, c)})
		}
		assignments = append(assignments, a)
	}
	writeJSON(w, http.StatusOK, assignments)
}

type recordRequest struct {
	Plan    string `json:"plan"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

// Record marks a chapter as read. Duplicate submissions are idempotent;
// the response says whether this call inserted the reading and whether it
// finished the book within the plan.
func (h *ReadingHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Plan = strings.TrimSpace(req.Plan)
	req.Book = strings.TrimSpace(req.Book)
	if req.Plan == "" || req.Book == "" || req.Chapter < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plan, book, and a positive chapter are required"})
		return
	}

	p, err := h.plans.GetByName(req.Plan)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up plan"})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}

	book, err := h.books.GetByName(req.Book)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up book"})
		return
	}
	if book == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "book not found"})
		return
	}

	userID := auth.UserID(r.Context())
	inserted, newlyCompleted, err := h.readings.RecordReading(userID, p.ID, book.ID, req.Chapter)
	if err != nil {
		h.logger.Error("record reading", "user_id", userID, "plan", req.Plan, "book", req.Book, "chapter", req.Chapter, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record reading"})
		return
	}

	if inserted {
		h.broadcast(websocket.NewMessage("reading", "recorded", userID, map[string]any{
			"plan": req.Plan, "book": req.Book, "chapter": req.Chapter,
		}))
	}
	if newlyCompleted {
		h.broadcast(websocket.NewMessage("book", "completed", userID, map[string]any{
			"plan": req.Plan, "book": req.Book,
		}))
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"inserted":        inserted,
		"newly_completed": newlyCompleted,
	})
}
