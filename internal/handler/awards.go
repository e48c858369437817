package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/rondoninha/leitura/internal/bible"
	"github.com/rondoninha/leitura/internal/store"
)

// AwardsHandler serves the finished-books page: one badge per book each
// reader has completed, plus each reader's progress through the whole Bible.
type AwardsHandler struct {
	completions *store.CompletionStore
	readings    *store.ReadingStore
	users       *store.UserStore
	logger      *slog.Logger
}

func NewAwardsHandler(cs *store.CompletionStore, rs *store.ReadingStore, us *store.UserStore, logger *slog.Logger) *AwardsHandler {
	return &AwardsHandler{completions: cs, readings: rs, users: us, logger: logger}
}

type awardRow struct {
	UserName   string   `json:"user_name"`
	Books      []string `json:"books"`
	BibleRead  int      `json:"bible_chapters_read"`
	BibleTotal int      `json:"bible_chapters_total"`
	BiblePct   float64  `json:"bible_pct"`
}

// List returns one row per user who has finished at least one book or read
// at least one chapter, book badges in canonical order.
func (h *AwardsHandler) List(w http.ResponseWriter, r *http.Request) {
	booksByUser, err := h.completions.BooksByUser()
	if err != nil {
		h.logger.Error("list completions", "error", err)
		writeJSON(w, http.StatusOK, []awardRow{})
		return
	}

	users, err := h.users.List()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeJSON(w, http.StatusOK, []awardRow{})
		return
	}

	total := bible.TotalChapters()
	rows := []awardRow{}
	for _, u := range users {
		read, err := h.readings.CountDistinctChapters(u.ID)
		if err != nil {
			h.logger.Warn("count chapters", "user", u.Name, "error", err)
			continue
		}
		books := booksByUser[u.Name]
		if read == 0 && len(books) == 0 {
			continue
		}
		bible.SortCanonical(books)
		if books == nil {
			books = []string{}
		}
		rows = append(rows, awardRow{
			UserName:   u.Name,
			Books:      books,
			BibleRead:  read,
			BibleTotal: total,
			BiblePct:   float64(read) / float64(total) * 100,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UserName < rows[j].UserName })
	writeJSON(w, http.StatusOK, rows)
}
