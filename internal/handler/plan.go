package handler

import (
	"log/slog"
	"net/http"

	"github.com/rondoninha/leitura/internal/cache"
	"github.com/rondoninha/leitura/internal/importer"
	"github.com/rondoninha/leitura/internal/websocket"
)

const maxPlanUpload = 4 << 20 // 4 MiB

// PlanHandler handles plan administration, currently just the xlsx upload.
type PlanHandler struct {
	importer *importer.Importer
	cache    *cache.PlanCache
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewPlanHandler(im *importer.Importer, pc *cache.PlanCache, hub *websocket.Hub, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{importer: im, cache: pc, hub: hub, logger: logger}
}

type importResponse struct {
	Plan          string   `json:"plan"`
	EntriesAdded  int      `json:"entries_added"`
	TotalChapters int      `json:"total_chapters"`
	RowErrors     []string `json:"row_errors,omitempty"`
}

// Import creates a plan from an uploaded spreadsheet. The multipart form
// carries the file under "file" and the plan name under "name".
func (h *PlanHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPlanUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid upload"})
		return
	}
	planName := r.FormValue("name")

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	result, err := h.importer.Import(file, planName)
	if err != nil {
		resp := importResponse{Plan: planName}
		if result != nil {
			for _, re := range result.RowErrors {
				resp.RowErrors = append(resp.RowErrors, re.Error())
			}
		}
		h.logger.Warn("plan import rejected", "plan", planName, "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      err.Error(),
			"row_errors": resp.RowErrors,
		})
		return
	}

	h.cache.Invalidate()
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("plan", "created", 0, map[string]any{"plan": result.PlanName}))
	}
	writeJSON(w, http.StatusCreated, importResponse{
		Plan:          result.PlanName,
		EntriesAdded:  result.EntriesAdded,
		TotalChapters: result.TotalChapters,
	})
}
