package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rondoninha/leitura/internal/auth"
	"github.com/rondoninha/leitura/internal/cache"
	"github.com/rondoninha/leitura/internal/model"
	"github.com/rondoninha/leitura/internal/store"
	"github.com/rondoninha/leitura/internal/websocket"
)

const maxQuestionLen = 2000

// QuestionHandler serves the anonymous question box and its answers.
type QuestionHandler struct {
	questions *store.QuestionStore
	cache     *cache.QuestionCache
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewQuestionHandler(qs *store.QuestionStore, qc *cache.QuestionCache, hub *websocket.Hub, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{questions: qs, cache: qc, hub: hub, logger: logger}
}

func (h *QuestionHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// List returns all questions, newest first, each with its answers.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.cache.Get()
	if err != nil {
		h.logger.Error("list questions", "error", err)
		questions = nil
	}
	if questions == nil {
		questions = []model.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

type askRequest struct {
	Text string `json:"text"`
}

// Ask records a question. Questions carry no author, even though the caller
// is signed in.
func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question text is required"})
		return
	}
	if len(req.Text) > maxQuestionLen {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is too long"})
		return
	}

	q, err := h.questions.Insert(req.Text)
	if err != nil {
		h.logger.Error("insert question", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save question"})
		return
	}

	h.cache.Invalidate()
	h.broadcast(websocket.NewMessage("question", "created", q.ID, nil))
	writeJSON(w, http.StatusCreated, q)
}

type answerRequest struct {
	Text string `json:"text"`
}

// Answer records a reply to a question. Answers are signed, unlike questions.
func (h *QuestionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid question id"})
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "answer text is required"})
		return
	}

	q, err := h.questions.GetByID(questionID)
	if err != nil {
		h.logger.Error("get question", "id", questionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up question"})
		return
	}
	if q == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "question not found"})
		return
	}

	a, err := h.questions.InsertAnswer(questionID, auth.UserID(r.Context()), req.Text)
	if err != nil {
		h.logger.Error("insert answer", "question_id", questionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save answer"})
		return
	}

	h.cache.Invalidate()
	h.broadcast(websocket.NewMessage("answer", "created", a.ID, map[string]any{"question_id": questionID}))
	writeJSON(w, http.StatusCreated, a)
}
