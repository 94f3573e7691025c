package handlers

import (
	"net/http"

	"github.com/St1cky1/command-center/internal/usecase"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type HistoryHandler struct {
	history *usecase.HistoryService
	logger  *log.Logger
}

func NewHistoryHandler(history *usecase.HistoryService, logger *log.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

func (h *HistoryHandler) TaskHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.TaskHistory(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
