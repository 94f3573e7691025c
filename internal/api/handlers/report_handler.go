package handlers

import (
	"net/http"
	"strconv"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	log "github.com/sirupsen/logrus"
)

// ReportHandler - отчеты за день
type ReportHandler struct {
	reports *usecase.ReportService
	logger  *log.Logger
}

func NewReportHandler(reports *usecase.ReportService, logger *log.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req entity.SubmitReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.reports.Submit(r.Context(), currentUser(r), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *ReportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, h.logger, &entity.ValidationError{Fields: []string{"limit"}})
			return
		}
		limit = n
	}

	reports, err := h.reports.ListMine(r.Context(), currentUser(r), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// ListTeam - отчеты ассистентов для руководителя, ?date=YYYY-MM-DD
func (h *ReportHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	var date *entity.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := entity.ParseDate(raw)
		if err != nil {
			writeError(w, h.logger, &entity.ValidationError{Fields: []string{"date"}})
			return
		}
		date = &d
	}

	reports, err := h.reports.ListForExecutive(r.Context(), currentUser(r), date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
