package handlers

import (
	"net/http"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	log "github.com/sirupsen/logrus"
)

type ReferenceHandler struct {
	references *usecase.ReferenceService
	logger     *log.Logger
}

func NewReferenceHandler(references *usecase.ReferenceService, logger *log.Logger) *ReferenceHandler {
	return &ReferenceHandler{references: references, logger: logger}
}

func (h *ReferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entity.ReferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ref, err := h.references.Create(r.Context(), currentUser(r), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

func (h *ReferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	refs, err := h.references.List(r.Context(), currentUser(r), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

func (h *ReferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ref, err := h.references.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (h *ReferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req entity.ReferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ref, err := h.references.Update(r.Context(), currentUser(r), id, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (h *ReferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.references.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
