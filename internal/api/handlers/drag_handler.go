package handlers

import (
	"net/http"

	"github.com/St1cky1/command-center/internal/board"
	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	log "github.com/sirupsen/logrus"
)

// DragHandler - жест перетаскивания карточки, по событию на запрос
type DragHandler struct {
	board  *usecase.BoardService
	logger *log.Logger
}

func NewDragHandler(board *usecase.BoardService, logger *log.Logger) *DragHandler {
	return &DragHandler{board: board, logger: logger}
}

type beginDragRequest struct {
	TaskID       string            `json:"task_id"`
	SourceColumn entity.TaskStatus `json:"source_column"`
	SourceIndex  int               `json:"source_index"`
}

type hoverRequest struct {
	Index int `json:"index"`
}

type leaveRequest struct {
	RelatedInside bool `json:"related_inside"`
}

type dropRequest struct {
	TargetColumn  entity.TaskStatus `json:"target_column"`
	FallbackIndex int               `json:"fallback_index"`
}

type dragStateResponse struct {
	Active bool        `json:"active"`
	Move   *board.Move `json:"move,omitempty"`
}

func (h *DragHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req beginDragRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.TaskID == "" {
		writeError(w, h.logger, &entity.ValidationError{Fields: []string{"task_id"}})
		return
	}

	if err := h.board.BeginDrag(currentUser(r), req.TaskID, req.SourceColumn, req.SourceIndex); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DragHandler) Hover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.board.Hover(currentUser(r), req.Index); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DragHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.board.LeaveColumn(currentUser(r), req.RelatedInside); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Drop завершает жест; индекс берется из последнего hover, иначе fallback_index
func (h *DragHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	assignments, err := h.board.Drop(r.Context(), currentUser(r), req.TargetColumn, req.FallbackIndex)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *DragHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.board.EndDrag(currentUser(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DragHandler) State(w http.ResponseWriter, r *http.Request) {
	move, ok := h.board.DragState(currentUser(r))
	if !ok {
		writeJSON(w, http.StatusOK, dragStateResponse{})
		return
	}
	writeJSON(w, http.StatusOK, dragStateResponse{Active: true, Move: &move})
}
