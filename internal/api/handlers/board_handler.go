package handlers

import (
	"net/http"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type BoardHandler struct {
	board       *usecase.BoardService
	attachments *usecase.AttachmentService
	logger      *log.Logger
}

func NewBoardHandler(board *usecase.BoardService, attachments *usecase.AttachmentService, logger *log.Logger) *BoardHandler {
	return &BoardHandler{
		board:       board,
		attachments: attachments,
		logger:      logger,
	}
}

type boardResponse struct {
	Variant entity.BoardVariant `json:"variant"`
	Columns []entity.Column     `json:"columns"`
	Tasks   []entity.Task       `json:"tasks"`
}

type attachRequest struct {
	AttachmentID string `json:"attachment_id"`
}

// GetBoard - колонки и все задачи доски, состояние перечитывается из базы
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.board.FetchAll(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, boardResponse{
		Variant: h.board.Variant(),
		Columns: h.board.Columns(),
		Tasks:   tasks,
	})
}

func (h *BoardHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Columns())
}

func (h *BoardHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := entity.TaskStatus(r.URL.Query().Get("status"))

	tasks, err := h.board.ListTasks(r.Context(), currentUser(r), status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask создаем новую задачу
func (h *BoardHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.board.CreateTask(r.Context(), currentUser(r), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *BoardHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.board.GetTask(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *BoardHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.board.UpdateTask(r.Context(), currentUser(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *BoardHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.board.DeleteTask(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveTask - перенос в конец другой колонки
func (h *BoardHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var req entity.MoveTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	msg, err := h.board.MoveToColumn(r.Context(), currentUser(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *BoardHandler) ReorderTask(w http.ResponseWriter, r *http.Request) {
	var req entity.ReorderTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	assignments, err := h.board.Reorder(r.Context(), currentUser(r), chi.URLParam(r, "id"), req.TargetIndex, req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *BoardHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req entity.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.board.AddComment(r.Context(), currentUser(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *BoardHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	var req entity.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.board.EditComment(r.Context(), currentUser(r), chi.URLParam(r, "id"), chi.URLParam(r, "commentID"), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *BoardHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	task, err := h.board.DeleteComment(r.Context(), currentUser(r), chi.URLParam(r, "id"), chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// AttachFile прикрепляет к задаче файл, загруженный через /attachments
func (h *BoardHandler) AttachFile(w http.ResponseWriter, r *http.Request) {
	var req attachRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.AttachmentID == "" {
		writeError(w, h.logger, &entity.ValidationError{Fields: []string{"attachment_id"}})
		return
	}

	user := currentUser(r)
	att, err := h.attachments.Get(r.Context(), user, req.AttachmentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.board.AttachFile(r.Context(), user, chi.URLParam(r, "id"), att)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *BoardHandler) DetachFile(w http.ResponseWriter, r *http.Request) {
	task, err := h.board.DetachFile(r.Context(), currentUser(r), chi.URLParam(r, "id"), chi.URLParam(r, "attachmentID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
