package handlers

import (
	"net/http"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	log "github.com/sirupsen/logrus"
)

type UserHandler struct {
	users  *usecase.UserService
	logger *log.Logger
}

func NewUserHandler(users *usecase.UserService, logger *log.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type assistantStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		writeError(w, h.logger, entity.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req entity.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), currentUser(r), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Executive - чья доска открыта у пользователя
func (h *UserHandler) Executive(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Executive(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListAssistants(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAssistants(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) SetAssistantStatus(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req assistantStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.IsActive == nil {
		writeError(w, h.logger, &entity.ValidationError{Fields: []string{"is_active"}})
		return
	}

	user, err := h.users.SetAssistantActive(r.Context(), currentUser(r), id, *req.IsActive)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
