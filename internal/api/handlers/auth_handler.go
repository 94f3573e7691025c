package handlers

import (
	"net/http"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	log "github.com/sirupsen/logrus"
)

type AuthHandler struct {
	auth   *usecase.AuthService
	logger *log.Logger
}

func NewAuthHandler(auth *usecase.AuthService, logger *log.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SignUp регистрирует пользователя и сразу открывает сессию
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req entity.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	session, err := h.auth.SignUp(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req entity.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	session, err := h.auth.SignIn(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.RefreshToken == "" {
		writeError(w, h.logger, &entity.ValidationError{Fields: []string{"refresh_token"}})
		return
	}

	session, err := h.auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SignOut отзывает все refresh токены пользователя
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), currentUser(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
