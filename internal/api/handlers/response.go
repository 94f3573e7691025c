package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/St1cky1/command-center/internal/api/middleware"
	"github.com/St1cky1/command-center/internal/entity"
	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ErrorStatus - HTTP статус для ошибки сервиса
func ErrorStatus(err error) int {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrUnauthenticated), errors.Is(err, entity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrCommentNotFound),
		errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrReportNotFound),
		errors.Is(err, entity.ErrReferenceNotFound),
		errors.Is(err, entity.ErrAttachmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrEmailTaken), errors.Is(err, entity.ErrNoActiveDrag):
		return http.StatusConflict
	case errors.Is(err, entity.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrInvalidTaskData),
		errors.Is(err, entity.ErrInvalidUserData),
		errors.Is(err, entity.ErrNoFieldsToUpdate),
		errors.Is(err, entity.ErrEmptyAudio):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrLoadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError отвечает {"error": ...}; внутренние ошибки логируются и не уходят клиенту
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := ErrorStatus(err)
	resp := errorResponse{Error: err.Error()}

	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		resp.Error = "internal server error"
	}
	writeJSON(w, status, resp)
}

// ErrorWriter - writeError для middleware
func ErrorWriter(logger *log.Logger) func(w http.ResponseWriter, err error) {
	return func(w http.ResponseWriter, err error) {
		writeError(w, logger, err)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return &entity.ValidationError{Fields: []string{"body"}}
	}
	return nil
}

func currentUser(r *http.Request) *entity.User {
	return middleware.UserFromContext(r.Context())
}

func intParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, &entity.ValidationError{Fields: []string{name}}
	}
	return id, nil
}
