package entity

import (
	"errors"
	"strings"
)

var (
	ErrForbidden          = errors.New("forbidden: access denied")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrTaskNotFound       = errors.New("task not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrReferenceNotFound  = errors.New("reference not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidTaskData    = errors.New("invalid task data")
	ErrInvalidUserData    = errors.New("invalid user data")
	ErrInvalidStatus      = errors.New("status does not belong to the board")
	ErrUnauthenticated    = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrLoadFailed         = errors.New("failed to load tasks")
	ErrEmptyAudio         = errors.New("audio is empty")
	ErrNoActiveDrag       = errors.New("no task is being dragged")
	ErrFileTooLarge       = errors.New("file size exceeds limit")
)

// ValidationError - ошибка проверки формы до любого удаленного вызова
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}
