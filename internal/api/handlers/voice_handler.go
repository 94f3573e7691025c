package handlers

import (
	"errors"
	"net/http"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	log "github.com/sirupsen/logrus"
)

// предел Whisper API
const maxAudioBytes = 25 << 20

type VoiceHandler struct {
	voice  *usecase.VoiceService
	logger *log.Logger
}

func NewVoiceHandler(voice *usecase.VoiceService, logger *log.Logger) *VoiceHandler {
	return &VoiceHandler{voice: voice, logger: logger}
}

// CreateTask - задача из голосовой заметки, поле формы "audio"
func (h *VoiceHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, entity.ErrFileTooLarge)
			return
		}
		writeError(w, h.logger, &entity.ValidationError{Fields: []string{"audio"}})
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["audio"]
	if len(files) != 1 {
		writeError(w, h.logger, &entity.ValidationError{Fields: []string{"audio"}})
		return
	}
	audio, err := readPart(files[0], maxAudioBytes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if len(audio) > maxAudioBytes {
		writeError(w, h.logger, entity.ErrFileTooLarge)
		return
	}

	result, err := h.voice.CreateTask(r.Context(), currentUser(r), audio, files[0].Filename)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
