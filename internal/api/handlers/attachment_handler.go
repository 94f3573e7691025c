package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const (
	maxUploadFiles     = 10
	maxFileBytes       = 10 << 20
	multipartMemory    = 32 << 20
	downloadChunkBytes = 64 * 1024
)

type AttachmentHandler struct {
	attachments *usecase.AttachmentService
	logger      *log.Logger
}

func NewAttachmentHandler(attachments *usecase.AttachmentService, logger *log.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, logger: logger}
}

type uploadResponse struct {
	Attachments []*entity.Attachment `json:"attachments"`
	Errors      string               `json:"errors,omitempty"`
}

// Upload принимает multipart форму с одним или несколькими полями "file"
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadFiles*(maxFileBytes+1)+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, entity.ErrFileTooLarge)
			return
		}
		writeError(w, h.logger, &entity.ValidationError{Fields: []string{"file"}})
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 || len(files) > maxUploadFiles {
		writeError(w, h.logger, &entity.ValidationError{Fields: []string{"file"}})
		return
	}

	reqs := make([]*entity.UploadAttachmentRequest, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh, maxFileBytes)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		reqs = append(reqs, &entity.UploadAttachmentRequest{
			Name:        fh.Filename,
			Data:        data,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	user := currentUser(r)
	if len(reqs) == 1 {
		att, err := h.attachments.Upload(r.Context(), user, reqs[0])
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, uploadResponse{Attachments: []*entity.Attachment{att}})
		return
	}

	results, err := h.attachments.UploadMany(r.Context(), user, reqs)
	uploaded := make([]*entity.Attachment, 0, len(results))
	for _, att := range results {
		if att != nil {
			uploaded = append(uploaded, att)
		}
	}
	if len(uploaded) == 0 && err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := uploadResponse{Attachments: uploaded}
	if err != nil {
		resp.Errors = err.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AttachmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	att, err := h.attachments.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

// Download отдает содержимое файла потоком
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := chi.URLParam(r, "id")

	// метаданные до заголовков, чтобы ошибки доступа ушли с правильным статусом
	att, err := h.attachments.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(att.FileSize))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.Name}))
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	dataChan, errChan := h.attachments.DownloadStream(r.Context(), user, id, downloadChunkBytes)
	for chunk := range dataChan {
		if _, err := w.Write(chunk); err != nil {
			h.logger.WithField("attachment_id", id).WithError(err).Warn("download aborted")
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if err := <-errChan; err != nil {
		h.logger.WithField("attachment_id", id).WithError(err).Error("download failed")
	}
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attachments.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readPart читает часть формы; на один байт больше лимита, чтобы сервис увидел превышение
func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if fh.Size > limit {
		return nil, entity.ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}
