package entity

import "time"

type Attachment struct {
	ID          string    `json:"id"`
	OwnerID     int       `json:"owner_id"`
	Name        string    `json:"name"`
	FilePath    string    `json:"-"`
	FileSize    int       `json:"file_size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type UploadAttachmentRequest struct {
	OwnerID     int
	Name        string
	Data        []byte
	ContentType string
}
