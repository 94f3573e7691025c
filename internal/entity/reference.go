package entity

import "time"

// Reference - запись справочной библиотеки
type Reference struct {
	ID           int       `json:"id"`
	OwnerID      int       `json:"owner_id"`
	Title        string    `json:"title"`
	URL          string    `json:"url,omitempty"`
	Category     string    `json:"category"`
	Notes        string    `json:"notes"`
	AttachmentID *string   `json:"attachment_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ReferenceRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=255"`
	URL      string `json:"url" validate:"omitempty,url"`
	Category string `json:"category" validate:"max=100"`
	Notes    string `json:"notes"`
	// необязательный файл, загруженный через /attachments
	AttachmentID *string `json:"attachment_id"`
}
