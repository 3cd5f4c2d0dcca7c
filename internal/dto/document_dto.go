package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id           uuid.UUID  `json:"id"`
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	Size         int64      `json:"size"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type UpdateDocumentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=uploaded processing ready error"`
}
