package entity

import (
	"time"

	"docintel-be/pkg/rag"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	OriginalName   string
	StoredFilename string
	MimeType       string
	Size           int64
	Status         rag.DocumentStatus
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// Metadata is the read-only view handed to the retrieval core.
func (d *Document) Metadata() rag.DocumentMetadata {
	return rag.DocumentMetadata{
		Id:            d.Id,
		OwnerId:       d.UserId,
		Name:          d.OriginalName,
		StoredLocator: d.StoredFilename,
		MimeType:      d.MimeType,
		Status:        d.Status,
	}
}
