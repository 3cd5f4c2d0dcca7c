package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuerySource struct {
	DocumentId   uuid.UUID `json:"document_id"`
	DocumentName string    `json:"document_name"`
	TextSnippet  string    `json:"text_snippet"`
	SourceNumber int       `json:"source_number"`
}

type QueryRecord struct {
	Id        uuid.UUID                        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID                        `gorm:"type:uuid;not null;index"`
	Question  string                           `gorm:"type:text;not null"`
	Sources   datatypes.JSONSlice[QuerySource] `gorm:"type:jsonb"`
	CreatedAt time.Time                        `gorm:"autoCreateTime;index"`
}

func (QueryRecord) TableName() string {
	return "query_records"
}
