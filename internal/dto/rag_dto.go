package dto

import (
	"time"

	"docintel-be/pkg/rag"

	"github.com/google/uuid"
)

type QueryRequest struct {
	Question   string     `json:"question" validate:"required,max=2000"`
	DocumentId *uuid.UUID `json:"document_id,omitempty"`
	K          int        `json:"k" validate:"min=0,max=100"`
}

type QueryResponse struct {
	Question string         `json:"question"`
	Sources  []rag.Fragment `json:"sources"`
}

type QuerySourceResponse struct {
	DocumentId   uuid.UUID `json:"document_id"`
	DocumentName string    `json:"document_name"`
	TextSnippet  string    `json:"text_snippet"`
	SourceNumber int       `json:"source_number"`
}

type QueryHistoryResponse struct {
	Id        uuid.UUID             `json:"id"`
	Question  string                `json:"question"`
	Sources   []QuerySourceResponse `json:"sources"`
	CreatedAt time.Time             `json:"created_at"`
}

// QueryAnsweredMessage is published on the in-process bus after a
// successful retrieval.
type QueryAnsweredMessage struct {
	UserId     uuid.UUID      `json:"user_id"`
	Question   string         `json:"question"`
	Sources    []rag.Fragment `json:"sources"`
	AnsweredAt time.Time      `json:"answered_at"`
}
