package rag

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the ingestion lifecycle state of an uploaded document.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusReady, StatusError:
		return true
	}
	return false
}

// DocumentMetadata is the read-only view of a stored document.
// Owned and mutated by the ingestion side; retrieval never writes it.
type DocumentMetadata struct {
	Id            uuid.UUID
	OwnerId       uuid.UUID
	Name          string
	StoredLocator string
	MimeType      string
	Status        DocumentStatus
}

// Chunk is a bounded segment of one document's text.
type Chunk struct {
	Text         string
	Index        int
	DocumentId   uuid.UUID
	DocumentName string
}

// Entry pairs a chunk with its embedding.
type Entry struct {
	Chunk  Chunk
	Vector []float32
}

// Index is the per-user, per-request collection of embedded chunks.
// Entries keep document list order, then chunk order.
type Index struct {
	UserId  uuid.UUID
	Entries []Entry
	BuiltAt time.Time
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.Entries)
}

// Dimension returns the vector dimension, or 0 for an empty index.
func (i *Index) Dimension() int {
	if i.Len() == 0 {
		return 0
	}
	return len(i.Entries[0].Vector)
}

// DocumentIds lists the distinct source documents in entry order.
func (i *Index) DocumentIds() []uuid.UUID {
	if i == nil {
		return nil
	}
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, e := range i.Entries {
		if _, ok := seen[e.Chunk.DocumentId]; ok {
			continue
		}
		seen[e.Chunk.DocumentId] = struct{}{}
		ids = append(ids, e.Chunk.DocumentId)
	}
	return ids
}

type SearchResult struct {
	Chunk Chunk
	Score float64
	Rank  int // 1-based
}

// Fragment is one ranked retrieval row handed to answer generation.
type Fragment struct {
	Text         string    `json:"text"`
	DocumentId   uuid.UUID `json:"document_id"`
	DocumentName string    `json:"document_name"`
	SourceNumber int       `json:"source_number"`
	Score        float64   `json:"score"`
}
