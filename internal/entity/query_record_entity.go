package entity

import (
	"time"

	"github.com/google/uuid"
)

// SnippetLength caps the stored text of each cited source.
const SnippetLength = 300

type QuerySource struct {
	DocumentId   uuid.UUID
	DocumentName string
	TextSnippet  string
	SourceNumber int
}

type QueryRecord struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Question  string
	Sources   []QuerySource
	CreatedAt time.Time
}

// Snippet returns at most SnippetLength runes of text.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLength {
		return text
	}
	return string(runes[:SnippetLength])
}
