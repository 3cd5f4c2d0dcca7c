package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentStatusChanged = "DOCUMENT_STATUS_CHANGED"
	DocumentDeleted       = "DOCUMENT_DELETED"
)

// NewDocumentStatusChanged is emitted whenever a document enters a new
// lifecycle status. Consumers holding per-user state keyed on the ready set
// should drop it for user_id.
func NewDocumentStatusChanged(documentId, userId uuid.UUID, status string) BaseEvent {
	return BaseEvent{
		Type: DocumentStatusChanged,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"user_id":     userId.String(),
			"status":      status,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentDeleted(documentId, userId uuid.UUID) BaseEvent {
	return BaseEvent{
		Type: DocumentDeleted,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"user_id":     userId.String(),
		},
		OccurredAt: time.Now(),
	}
}

// UserIdOf reads the user_id field of an event payload.
func UserIdOf(e Event) (uuid.UUID, bool) {
	raw, ok := e.Payload()["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
