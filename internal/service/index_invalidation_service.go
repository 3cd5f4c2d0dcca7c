package service

import (
	"context"
	"fmt"

	"docintel-be/internal/pkg/logger"
	"docintel-be/pkg/events"
	pktNats "docintel-be/pkg/nats"

	"github.com/google/uuid"
)

const invalidationModule = "INDEX_INVALIDATION"

// EventSubscriber is satisfied by *nats.Subscriber.
type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

type IndexEvicter interface {
	Invalidate(userId uuid.UUID)
}

type IIndexInvalidationService interface {
	Start() error
	Handle(ctx context.Context, event events.Event) error
}

type indexInvalidationService struct {
	subscriber EventSubscriber
	cache      IndexEvicter
	logger     logger.ILogger
}

func NewIndexInvalidationService(subscriber EventSubscriber, cache IndexEvicter, sysLogger logger.ILogger) IIndexInvalidationService {
	return &indexInvalidationService{
		subscriber: subscriber,
		cache:      cache,
		logger:     sysLogger,
	}
}

// invalidationEvents change a user's ready set.
var invalidationEvents = []string{events.DocumentStatusChanged, events.DocumentDeleted}

// Start gives this process its own ephemeral consumer per subject. Each
// replica holds its own cache, so every replica must see every event.
func (s *indexInvalidationService) Start() error {
	for _, eventType := range invalidationEvents {
		subject := fmt.Sprintf("events.%s", eventType)
		if err := s.subscriber.Subscribe(subject, "", s.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle evicts the cached index of the event's owner. Events without a
// usable user_id are dropped so they are not redelivered forever.
func (s *indexInvalidationService) Handle(ctx context.Context, event events.Event) error {
	userId, ok := events.UserIdOf(event)
	if !ok {
		s.logger.Warn(invalidationModule, "Event without user_id", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}

	s.cache.Invalidate(userId)
	s.logger.Debug(invalidationModule, "Index evicted", map[string]interface{}{
		"user_id": userId.String(),
	})
	return nil
}
