package service

import (
	"context"
	"encoding/json"

	"docintel-be/internal/dto"
	"docintel-be/internal/entity"
	"docintel-be/internal/pkg/logger"
	"docintel-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const historyModule = "HISTORY_CONSUMER"

type IHistoryConsumerService interface {
	Consume(ctx context.Context) error
}

type historyConsumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewHistoryConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	sysLogger logger.ILogger,
) IHistoryConsumerService {
	return &historyConsumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     sysLogger,
	}
}

func (cs *historyConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a lost history row is preferable to a
// redelivery loop.
func (cs *historyConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.QueryAnsweredMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(historyModule, "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	record := &entity.QueryRecord{
		Id:        uuid.New(),
		UserId:    payload.UserId,
		Question:  payload.Question,
		Sources:   make([]entity.QuerySource, len(payload.Sources)),
		CreatedAt: payload.AnsweredAt,
	}
	for i, f := range payload.Sources {
		record.Sources[i] = entity.QuerySource{
			DocumentId:   f.DocumentId,
			DocumentName: f.DocumentName,
			TextSnippet:  entity.Snippet(f.Text),
			SourceNumber: f.SourceNumber,
		}
	}

	if err := cs.save(ctx, record); err != nil {
		cs.logger.Error(historyModule, "Failed to save query record", map[string]interface{}{
			"user_id": payload.UserId.String(),
			"error":   err.Error(),
		})
		return
	}

	cs.logger.Debug(historyModule, "Query record saved", map[string]interface{}{
		"user_id": payload.UserId.String(),
		"sources": len(record.Sources),
	})
}

func (cs *historyConsumerService) save(ctx context.Context, record *entity.QueryRecord) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.QueryRecordRepository().Create(ctx, record); err != nil {
		return err
	}
	return uow.Commit()
}
