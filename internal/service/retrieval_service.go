package service

import (
	"context"
	"strings"
	"time"

	"docintel-be/internal/dto"
	"docintel-be/internal/pkg/logger"
	"docintel-be/pkg/rag"
	"docintel-be/pkg/rag/search"

	"github.com/google/uuid"
)

const retrievalModule = "RETRIEVAL_SERVICE"

type IRetrievalService interface {
	Query(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error)
}

type retrievalService struct {
	retriever        search.Retriever
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewRetrievalService(
	retriever search.Retriever,
	publisherService IPublisherService,
	sysLogger logger.ILogger,
) IRetrievalService {
	return &retrievalService{
		retriever:        retriever,
		publisherService: publisherService,
		logger:           sysLogger,
	}
}

func (s *retrievalService) Query(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	fragments, err := s.retriever.Query(ctx, userId, req.Question, req.K, req.DocumentId)
	if err != nil {
		stage, _ := rag.StageOf(err)
		s.logger.Error(retrievalModule, "Query failed", map[string]interface{}{
			"user_id": userId.String(),
			"stage":   string(stage),
			"error":   err.Error(),
		})
		return nil, err
	}

	question := strings.TrimSpace(req.Question)

	// Publish failures are logged, never returned.
	err = s.publisherService.SendMessage(ctx, dto.QueryAnsweredMessage{
		UserId:     userId,
		Question:   question,
		Sources:    fragments,
		AnsweredAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn(retrievalModule, "Failed to publish query history", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}

	return &dto.QueryResponse{
		Question: question,
		Sources:  fragments,
	}, nil
}
