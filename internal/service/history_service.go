package service

import (
	"context"

	"docintel-be/internal/dto"
	"docintel-be/internal/repository/specification"
	"docintel-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const DefaultHistoryLimit = 50

type IHistoryService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.QueryHistoryResponse, error)
}

type historyService struct {
	uowFactory unitofwork.RepositoryFactory
	limit      int
}

func NewHistoryService(uowFactory unitofwork.RepositoryFactory, limit int) IHistoryService {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &historyService{
		uowFactory: uowFactory,
		limit:      limit,
	}
}

// GetAll returns the user's most recent query records, newest first.
func (s *historyService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.QueryHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	records, err := uow.QueryRecordRepository().FindAll(ctx,
		specification.QueryRecordOwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: s.limit},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.QueryHistoryResponse, 0, len(records))
	for _, r := range records {
		sources := make([]dto.QuerySourceResponse, len(r.Sources))
		for i, src := range r.Sources {
			sources[i] = dto.QuerySourceResponse{
				DocumentId:   src.DocumentId,
				DocumentName: src.DocumentName,
				TextSnippet:  src.TextSnippet,
				SourceNumber: src.SourceNumber,
			}
		}
		res = append(res, &dto.QueryHistoryResponse{
			Id:        r.Id,
			Question:  r.Question,
			Sources:   sources,
			CreatedAt: r.CreatedAt,
		})
	}
	return res, nil
}
