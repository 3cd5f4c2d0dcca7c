package contract

import (
	"context"

	"docintel-be/internal/entity"
	"docintel-be/internal/repository/specification"
)

type QueryRecordRepository interface {
	Create(ctx context.Context, record *entity.QueryRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error)
}
