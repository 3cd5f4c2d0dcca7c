package unitofwork

import (
	"context"

	"docintel-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	QueryRecordRepository() contract.QueryRecordRepository
}
