package service

import (
	"context"

	"docintel-be/internal/repository/specification"
	"docintel-be/internal/repository/unitofwork"
	"docintel-be/pkg/rag"
	"docintel-be/pkg/rag/index"

	"github.com/google/uuid"
)

// documentSource serves the index builder from the documents table.
type documentSource struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDocumentSource(uowFactory unitofwork.RepositoryFactory) index.DocumentSource {
	return &documentSource{uowFactory: uowFactory}
}

func (s *documentSource) ListReady(ctx context.Context, ownerId uuid.UUID) ([]rag.DocumentMetadata, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.DocumentOwnedByUser{UserID: ownerId},
		specification.ByStatus{Status: rag.StatusReady},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]rag.DocumentMetadata, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Metadata())
	}
	return out, nil
}
