package service

import (
	"context"
	"time"

	"docintel-be/internal/dto"
	"docintel-be/internal/entity"
	"docintel-be/internal/pkg/logger"
	"docintel-be/internal/repository/specification"
	"docintel-be/internal/repository/unitofwork"
	"docintel-be/pkg/events"
	"docintel-be/pkg/rag"

	"github.com/google/uuid"
)

const documentModule = "DOCUMENT_SERVICE"

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IDocumentService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error)
	UpdateStatus(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateDocumentStatusRequest) (*dto.DocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	logger         logger.ILogger
}

// NewDocumentService accepts a nil eventPublisher when NATS is disabled.
func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher EventPublisher,
	sysLogger logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
	}
}

func (s *documentService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.DocumentOwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, toDocumentResponse(d))
	}
	return res, nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// UpdateStatus is the hook the ingestion pipeline calls when a document moves
// through its lifecycle.
func (s *documentService) UpdateStatus(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateDocumentStatusRequest) (*dto.DocumentResponse, error) {
	status := rag.DocumentStatus(req.Status)
	if !status.IsValid() {
		return nil, rag.ErrInvalidArgument
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	doc, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	if doc.Status == status {
		return toDocumentResponse(doc), nil
	}

	now := time.Now()
	doc.Status = status
	doc.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewDocumentStatusChanged(doc.Id, doc.UserId, string(status)))

	return toDocumentResponse(doc), nil
}

// Delete removes one of the caller's documents. The stored file is left to
// the ingestion side.
func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	doc, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.DocumentRepository().Delete(ctx, doc.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.NewDocumentDeleted(doc.Id, doc.UserId))
	return nil
}

// publish is best effort; the change is already committed.
func (s *documentService) publish(ctx context.Context, event events.BaseEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn(documentModule, "Failed to publish document event", map[string]interface{}{
			"type":        event.EventType(),
			"document_id": event.Payload()["document_id"],
			"error":       err.Error(),
		})
	}
}

func (s *documentService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Document, error) {
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.DocumentOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:           d.Id,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		Size:         d.Size,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
