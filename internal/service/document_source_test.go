package service

import (
	"context"
	"testing"

	"docintel-be/internal/entity"
	"docintel-be/internal/repository/specification"
	"docintel-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSource_ListReady(t *testing.T) {
	uow, factory := newFakeUow()
	owner := uuid.New()
	ready := &entity.Document{Id: uuid.New(), UserId: owner, OriginalName: "a.pdf", StoredFilename: "owner/a.pdf", MimeType: "application/pdf", Status: rag.StatusReady}
	uow.docs.docs = []*entity.Document{
		ready,
		{Id: uuid.New(), UserId: owner, Status: rag.StatusProcessing},
		{Id: uuid.New(), UserId: uuid.New(), Status: rag.StatusReady},
	}

	docs, err := NewDocumentSource(factory).ListReady(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, ready.Metadata(), docs[0])
	assert.Contains(t, uow.docs.lastSpecs, specification.OrderBy{Field: "created_at"})
}

func TestDocumentSource_PropagatesRepositoryError(t *testing.T) {
	uow, factory := newFakeUow()
	uow.docs.err = errBoom

	_, err := NewDocumentSource(factory).ListReady(context.Background(), uuid.New())

	assert.ErrorIs(t, err, errBoom)
}
