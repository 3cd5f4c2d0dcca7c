package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"docintel-be/internal/dto"
	"docintel-be/internal/entity"
	"docintel-be/internal/pkg/logger"
	"docintel-be/internal/repository/specification"
	"docintel-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "QUERY_ANSWERED"

func newPubSub(t *testing.T, blockUntilAck bool) *gochannel.GoChannel {
	t.Helper()
	ps := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: blockUntilAck}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ps.Close() })
	return ps
}

func TestHistoryConsumer_PersistsPublishedQuery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uow, factory := newFakeUow()
	ps := newPubSub(t, false)
	require.NoError(t, NewHistoryConsumerService(ps, testTopic, factory, logger.NewNopLogger()).Consume(ctx))

	userId, docId := uuid.New(), uuid.New()
	long := strings.Repeat("x", 400)
	retriever := &stubRetriever{fragments: []rag.Fragment{
		{Text: long, DocumentId: docId, DocumentName: "a.txt", SourceNumber: 1},
		{Text: "short", DocumentId: docId, DocumentName: "a.txt", SourceNumber: 2},
	}}
	svc := NewRetrievalService(retriever, NewPublisherService(testTopic, ps), logger.NewNopLogger())

	_, err := svc.Query(ctx, userId, &dto.QueryRequest{Question: "what?"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(uow.records.saved()) == 1 }, time.Second, 10*time.Millisecond)
	record := uow.records.saved()[0]
	assert.Equal(t, userId, record.UserId)
	assert.Equal(t, "what?", record.Question)
	require.Len(t, record.Sources, 2)
	assert.Len(t, record.Sources[0].TextSnippet, entity.SnippetLength)
	assert.Equal(t, "short", record.Sources[1].TextSnippet)
	assert.Equal(t, 2, record.Sources[1].SourceNumber)
	assert.Equal(t, 1, uow.commits())
}

func TestHistoryConsumer_AcksBadPayloadAndSaveFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uow, factory := newFakeUow()
	uow.records.err = errBoom
	ps := newPubSub(t, true)
	require.NoError(t, NewHistoryConsumerService(ps, testTopic, factory, logger.NewNopLogger()).Consume(ctx))

	good, _ := json.Marshal(dto.QueryAnsweredMessage{UserId: uuid.New(), Question: "q"})

	// gochannel blocks Publish until the message is acked.
	require.NoError(t, ps.Publish(testTopic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	require.NoError(t, ps.Publish(testTopic, message.NewMessage(watermill.NewUUID(), good)))

	assert.Empty(t, uow.records.saved())
	assert.Equal(t, 0, uow.commits())
}

func TestHistoryService_GetAll(t *testing.T) {
	uow, factory := newFakeUow()
	userId := uuid.New()
	uow.records.records = []*entity.QueryRecord{{
		Id:       uuid.New(),
		UserId:   userId,
		Question: "q",
		Sources:  []entity.QuerySource{{DocumentName: "a.txt", TextSnippet: "s", SourceNumber: 1}},
	}}

	res, err := NewHistoryService(factory, 0).GetAll(context.Background(), userId)

	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a.txt", res[0].Sources[0].DocumentName)
	assert.Contains(t, uow.records.lastSpecs, specification.Pagination{Limit: DefaultHistoryLimit})
	assert.Contains(t, uow.records.lastSpecs, specification.OrderBy{Field: "created_at", Desc: true})
	assert.Contains(t, uow.records.lastSpecs, specification.QueryRecordOwnedByUser{UserID: userId})
}
