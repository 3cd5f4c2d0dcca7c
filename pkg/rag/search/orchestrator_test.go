package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"docintel-be/pkg/chunker"
	"docintel-be/pkg/embedding"
	"docintel-be/pkg/embedding/mocks"
	"docintel-be/pkg/extract"
	"docintel-be/pkg/rag"
	"docintel-be/pkg/rag/index"
	"docintel-be/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var keywords = []string{"alice", "engineer", "software", "profession", "banana", "fruit", "venus", "planet"}

// keywordEmbedder maps text onto keyword counts, plus a constant bias so no
// vector is zero.
type keywordEmbedder struct {
	mu        sync.Mutex
	docCalls  int
	lastBatch []string
}

func embedKeywords(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(keywords)+1)
	for i, kw := range keywords {
		vec[i] = float32(strings.Count(lower, kw))
	}
	vec[len(keywords)] = 0.1
	return vec
}

func (k *keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	k.mu.Lock()
	k.docCalls++
	k.lastBatch = append([]string(nil), texts...)
	k.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedKeywords(t)
	}
	return out, nil
}

func (k *keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return embedKeywords(text), nil
}

type memStore map[string]string

func (m memStore) Read(_ context.Context, locator string) ([]byte, error) {
	text, ok := m[locator]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return []byte(text), nil
}

type staticSource []rag.DocumentMetadata

func (s staticSource) ListReady(context.Context, uuid.UUID) ([]rag.DocumentMetadata, error) {
	return s, nil
}

func textDoc(owner uuid.UUID, name string) rag.DocumentMetadata {
	return rag.DocumentMetadata{
		Id:            uuid.New(),
		OwnerId:       owner,
		Name:          name,
		StoredLocator: name,
		MimeType:      "text/plain",
		Status:        rag.StatusReady,
	}
}

func newPipeline(docs []rag.DocumentMetadata, files memStore, embedder embedding.EmbeddingProvider, opts ...Option) *Orchestrator {
	builder := index.NewBuilder(staticSource(docs), extract.New(files), chunker.New(), embedder)
	return NewOrchestrator(builder, embedder, opts...)
}

func TestQuery_SingleDocumentAnswer(t *testing.T) {
	user := uuid.New()
	doc := textDoc(user, "notes.txt")
	files := memStore{"notes.txt": "Alice is a software engineer with 5 years experience."}

	fragments, err := newPipeline([]rag.DocumentMetadata{doc}, files, &keywordEmbedder{}).
		Query(context.Background(), user, "What is Alice's profession?", 1, nil)

	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Contains(t, fragments[0].Text, "software engineer")
	assert.Equal(t, doc.Id, fragments[0].DocumentId)
	assert.Equal(t, "notes.txt", fragments[0].DocumentName)
	assert.Equal(t, 1, fragments[0].SourceNumber)
}

func TestQuery_NoReadyDocuments(t *testing.T) {
	embedder := new(mocks.MockEmbeddingProvider)

	fragments, err := newPipeline(nil, memStore{}, embedder).
		Query(context.Background(), uuid.New(), "anything?", 5, nil)

	assert.Nil(t, fragments)
	assert.ErrorIs(t, err, rag.ErrNoReadyDocuments)
	embedder.AssertNotCalled(t, "EmbedDocuments", mock.Anything, mock.Anything)
	embedder.AssertNotCalled(t, "EmbedQuery", mock.Anything, mock.Anything)
}

func TestQuery_DocumentFilterRestrictsResults(t *testing.T) {
	user := uuid.New()
	first := textDoc(user, "alice.txt")
	second := textDoc(user, "fruit.txt")
	files := memStore{
		"alice.txt": "Alice the software engineer. Alice writes software as an engineer.",
		"fruit.txt": "A banana is a fruit.\n\nVenus is a planet.",
	}
	embedder := &keywordEmbedder{}
	o := newPipeline([]rag.DocumentMetadata{first, second}, files, embedder)

	unfiltered, err := o.Query(context.Background(), user, "Alice software engineer", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, unfiltered)
	assert.Equal(t, first.Id, unfiltered[0].DocumentId)

	filtered, err := o.Query(context.Background(), user, "Alice software engineer", 5, &second.Id)
	require.NoError(t, err)
	require.NotEmpty(t, filtered)
	for i, f := range filtered {
		assert.Equal(t, second.Id, f.DocumentId)
		assert.Equal(t, i+1, f.SourceNumber)
	}
	assert.Equal(t, 2, embedder.docCalls)
}

func TestQuery_ProviderFailure(t *testing.T) {
	user := uuid.New()
	doc := textDoc(user, "notes.txt")
	files := memStore{"notes.txt": "some text"}
	providerErr := &embedding.EmbeddingError{Provider: "huggingface", StatusCode: 500, Err: errors.New("internal")}

	t.Run("document batch", func(t *testing.T) {
		embedder := new(mocks.MockEmbeddingProvider)
		embedder.On("EmbedDocuments", mock.Anything, mock.Anything).Return(nil, providerErr)

		fragments, err := newPipeline([]rag.DocumentMetadata{doc}, files, embedder).
			Query(context.Background(), user, "question", 3, nil)

		assert.Nil(t, fragments)
		assert.True(t, embedding.IsEmbeddingError(err))
		embedder.AssertNotCalled(t, "EmbedQuery", mock.Anything, mock.Anything)
	})

	t.Run("query embedding", func(t *testing.T) {
		embedder := new(mocks.MockEmbeddingProvider)
		embedder.On("EmbedDocuments", mock.Anything, mock.Anything).Return([][]float32{{1, 0}}, nil)
		embedder.On("EmbedQuery", mock.Anything, "question").Return(nil, providerErr)

		fragments, err := newPipeline([]rag.DocumentMetadata{doc}, files, embedder).
			Query(context.Background(), user, "question", 3, nil)

		assert.Nil(t, fragments)
		assert.True(t, embedding.IsEmbeddingError(err))
		stage, _ := rag.StageOf(err)
		assert.Equal(t, rag.StageEmbed, stage)
	})
}

func TestQuery_InvalidQuestion(t *testing.T) {
	embedder := new(mocks.MockEmbeddingProvider)
	o := newPipeline(nil, memStore{}, embedder)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := o.Query(context.Background(), uuid.New(), q, 5, nil)
		assert.ErrorIs(t, err, rag.ErrInvalidArgument)
	}
	embedder.AssertNotCalled(t, "EmbedQuery", mock.Anything, mock.Anything)
}

func TestQuery_QueryDimensionMismatch(t *testing.T) {
	user := uuid.New()
	doc := textDoc(user, "notes.txt")
	embedder := new(mocks.MockEmbeddingProvider)
	embedder.On("EmbedDocuments", mock.Anything, mock.Anything).Return([][]float32{{1, 0}}, nil)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)

	_, err := newPipeline([]rag.DocumentMetadata{doc}, memStore{"notes.txt": "text"}, embedder).
		Query(context.Background(), user, "question", 3, nil)

	assert.ErrorIs(t, err, rag.ErrIndexIntegrity)
}

type fakeBuilder struct {
	calls int
	idx   *rag.Index
}

func (f *fakeBuilder) Build(context.Context, uuid.UUID) (*rag.Index, error) {
	f.calls++
	return f.idx, nil
}

type mapCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*rag.Index
	gens    map[uuid.UUID]uint64
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[uuid.UUID]*rag.Index{}, gens: map[uuid.UUID]uint64{}}
}

func (m *mapCache) Get(userId uuid.UUID) (*rag.Index, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.entries[userId]
	return idx, ok
}

func (m *mapCache) Generation(userId uuid.UUID) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[userId]
}

func (m *mapCache) SetIfUnchanged(userId uuid.UUID, gen uint64, idx *rag.Index) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[userId] != gen {
		return false
	}
	m.entries[userId] = idx
	return true
}

func (m *mapCache) Invalidate(userId uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[userId]++
	delete(m.entries, userId)
}

// gatedBuilder blocks inside Build until release is closed.
type gatedBuilder struct {
	started chan struct{}
	release chan struct{}
	idx     *rag.Index
}

func (g *gatedBuilder) Build(context.Context, uuid.UUID) (*rag.Index, error) {
	g.started <- struct{}{}
	<-g.release
	return g.idx, nil
}

func TestQuery_DefaultAndMaxK(t *testing.T) {
	user := uuid.New()
	doc := uuid.New()
	idx := &rag.Index{UserId: user}
	for i := 0; i < 20; i++ {
		idx.Entries = append(idx.Entries, rag.Entry{Chunk: rag.Chunk{Text: "c", DocumentId: doc, Index: i}, Vector: []float32{1}})
	}
	embedder := new(mocks.MockEmbeddingProvider)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1}, nil)

	o := NewOrchestrator(&fakeBuilder{idx: idx}, embedder, WithTopK(0, 8))

	fragments, err := o.Query(context.Background(), user, "q", 0, nil)
	require.NoError(t, err)
	assert.Len(t, fragments, DefaultTopK)

	fragments, err = o.Query(context.Background(), user, "q", 50, nil)
	require.NoError(t, err)
	assert.Len(t, fragments, 8)
}

func TestQuery_CacheReusesIndex(t *testing.T) {
	user := uuid.New()
	idx := &rag.Index{UserId: user, Entries: []rag.Entry{{Chunk: rag.Chunk{Text: "c"}, Vector: []float32{1}}}}
	builder := &fakeBuilder{idx: idx}
	embedder := new(mocks.MockEmbeddingProvider)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	cache := newMapCache()

	o := NewOrchestrator(builder, embedder, WithCache(cache))
	for i := 0; i < 3; i++ {
		_, err := o.Query(context.Background(), user, "q", 1, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, builder.calls)
	cached, ok := cache.Get(user)
	require.True(t, ok)
	assert.Same(t, idx, cached)
}

func TestQuery_InvalidationDuringBuildIsNotUndone(t *testing.T) {
	user := uuid.New()
	idx := &rag.Index{UserId: user, Entries: []rag.Entry{{Chunk: rag.Chunk{Text: "c"}, Vector: []float32{1}}}}
	builder := &gatedBuilder{started: make(chan struct{}, 1), release: make(chan struct{}), idx: idx}
	embedder := new(mocks.MockEmbeddingProvider)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	cache := newMapCache()
	o := NewOrchestrator(builder, embedder, WithCache(cache))

	done := make(chan error, 1)
	go func() {
		_, err := o.Query(context.Background(), user, "q", 1, nil)
		done <- err
	}()

	<-builder.started
	cache.Invalidate(user)
	close(builder.release)
	require.NoError(t, <-done)

	_, ok := cache.Get(user)
	assert.False(t, ok, "an index built before the invalidation must not be cached")
}

func TestQuery_NoCacheRebuildsEveryTime(t *testing.T) {
	user := uuid.New()
	idx := &rag.Index{UserId: user, Entries: []rag.Entry{{Chunk: rag.Chunk{Text: "c"}, Vector: []float32{1}}}}
	builder := &fakeBuilder{idx: idx}
	embedder := new(mocks.MockEmbeddingProvider)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1}, nil)

	o := NewOrchestrator(builder, embedder)
	for i := 0; i < 3; i++ {
		_, err := o.Query(context.Background(), user, "q", 1, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, builder.calls)
}
