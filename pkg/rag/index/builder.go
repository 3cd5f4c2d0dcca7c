package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docintel-be/internal/pkg/logger"
	"docintel-be/pkg/chunker"
	"docintel-be/pkg/embedding"
	"docintel-be/pkg/extract"
	"docintel-be/pkg/rag"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const logModule = "INDEX_BUILDER"

const (
	DefaultWorkers      = 4
	DefaultEmbedTimeout = 60 * time.Second
)

// DocumentSource lists the documents a user may search.
type DocumentSource interface {
	ListReady(ctx context.Context, ownerId uuid.UUID) ([]rag.DocumentMetadata, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, locator, mimeType string) (string, error)
}

type TextSplitter interface {
	Split(text string) ([]string, error)
}

// Builder assembles a user's ready documents into an in-memory index.
type Builder struct {
	documents    DocumentSource
	extractor    TextExtractor
	splitter     TextSplitter
	embedder     embedding.EmbeddingProvider
	logger       logger.ILogger
	workers      int
	embedTimeout time.Duration
	tracer       trace.Tracer
}

type Option func(*Builder)

func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithEmbedTimeout bounds the batched embedding call. Zero leaves only the
// caller's deadline.
func WithEmbedTimeout(d time.Duration) Option {
	return func(b *Builder) {
		if d >= 0 {
			b.embedTimeout = d
		}
	}
}

func WithLogger(l logger.ILogger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

func NewBuilder(
	documents DocumentSource,
	extractor TextExtractor,
	splitter TextSplitter,
	embedder embedding.EmbeddingProvider,
	opts ...Option,
) *Builder {
	b := &Builder{
		documents:    documents,
		extractor:    extractor,
		splitter:     splitter,
		embedder:     embedder,
		logger:       logger.NewNopLogger(),
		workers:      DefaultWorkers,
		embedTimeout: DefaultEmbedTimeout,
		tracer:       otel.Tracer("docintel-be/pkg/rag/index"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build lists the user's ready documents, extracts and chunks them in
// parallel, embeds every chunk in one batched call and pairs the results.
// Unreadable or empty documents are skipped with a warning.
func (b *Builder) Build(ctx context.Context, userId uuid.UUID) (*rag.Index, error) {
	ctx, span := b.tracer.Start(ctx, "index.Build", trace.WithAttributes(attribute.String("user.id", userId.String())))
	defer span.End()

	idx, err := b.build(ctx, userId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("index.entries", idx.Len()))
	return idx, nil
}

func (b *Builder) build(ctx context.Context, userId uuid.UUID) (*rag.Index, error) {
	docs, err := b.listReady(ctx, userId)
	if err != nil {
		return nil, err
	}

	slots := make([][]rag.Chunk, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, doc := range docs {
		g.Go(func() error {
			chunks, err := b.prepare(gctx, userId, doc)
			if err != nil {
				return err
			}
			slots[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var chunks []rag.Chunk
	for _, s := range slots {
		chunks = append(chunks, s...)
	}
	if len(chunks) == 0 {
		return nil, rag.NewPipelineError(rag.StageExtract, userId, rag.ErrNoExtractableContent)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := b.embed(ctx, texts)
	if err != nil {
		return nil, rag.NewPipelineError(rag.StageEmbed, userId, err)
	}
	if err := checkVectors(len(texts), vectors); err != nil {
		b.logger.Error(logModule, "Embedding response failed integrity check", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return nil, rag.NewPipelineError(rag.StageEmbed, userId, err)
	}

	entries := make([]rag.Entry, len(chunks))
	for i := range chunks {
		entries[i] = rag.Entry{Chunk: chunks[i], Vector: vectors[i]}
	}

	b.logger.Info(logModule, "Index built", map[string]interface{}{
		"user_id":   userId.String(),
		"documents": len(docs),
		"entries":   len(entries),
		"dimension": len(vectors[0]),
	})

	return &rag.Index{UserId: userId, Entries: entries, BuiltAt: time.Now()}, nil
}

// listReady returns only documents that are ready and owned by userId, even
// if the source hands back more.
func (b *Builder) listReady(ctx context.Context, userId uuid.UUID) ([]rag.DocumentMetadata, error) {
	listed, err := b.documents.ListReady(ctx, userId)
	if err != nil {
		return nil, rag.NewPipelineError(rag.StageList, userId, err)
	}

	docs := make([]rag.DocumentMetadata, 0, len(listed))
	for _, d := range listed {
		if d.Status != rag.StatusReady || d.OwnerId != userId {
			b.logger.Warn(logModule, "Dropping ineligible document from listing", map[string]interface{}{
				"user_id":     userId.String(),
				"document_id": d.Id.String(),
				"status":      string(d.Status),
			})
			continue
		}
		docs = append(docs, d)
	}

	if len(docs) == 0 {
		return nil, rag.NewPipelineError(rag.StageList, userId, rag.ErrNoReadyDocuments)
	}
	return docs, nil
}

// prepare extracts and chunks one document. A nil slice with nil error means
// the document was skipped.
func (b *Builder) prepare(ctx context.Context, userId uuid.UUID, doc rag.DocumentMetadata) ([]rag.Chunk, error) {
	text, err := b.extractor.Extract(ctx, doc.StoredLocator, doc.MimeType)
	if err != nil {
		var extErr *extract.ExtractionError
		if errors.As(err, &extErr) {
			b.skip(userId, doc, rag.StageExtract, err)
			return nil, nil
		}
		return nil, &rag.PipelineError{Stage: rag.StageExtract, UserId: userId, DocumentId: doc.Id, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		b.skip(userId, doc, rag.StageExtract, chunker.ErrEmptyText)
		return nil, nil
	}

	pieces, err := b.splitter.Split(text)
	if err != nil {
		if errors.Is(err, chunker.ErrEmptyText) {
			b.skip(userId, doc, rag.StageChunk, err)
			return nil, nil
		}
		return nil, &rag.PipelineError{Stage: rag.StageChunk, UserId: userId, DocumentId: doc.Id, Err: err}
	}

	chunks := make([]rag.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = rag.Chunk{
			Text:         p,
			Index:        i,
			DocumentId:   doc.Id,
			DocumentName: doc.Name,
		}
	}

	b.logger.Debug(logModule, "Document chunked", map[string]interface{}{
		"user_id":     userId.String(),
		"document_id": doc.Id.String(),
		"chunks":      len(chunks),
	})
	return chunks, nil
}

func (b *Builder) skip(userId uuid.UUID, doc rag.DocumentMetadata, stage rag.Stage, err error) {
	b.logger.Warn(logModule, "Skipping document", map[string]interface{}{
		"user_id":     userId.String(),
		"document_id": doc.Id.String(),
		"document":    doc.Name,
		"stage":       string(stage),
		"error":       err.Error(),
	})
}

func (b *Builder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if b.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.embedTimeout)
		defer cancel()
	}

	ctx, span := b.tracer.Start(ctx, "index.EmbedDocuments", trace.WithAttributes(attribute.Int("embed.texts", len(texts))))
	defer span.End()

	return b.embedder.EmbedDocuments(ctx, texts)
}

// checkVectors asserts one vector per submitted text, all of one non-zero
// dimension.
func checkVectors(submitted int, vectors [][]float32) error {
	if len(vectors) != submitted {
		return fmt.Errorf("%w: submitted %d texts, received %d vectors", rag.ErrIndexIntegrity, submitted, len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("%w: empty vector at position 0", rag.ErrIndexIntegrity)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d", rag.ErrIndexIntegrity, i, len(v), dim)
		}
	}
	return nil
}
