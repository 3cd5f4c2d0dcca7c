package search

import (
	"context"
	"fmt"
	"strings"

	"docintel-be/internal/pkg/logger"
	"docintel-be/pkg/embedding"
	"docintel-be/pkg/rag"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const logModule = "RETRIEVAL"

const DefaultTopK = 5

type IndexBuilder interface {
	Build(ctx context.Context, userId uuid.UUID) (*rag.Index, error)
}

// IndexCache holds a built index per user between requests. Generation
// changes whenever the user's index is invalidated; SetIfUnchanged refuses
// an index built under an older generation.
type IndexCache interface {
	Get(userId uuid.UUID) (*rag.Index, bool)
	Generation(userId uuid.UUID) uint64
	SetIfUnchanged(userId uuid.UUID, gen uint64, idx *rag.Index) bool
}

// Retriever is what callers outside the core depend on.
type Retriever interface {
	Query(ctx context.Context, userId uuid.UUID, question string, k int, documentId *uuid.UUID) ([]rag.Fragment, error)
}

// Orchestrator runs one retrieval: build the user's index, embed the
// question, rank. It keeps no state between calls unless a cache is set.
type Orchestrator struct {
	builder  IndexBuilder
	embedder embedding.EmbeddingProvider
	cache    IndexCache
	logger   logger.ILogger
	defaultK int
	maxK     int
	tracer   trace.Tracer
}

type Option func(*Orchestrator)

func WithCache(c IndexCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

func WithLogger(l logger.ILogger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTopK sets the k used when callers pass none, and an upper bound on
// requested k. A zero max leaves k unbounded.
func WithTopK(defaultK, maxK int) Option {
	return func(o *Orchestrator) {
		if defaultK > 0 {
			o.defaultK = defaultK
		}
		if maxK >= 0 {
			o.maxK = maxK
		}
	}
}

func NewOrchestrator(builder IndexBuilder, embedder embedding.EmbeddingProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		builder:  builder,
		embedder: embedder,
		logger:   logger.NewNopLogger(),
		defaultK: DefaultTopK,
		tracer:   otel.Tracer("docintel-be/pkg/rag/search"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var _ Retriever = (*Orchestrator)(nil)

// Query returns up to k fragments for question, numbered from 1 in rank
// order. Index build errors are returned unchanged.
func (o *Orchestrator) Query(ctx context.Context, userId uuid.UUID, question string, k int, documentId *uuid.UUID) ([]rag.Fragment, error) {
	ctx, span := o.tracer.Start(ctx, "retrieval.Query", trace.WithAttributes(attribute.String("user.id", userId.String())))
	defer span.End()

	fragments, err := o.query(ctx, userId, question, k, documentId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn(logModule, "Retrieval failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return nil, err
	}
	span.SetAttributes(attribute.Int("retrieval.fragments", len(fragments)))
	return fragments, nil
}

func (o *Orchestrator) query(ctx context.Context, userId uuid.UUID, question string, k int, documentId *uuid.UUID) ([]rag.Fragment, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, rag.NewPipelineError(rag.StageValidate, userId, fmt.Errorf("%w: question is empty", rag.ErrInvalidArgument))
	}
	k = o.resolveK(k)

	idx, err := o.index(ctx, userId)
	if err != nil {
		return nil, err
	}

	queryVector, err := o.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, rag.NewPipelineError(rag.StageEmbed, userId, err)
	}
	if len(queryVector) != idx.Dimension() {
		return nil, rag.NewPipelineError(rag.StageSearch, userId, fmt.Errorf(
			"%w: query vector has dimension %d, index has %d", rag.ErrIndexIntegrity, len(queryVector), idx.Dimension()))
	}

	results := Search(idx, queryVector, k, documentId)

	fragments := make([]rag.Fragment, len(results))
	for i, r := range results {
		fragments[i] = rag.Fragment{
			Text:         r.Chunk.Text,
			DocumentId:   r.Chunk.DocumentId,
			DocumentName: r.Chunk.DocumentName,
			SourceNumber: r.Rank,
			Score:        r.Score,
		}
	}

	o.logger.Info(logModule, "Retrieval completed", map[string]interface{}{
		"user_id":    userId.String(),
		"k":          k,
		"candidates": idx.Len(),
		"fragments":  len(fragments),
		"filtered":   documentId != nil,
	})
	return fragments, nil
}

func (o *Orchestrator) index(ctx context.Context, userId uuid.UUID) (*rag.Index, error) {
	if o.cache == nil {
		return o.builder.Build(ctx, userId)
	}

	if idx, ok := o.cache.Get(userId); ok {
		return idx, nil
	}

	gen := o.cache.Generation(userId)
	idx, err := o.builder.Build(ctx, userId)
	if err != nil {
		return nil, err
	}

	if !o.cache.SetIfUnchanged(userId, gen, idx) {
		o.logger.Debug(logModule, "Index invalidated during build, not cached", map[string]interface{}{
			"user_id": userId.String(),
		})
	}
	return idx, nil
}

func (o *Orchestrator) resolveK(k int) int {
	if k <= 0 {
		k = o.defaultK
	}
	if o.maxK > 0 && k > o.maxK {
		k = o.maxK
	}
	return k
}
