package search

import (
	"math"
	"sort"

	"docintel-be/pkg/rag"

	"github.com/google/uuid"
)

// Search ranks index entries against query by cosine similarity. When
// documentId is set, candidates are restricted to that document before
// ranking. Ties keep index order. At most k results are returned; no
// candidates yields an empty slice.
func Search(idx *rag.Index, query []float32, k int, documentId *uuid.UUID) []rag.SearchResult {
	if idx.Len() == 0 || k <= 0 {
		return []rag.SearchResult{}
	}

	type candidate struct {
		entry *rag.Entry
		score float64
	}

	candidates := make([]candidate, 0, len(idx.Entries))
	for i := range idx.Entries {
		e := &idx.Entries[i]
		if documentId != nil && e.Chunk.DocumentId != *documentId {
			continue
		}
		candidates = append(candidates, candidate{entry: e, score: CosineSimilarity(query, e.Vector)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]rag.SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = rag.SearchResult{
			Chunk: c.entry.Chunk,
			Score: c.score,
			Rank:  i + 1,
		}
	}
	return results
}

// CosineSimilarity returns 0 for mismatched dimensions, zero-norm vectors and
// non-finite results.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}
