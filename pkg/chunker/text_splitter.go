package chunker

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

var ErrEmptyText = errors.New("chunker: text is empty")

// DefaultSeparators are tried in order: paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// TextSplitter splits text recursively on the largest natural boundary that
// keeps every chunk within chunkSize characters, carrying up to overlap
// characters of trailing context into the next chunk.
//
// Sizes are counted in runes. Separators stay attached to the front of the
// piece that follows them and chunks are trimmed.
type TextSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

type Option func(*TextSplitter)

func WithChunkSize(size int) Option {
	return func(s *TextSplitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

func WithOverlap(overlap int) Option {
	return func(s *TextSplitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy. An empty list is ignored.
func WithSeparators(separators ...string) Option {
	return func(s *TextSplitter) {
		if len(separators) > 0 {
			s.separators = append([]string(nil), separators...)
		}
	}
}

func New(opts ...Option) *TextSplitter {
	s := &TextSplitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

func (s *TextSplitter) ChunkSize() int { return s.chunkSize }

func (s *TextSplitter) Overlap() int { return s.overlap }

// Split returns the ordered chunks of text. Identical input always yields
// identical output.
func (s *TextSplitter) Split(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyText
	}

	if runeLen(trimmed) <= s.chunkSize {
		return []string{trimmed}, nil
	}

	chunks := s.splitRecursive(text, s.separators)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	return chunks, nil
}

func (s *TextSplitter) splitRecursive(text string, separators []string) []string {
	var final []string

	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}

		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}

		if len(remaining) == 0 {
			if t := strings.TrimSpace(piece); t != "" {
				final = append(final, t)
			}
			continue
		}
		final = append(final, s.splitRecursive(piece, remaining)...)
	}

	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}

	return final
}

// merge greedily packs pieces into chunks of at most chunkSize runes. When a
// chunk is emitted, leading pieces are dropped until what remains fits in the
// overlap window and leaves room for the next piece.
func (s *TextSplitter) merge(pieces []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)

	for _, piece := range pieces {
		n := runeLen(piece)

		if total+n > s.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				docs = append(docs, doc)
			}

			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}

		current = append(current, piece)
		total += n
	}

	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		docs = append(docs, doc)
	}

	return docs
}

// splitKeepingSeparator cuts text in front of every occurrence of sep, so each
// piece after the first begins with sep. An empty sep splits into runes.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	var out []string
	start := 0
	for i := 1; i < len(text); i++ {
		if strings.HasPrefix(text[i:], sep) {
			if i > start {
				out = append(out, text[start:i])
			}
			start = i
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
