package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"docintel-be/pkg/storage"

	"code.sajari.com/docconv/v2"
	"golang.org/x/text/encoding/unicode"
)

const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
)

var (
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrFileNotFound    = errors.New("file not found")
	ErrDecode          = errors.New("decode failed")
)

// ExtractionError reports why one stored file produced no text.
type ExtractionError struct {
	Locator  string
	MimeType string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %q (%s): %v", e.Locator, e.MimeType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// PDFConverter turns a PDF stream into text with pages separated by form feeds.
type PDFConverter func(r io.Reader) (string, error)

// DocconvPDF converts with docconv, which shells out to pdftotext.
func DocconvPDF(r io.Reader) (string, error) {
	body, _, err := docconv.ConvertPDF(r)
	if err != nil {
		return "", err
	}
	return body, nil
}

type Extractor struct {
	store storage.FileStore
	pdf   PDFConverter
}

type Option func(*Extractor)

func WithPDFConverter(c PDFConverter) Option {
	return func(e *Extractor) {
		if c != nil {
			e.pdf = c
		}
	}
}

func New(store storage.FileStore, opts ...Option) *Extractor {
	e := &Extractor{
		store: store,
		pdf:   DocconvPDF,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supports reports whether mimeType has an extraction path.
func Supports(mimeType string) bool {
	mt, err := mediaType(mimeType)
	if err != nil {
		return false
	}
	return mt == MimePDF || mt == MimeText
}

// Extract reads the file behind locator and returns its plain text.
// Failures specific to the file come back as *ExtractionError; context
// cancellation is returned as is.
func (e *Extractor) Extract(ctx context.Context, locator, mimeType string) (string, error) {
	mt, err := mediaType(mimeType)
	if err != nil || (mt != MimePDF && mt != MimeText) {
		return "", &ExtractionError{Locator: locator, MimeType: mimeType, Err: ErrUnsupportedType}
	}

	data, err := e.store.Read(ctx, locator)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, storage.ErrNotFound) {
			return "", &ExtractionError{Locator: locator, MimeType: mimeType, Err: ErrFileNotFound}
		}
		return "", &ExtractionError{Locator: locator, MimeType: mimeType, Err: err}
	}

	var text string
	switch mt {
	case MimePDF:
		text, err = e.extractPDF(data)
	case MimeText:
		text, err = decodeText(data)
	}
	if err != nil {
		return "", &ExtractionError{Locator: locator, MimeType: mimeType, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return text, nil
}

func (e *Extractor) extractPDF(data []byte) (string, error) {
	body, err := e.pdf(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return joinPages(body), nil
}

// joinPages keeps page order and separates non-empty pages by a blank line.
func joinPages(body string) string {
	pages := strings.Split(body, "\f")
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// decodeText decodes UTF-8, dropping a leading BOM and replacing invalid
// sequences with U+FFFD.
func decodeText(data []byte) (string, error) {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func mediaType(mimeType string) (string, error) {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(mimeType))
	if err != nil {
		return "", err
	}
	return mt, nil
}
