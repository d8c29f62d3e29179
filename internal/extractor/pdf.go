package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is reported when a PDF opens but carries no extractable text.
var ErrNoText = errors.New("no text could be extracted from PDF")

// ExtractionError is a content problem with the uploaded document. It is
// reported to the caller as an ERROR verdict, not as a server failure.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "pdf extraction: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Detail returns the caller-facing description of the failure.
func (e *ExtractionError) Detail() string {
	msg := e.Err.Error()
	if msg == "" {
		return "Error: PDF could not be read"
	}
	return "Error: " + strings.ToUpper(msg[:1]) + msg[1:]
}

// PDFExtractor extracts plain text from PDF bytes. It implements port.TextExtractor.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of every page, pages separated by newlines.
// Unreadable documents and documents with only whitespace yield an
// *ExtractionError.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &ExtractionError{Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Err: fmt.Errorf("opening PDF: %w", err)}
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only pages have nothing to contribute.
			continue
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}

	text = sb.String()
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Err: ErrNoText}
	}
	return text, nil
}

// LooksLikePDF checks the %PDF- magic bytes.
func LooksLikePDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
