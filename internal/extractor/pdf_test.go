package extractor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimrisk/internal/extractor"
	"claimrisk/internal/testutil"
)

func TestPDFExtractor_Extract_Text(t *testing.T) {
	e := extractor.NewPDFExtractor()

	text, err := e.Extract(context.Background(), testutil.MinimalPDF("Claim 4471 water damage"))

	require.NoError(t, err)
	assert.Contains(t, text, "Claim 4471 water damage")
}

func TestPDFExtractor_Extract_WhitespaceOnly(t *testing.T) {
	e := extractor.NewPDFExtractor()

	_, err := e.Extract(context.Background(), testutil.MinimalPDF("    "))

	var extErr *extractor.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.ErrorIs(t, err, extractor.ErrNoText)
	assert.Equal(t, "Error: No text could be extracted from PDF", extErr.Detail())
}

func TestPDFExtractor_Extract_NotAPDF(t *testing.T) {
	e := extractor.NewPDFExtractor()

	_, err := e.Extract(context.Background(), []byte("plain text, not a pdf"))

	var extErr *extractor.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Contains(t, extErr.Detail(), "Error: ")
}

func TestPDFExtractor_Extract_Empty(t *testing.T) {
	e := extractor.NewPDFExtractor()

	_, err := e.Extract(context.Background(), nil)

	var extErr *extractor.ExtractionError
	assert.True(t, errors.As(err, &extErr))
}

func TestPDFExtractor_Extract_Truncated(t *testing.T) {
	e := extractor.NewPDFExtractor()
	full := testutil.MinimalPDF("Claim text")

	_, err := e.Extract(context.Background(), full[:len(full)/2])

	var extErr *extractor.ExtractionError
	assert.True(t, errors.As(err, &extErr))
}

func TestLooksLikePDF(t *testing.T) {
	assert.True(t, extractor.LooksLikePDF(testutil.MinimalPDF("x")))
	assert.False(t, extractor.LooksLikePDF([]byte("PK\x03\x04")))
	assert.False(t, extractor.LooksLikePDF(nil))
}
