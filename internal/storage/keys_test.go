package storage_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"claimrisk/internal/storage"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"claim.pdf", "claim.pdf"},
		{"My Claim (final).pdf", "My_Claim_final.pdf"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
		{`C:\Users\bob\claim.pdf`, "claim.pdf"},
		{".hidden.pdf", "hidden.pdf"},
		{"", "document.pdf"},
		{"???", "document.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.SanitizeFilename(tt.in))
		})
	}
}

func TestNewKey_Unique(t *testing.T) {
	now := time.Now()
	a := storage.NewKey("claim.pdf", now)
	b := storage.NewKey("claim.pdf", now)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_claim.pdf"))
	assert.NotContains(t, a, "/")
}

func TestSanitizeFilename_LongNameKeepsExtension(t *testing.T) {
	got := storage.SanitizeFilename(strings.Repeat("a", 220) + ".pdf")

	assert.Len(t, got, storage.MaxFilenameLength)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
	assert.Equal(t, strings.Repeat("a", storage.MaxFilenameLength-4)+".pdf", got)
}

func TestNewKey_LongNameFitsFilesystemLimit(t *testing.T) {
	key := storage.NewKey(strings.Repeat("x", 300)+".pdf", time.Now())

	assert.LessOrEqual(t, len(key), 255)
	assert.True(t, strings.HasSuffix(key, ".pdf"))
}
