// Package storage holds helpers shared by the temp document stores.
package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// MaxFilenameLength bounds a sanitized name so generated keys stay under
// filesystem name limits.
const MaxFilenameLength = 100

// SanitizeFilename reduces a client-supplied filename to a safe base name:
// directory parts are dropped, unsafe runs become underscores and leading
// dots are removed. An empty result becomes "document.pdf" and long names
// are cut to MaxFilenameLength, keeping the extension.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "document.pdf"
	}
	if len(name) > MaxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) >= MaxFilenameLength {
			ext = ""
		}
		name = name[:MaxFilenameLength-len(ext)] + ext
	}
	return name
}

// NewKey returns a per-request unique object name for filename, combining a
// timestamp and a random UUID.
func NewKey(filename string, now time.Time) string {
	return fmt.Sprintf("%d_%s_%s", now.UnixNano(), uuid.New().String(), SanitizeFilename(filename))
}
