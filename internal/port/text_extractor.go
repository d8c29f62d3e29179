package port

import "context"

// TextExtractor turns document bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}
