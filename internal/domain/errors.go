package domain

import "errors"

var (
	ErrMissingFile         = errors.New("no file uploaded")
	ErrEmptyFilename       = errors.New("empty filename")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrStorageFailed       = errors.New("temporary document storage failed")
	ErrInternal            = errors.New("internal error")
)
