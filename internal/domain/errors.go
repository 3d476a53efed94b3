package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrDocumentParse       = errors.New("document parsing failed")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrNoTransactions      = errors.New("no transactions found for the period")
	ErrNoValidAggregate    = errors.New("no valid tax aggregate for the period")
)
