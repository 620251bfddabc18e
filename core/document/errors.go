package document

import "github.com/pkg/errors"

var (
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrEmptyFile           = errors.New("the uploaded file is empty")
	ErrInvalidTransition   = errors.New("invalid document status transition")
	ErrMissingReason       = errors.New("a rejection reason is required")
	ErrSlotBusy            = errors.New("another operation is in progress on this document")
	ErrUnsupportedFile     = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("the uploaded file is too large")
)
