package domain

import "errors"

// Domain errors
var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDocumentBytesLost = errors.New("document bytes not found in storage")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidFile       = errors.New("invalid file")
	ErrDuplicateUpload   = errors.New("duplicate upload")
	ErrFileTooSmall      = errors.New("file below minimum size")
	ErrFileTooLarge      = errors.New("file exceeds maximum size")
)
