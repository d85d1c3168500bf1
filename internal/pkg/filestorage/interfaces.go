package filestorage

import (
	"errors"
	"mime/multipart"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured limit
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
	// ErrFileTypeNotAllowed is returned for extensions outside the allow list
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores an upload under subPath and returns its accessible path
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a file previously returned by SaveFileWithPath
	DeleteFile(fileURL string) error

	// GetFullPath returns the filesystem path for a stored file URL
	GetFullPath(fileURL string) string
}
