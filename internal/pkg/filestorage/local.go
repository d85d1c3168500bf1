package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/placementhub/internal/pkg/logger"
)

// DefaultMaxSize is the upload limit used when none is configured
const DefaultMaxSize int64 = 5 << 20

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath   string // The root directory where files will be stored
	baseURL    string // The base URL to access the stored files
	maxSize    int64
	allowedExt map[string]bool // Empty allows every extension
}

// Option configures a LocalStorage
type Option func(*LocalStorage)

// WithMaxSize limits upload size in bytes
func WithMaxSize(n int64) Option {
	return func(ls *LocalStorage) { ls.maxSize = n }
}

// WithAllowedExtensions restricts uploads to the given extensions, e.g. ".pdf"
func WithAllowedExtensions(exts ...string) Option {
	return func(ls *LocalStorage) {
		for _, e := range exts {
			ls.allowedExt[strings.ToLower(e)] = true
		}
	}
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
// Returned paths are prefixed with baseURL.
func NewLocalStorage(basePath, baseURL string, opts ...Option) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	ls := &LocalStorage{
		basePath:   basePath,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxSize:    DefaultMaxSize,
		allowedExt: map[string]bool{},
	}
	for _, opt := range opts {
		opt(ls)
	}
	return ls, nil
}

// SaveFileWithPath saves an upload to a subdirectory under a generated name
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}
	if ls.maxSize > 0 && fileHeader.Size > ls.maxSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if len(ls.allowedExt) > 0 && !ls.allowedExt[ext] {
		return "", ErrFileTypeNotAllowed
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	subPath = cleanSubPath(subPath)
	fullDirPath := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := uniqueFilename
	if subPath != "" {
		rel = subPath + "/" + uniqueFilename
	}
	accessiblePath := ls.baseURL + "/" + rel

	logger.Info().Str("filename", fileHeader.Filename).Str("accessible_path", accessiblePath).Msg("File saved successfully")
	return accessiblePath, nil
}

// DeleteFile removes a stored file. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	physicalPath := ls.GetFullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath maps a stored file URL back onto the filesystem. Paths that
// would escape the storage root yield "".
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		return ""
	}
	full := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	root := filepath.Clean(ls.basePath) + string(filepath.Separator)
	if !strings.HasPrefix(full, root) {
		return ""
	}
	return full
}

func cleanSubPath(p string) string {
	p = filepath.ToSlash(filepath.Clean("/" + p))
	return strings.Trim(p, "/")
}
