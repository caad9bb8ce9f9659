package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileSize is the upload ceiling. Files above it are rejected before
// any storage or extraction work happens.
const MaxFileSize = 15 << 20

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrMissingFileName = errors.New("missing file name")
)

// FileCategory groups allowed extensions for display and routing purposes.
type FileCategory string

const (
	FileCategoryDocument   FileCategory = "document"
	FileCategoryImage      FileCategory = "image"
	FileCategoryStructured FileCategory = "structured"
)

var allowedExtensions = map[string]FileCategory{
	".txt":  FileCategoryDocument,
	".md":   FileCategoryDocument,
	".pdf":  FileCategoryDocument,
	".doc":  FileCategoryDocument,
	".docx": FileCategoryDocument,
	".html": FileCategoryDocument,

	".png":  FileCategoryImage,
	".jpg":  FileCategoryImage,
	".jpeg": FileCategoryImage,

	".csv":  FileCategoryStructured,
	".tsv":  FileCategoryStructured,
	".json": FileCategoryStructured,
	".xml":  FileCategoryStructured,
	".xls":  FileCategoryStructured,
	".xlsx": FileCategoryStructured,
}

// Validate checks an upload against the extension allowlist and size
// ceiling. The returned category tells the caller which loader family
// handles the file.
func Validate(fileName string, size int64) (FileCategory, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", ErrMissingFileName
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	category, ok := allowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	if size > MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, MaxFileSize)
	}

	return category, nil
}
