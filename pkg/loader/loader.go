// Package loader turns uploaded files into plain text and token-bounded
// units for graph construction. Format-specific loaders live in
// subpackages and wrap a base GraphFileLoader that fetches raw bytes.
package loader

import (
	"context"
)

// GraphFile identifies a file to be processed into text units.
type GraphFile struct {
	ID       string
	FileName string
	FilePath string
}

// GraphFileLoader defines the interface for loading the text content of a
// GraphFile. Implementations may load files from disk, object storage, or
// wrap another loader to parse a specific format.
type GraphFileLoader interface {
	GetFileText(ctx context.Context, file GraphFile) ([]byte, error)
}

// GraphBase64 carries a base64-encoded file together with its data URL
// prefix, ready to be embedded in a vision model request.
type GraphBase64 struct {
	Base64   string
	FileType string
}

// CacheKey returns the cache identity of a file. Loaders key their content
// caches on it so re-processing the same upload never re-reads or
// re-parses the source.
func CacheKey(file GraphFile) string {
	return file.ID + ":" + file.FilePath
}

// BytesGraphFileLoader serves already-held raw bytes. The upload handler
// uses it to run format parsers over a request body without a storage
// round trip.
type BytesGraphFileLoader struct {
	Data []byte
}

// GetFileText returns the wrapped bytes for any file.
func (l *BytesGraphFileLoader) GetFileText(_ context.Context, _ GraphFile) ([]byte, error) {
	return l.Data, nil
}
