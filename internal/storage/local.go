package storage

import (
	"os"
	"path/filepath"

	"github.com/synapse-kb/synapse/backend/internal/util"
)

// LocalDir returns the root directory for uploads stored on local disk.
// Used when no S3 bucket is configured.
func LocalDir() string {
	return util.GetEnvString("UPLOAD_DIR", "data/uploads")
}

// PutLocalFile writes an upload under LocalDir, mirroring the key layout
// of PutFile, and returns the full path for later reads.
func PutLocalFile(path string, name string, key string, data []byte) (string, error) {
	dir := filepath.Join(LocalDir(), path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	fullPath := filepath.Join(dir, key+filepath.Ext(name))
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", err
	}

	return fullPath, nil
}

// DeleteLocalFolder removes every locally stored upload under the given
// path relative to LocalDir.
func DeleteLocalFolder(path string) error {
	return os.RemoveAll(filepath.Join(LocalDir(), path))
}
