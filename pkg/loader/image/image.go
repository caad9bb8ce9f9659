// Package image turns uploaded images into text by asking a vision model
// to describe them. The description then flows through extraction like any
// other document text.
package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// ImageGraphLoader describes image files using an AI vision model.
type ImageGraphLoader struct {
	loader   loader.GraphFileLoader
	aiClient ai.GraphAIClient

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewImageGraphLoaderParams contains configuration for creating an
// ImageGraphLoader.
type NewImageGraphLoaderParams struct {
	Loader   loader.GraphFileLoader
	AIClient ai.GraphAIClient
}

// NewImageGraphLoader creates a loader that describes images using the
// given vision-capable client.
func NewImageGraphLoader(params NewImageGraphLoaderParams) *ImageGraphLoader {
	return &ImageGraphLoader{
		loader:   params.Loader,
		aiClient: params.AIClient,
		cache:    make(map[string][]byte),
	}
}

// GetFileText loads the image bytes and returns the model's description.
// Results are cached per file.
func (l *ImageGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := l.loader.GetFileText(ctx, file)
		if err != nil {
			return nil, err
		}

		text, err := l.aiClient.DescribeImage(ctx, ai.ImagePrompt, Encode(content, file.FileName))
		if err != nil {
			return nil, fmt.Errorf("failed to describe image: %w", err)
		}

		description := []byte(text)
		l.cacheMu.Lock()
		l.cache[key] = description
		l.cacheMu.Unlock()

		return description, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// Encode wraps raw image bytes as a base64 data URL payload. The MIME type
// comes from the file extension, defaulting to PNG.
func Encode(content []byte, fileName string) loader.GraphBase64 {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if mimeType == "" {
		mimeType = "image/png"
	}

	return loader.GraphBase64{
		Base64:   base64.StdEncoding.EncodeToString(content),
		FileType: fmt.Sprintf("data:%s;base64,", mimeType),
	}
}
