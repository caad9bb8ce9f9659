// Package jsondoc renders JSON files as indented text with a structure
// summary so extraction sees both values and shape.
package jsondoc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/synapse-kb/synapse/backend/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// JSONGraphLoader loads and re-renders JSON files.
type JSONGraphLoader struct {
	loader loader.GraphFileLoader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewJSONGraphLoader creates a new JSONGraphLoader with the given base loader.
func NewJSONGraphLoader(loader loader.GraphFileLoader) *JSONGraphLoader {
	return &JSONGraphLoader{
		loader: loader,
		cache:  make(map[string][]byte),
	}
}

// GetFileText parses the JSON content and renders it as indented text
// preceded by a one-line structure summary. Invalid JSON falls through as
// raw text instead of failing the upload.
func (l *JSONGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
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

		rendered := render(content)

		l.cacheMu.Lock()
		l.cache[key] = rendered
		l.cacheMu.Unlock()

		return rendered, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func render(content []byte) []byte {
	var parsed any
	if err := json.Unmarshal(content, &parsed); err != nil {
		return content
	}

	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return content
	}

	var b strings.Builder
	b.WriteString(summarize(parsed))
	b.WriteString("\n\n")
	b.Write(pretty)
	b.WriteString("\n")
	return []byte(b.String())
}

func summarize(parsed any) string {
	switch v := parsed.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("JSON object with keys: %s.", strings.Join(keys, ", "))
	case []any:
		return fmt.Sprintf("JSON array with %d elements.", len(v))
	default:
		return "JSON scalar value."
	}
}
