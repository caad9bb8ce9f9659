// Package xmldoc extracts the character content of XML files.
package xmldoc

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/synapse-kb/synapse/backend/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// XMLGraphLoader loads XML files and renders their text content with a
// short structure summary (root tag and element count).
type XMLGraphLoader struct {
	loader loader.GraphFileLoader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewXMLGraphLoader creates a new XMLGraphLoader with the given base loader.
func NewXMLGraphLoader(loader loader.GraphFileLoader) *XMLGraphLoader {
	return &XMLGraphLoader{
		loader: loader,
		cache:  make(map[string][]byte),
	}
}

// GetFileText strips markup from the XML content, keeping character data.
func (l *XMLGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
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

		text, err := extractText(content)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = text
		l.cacheMu.Unlock()

		return text, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func extractText(content []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var b strings.Builder
	rootTag := ""
	elements := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootTag == "" {
				rootTag = t.Name.Local
			}
			elements++
		case xml.CharData:
			trimmed := strings.TrimSpace(string(t))
			if trimmed != "" {
				b.WriteString(trimmed)
				b.WriteString("\n")
			}
		}
	}

	var out strings.Builder
	fmt.Fprintf(&out, "XML document with root <%s> and %d elements.\n\n", rootTag, elements)
	out.WriteString(b.String())
	return []byte(out.String()), nil
}
