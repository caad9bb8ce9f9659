// Package htmldoc extracts readable text from HTML files.
package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/synapse-kb/synapse/backend/pkg/loader"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// HTMLGraphLoader loads HTML files and extracts their readable text.
// It uses readability to isolate the main article content and falls
// back to a plain node walk for fragments readability cannot score.
type HTMLGraphLoader struct {
	loader loader.GraphFileLoader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewHTMLGraphLoader creates a new HTMLGraphLoader with the given base loader.
func NewHTMLGraphLoader(loader loader.GraphFileLoader) *HTMLGraphLoader {
	return &HTMLGraphLoader{
		loader: loader,
		cache:  make(map[string][]byte),
	}
}

// GetFileText parses the HTML document and returns its visible text.
func (l *HTMLGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
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

		text, err := extractText(content, file.FileName)
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

var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "tr": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
}

func extractText(content []byte, fileName string) ([]byte, error) {
	if text, err := extractArticle(content, fileName); err == nil && len(text) > 0 {
		return text, nil
	}
	return extractVisibleText(content)
}

// extractArticle runs readability over the document. Fragments without
// enough scored content come back empty, which sends the caller to the
// plain walk.
func extractArticle(content []byte, fileName string) ([]byte, error) {
	docURL, err := url.Parse("file:///" + fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build document url: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(content), docURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var b strings.Builder
	if err := article.RenderText(&b); err != nil {
		return nil, fmt.Errorf("failed to render article text: %w", err)
	}

	text := strings.TrimSpace(b.String())
	if text != "" {
		text += "\n"
	}
	return []byte(text), nil
}

func extractVisibleText(content []byte) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
			if _, block := blockTags[n.Data]; block {
				b.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				b.WriteString(trimmed)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	text := strings.TrimSpace(b.String())
	if text != "" {
		text += "\n"
	}
	return []byte(text), nil
}
