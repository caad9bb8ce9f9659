// Package csv parses CSV and TSV files into a textual rendering suited
// for entity extraction.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/synapse-kb/synapse/backend/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// CSVGraphLoader loads and parses CSV/TSV files into text format. Each
// record is rendered as "header: value" pairs so column context survives
// chunking.
type CSVGraphLoader struct {
	loader loader.GraphFileLoader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewCSVGraphLoader creates a new CSVGraphLoader with the given base loader.
func NewCSVGraphLoader(loader loader.GraphFileLoader) *CSVGraphLoader {
	return &CSVGraphLoader{
		loader: loader,
		cache:  make(map[string][]byte),
	}
}

// GetFileText retrieves and parses the CSV file content.
func (l *CSVGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
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

		rendered, err := renderRecords(content, delimiterFor(file.FilePath))
		if err != nil {
			return nil, err
		}

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

// Render parses comma-separated content and renders it in the same
// sentence-per-row form GetFileText produces. The excel loader uses it for
// converted sheets.
func Render(content []byte) ([]byte, error) {
	return renderRecords(content, ',')
}

func delimiterFor(filePath string) rune {
	if strings.EqualFold(filepath.Ext(filePath), ".tsv") {
		return '\t'
	}
	return ','
}

func renderRecords(content []byte, delimiter rune) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := records[1:]
	if !looksLikeHeader(header) {
		// synthesize column names when the first row is data
		rows = records
		header = make([]string, len(records[0]))
		for i := range header {
			header[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	var b strings.Builder
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for i, value := range row {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			name := fmt.Sprintf("column_%d", i+1)
			if i < len(header) {
				name = strings.TrimSpace(header[i])
			}
			parts = append(parts, fmt.Sprintf("%s: %s", name, value))
		}
		if len(parts) == 0 {
			continue
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".\n")
	}
	return []byte(b.String()), nil
}

// looksLikeHeader reports whether a row reads as column names rather than
// data: no empty cells and nothing purely numeric.
func looksLikeHeader(row []string) bool {
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			return false
		}
		numeric := true
		for _, r := range cell {
			if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
				numeric = false
				break
			}
		}
		if numeric {
			return false
		}
	}
	return true
}
