// Package excel loads Excel workbooks (.xlsx, .xls) by converting them to
// CSV with unoconv and rendering each sheet as text.
package excel

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/synapse-kb/synapse/backend/pkg/loader"
	"github.com/synapse-kb/synapse/backend/pkg/loader/csv"

	"golang.org/x/sync/singleflight"
)

// ConvertFunc turns workbook bytes into CSV content per sheet name.
type ConvertFunc func(ctx context.Context, content []byte, ext string) (map[string][]byte, error)

// ExcelGraphLoader parses Excel files through a CSV conversion step. For
// multi-sheet workbooks the sheets are concatenated with name headers.
type ExcelGraphLoader struct {
	loader  loader.GraphFileLoader
	convert ConvertFunc

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewExcelGraphLoader creates a new ExcelGraphLoader over the given base
// loader, converting workbooks with unoconv.
func NewExcelGraphLoader(baseLoader loader.GraphFileLoader) *ExcelGraphLoader {
	return &ExcelGraphLoader{
		loader:  baseLoader,
		convert: ConvertToCSV,
		cache:   make(map[string][]byte),
	}
}

// GetFileText retrieves the workbook, converts it to CSV, and returns the
// rendered sheet text. Results are cached per file.
func (l *ExcelGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
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

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.FilePath), "."))
		if ext == "" {
			ext = "xlsx"
		}

		sheets, err := l.convert(ctx, content, ext)
		if err != nil {
			return nil, err
		}

		text, err := renderSheets(sheets)
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

// renderSheets renders each sheet's CSV as text, in sheet name order so the
// output is stable. Sheets that fail to parse are skipped.
func renderSheets(sheets map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	var result []byte
	for _, name := range names {
		parsed, err := csv.Render(sheets[name])
		if err != nil || len(parsed) == 0 {
			continue
		}

		if len(result) > 0 {
			result = append(result, '\n')
		}
		if len(sheets) > 1 {
			result = append(result, []byte("--- "+name+" ---\n")...)
		}
		result = append(result, parsed...)
	}

	return result, nil
}
