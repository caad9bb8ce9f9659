package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/loader"
	"github.com/synapse-kb/synapse/backend/pkg/loader/csv"
	"github.com/synapse-kb/synapse/backend/pkg/loader/doc"
	"github.com/synapse-kb/synapse/backend/pkg/loader/excel"
	"github.com/synapse-kb/synapse/backend/pkg/loader/htmldoc"
	"github.com/synapse-kb/synapse/backend/pkg/loader/image"
	"github.com/synapse-kb/synapse/backend/pkg/loader/jsondoc"
	"github.com/synapse-kb/synapse/backend/pkg/loader/pdf"
	"github.com/synapse-kb/synapse/backend/pkg/loader/xmldoc"
)

// LoaderFor wraps the base loader with the format parser for the file's
// extension. Plain-text formats pass through the base loader unchanged.
// Image files need a vision-capable client and return the base loader when
// none is given.
func LoaderFor(base loader.GraphFileLoader, fileName string, client ai.GraphAIClient) loader.GraphFileLoader {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".tsv":
		return csv.NewCSVGraphLoader(base)
	case ".doc", ".docx":
		return doc.NewDocGraphLoader(base)
	case ".pdf":
		return pdf.NewPDFGraphLoader(base)
	case ".json":
		return jsondoc.NewJSONGraphLoader(base)
	case ".xml":
		return xmldoc.NewXMLGraphLoader(base)
	case ".html":
		return htmldoc.NewHTMLGraphLoader(base)
	case ".xls", ".xlsx":
		return excel.NewExcelGraphLoader(base)
	case ".png", ".jpg", ".jpeg":
		if client == nil {
			return base
		}
		return image.NewImageGraphLoader(image.NewImageGraphLoaderParams{
			Loader:   base,
			AIClient: client,
		})
	default:
		return base
	}
}

// ProcessFile loads a file's content through the right format loader and
// ingests it. Image uploads are described by the vision model first; with
// no model configured they get a document node but no text extraction.
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	base loader.GraphFileLoader,
	file loader.GraphFile,
	ownerID int64,
) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(file.FileName))
	fileType := strings.TrimPrefix(ext, ".")

	var text string
	category, _ := loader.Validate(file.FileName, 0)
	if category != loader.FileCategoryImage || p.Client != nil {
		content, err := LoaderFor(base, file.FileName, p.Client).GetFileText(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to load file content: %w", err)
		}
		text = string(content)
	}

	return p.ProcessText(ctx, file.FileName, fileType, text, ownerID)
}
