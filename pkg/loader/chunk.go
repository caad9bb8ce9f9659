package loader

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"
)

// Default chunking parameters for unit construction.
const (
	DefaultEncoder     = "o200k_base"
	DefaultUnitTokens  = 1000
	DefaultUnitOverlap = 200
)

// Unit is a token-bounded slice of a file's text. Units are the grain at
// which extraction and embedding run.
type Unit struct {
	ID     string
	FileID string
	Index  int
	Text   string
	Tokens int
}

// ChunkText splits text into units of at most maxTokens tokens, with
// consecutive units overlapping by overlapTokens so entity mentions that
// straddle a boundary appear in both units.
func ChunkText(text string, fileID string, encoder string, maxTokens int, overlapTokens int) ([]Unit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if maxTokens <= 0 {
		maxTokens = DefaultUnitTokens
	}
	if overlapTokens < 0 || overlapTokens >= maxTokens {
		overlapTokens = 0
	}
	if encoder == "" {
		encoder = DefaultEncoder
	}

	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return nil, err
	}

	tokens := enc.Encode(text, nil, nil)
	step := maxTokens - overlapTokens

	var units []Unit
	for start := 0; start < len(tokens); start += step {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		units = append(units, Unit{
			ID:     id,
			FileID: fileID,
			Index:  len(units),
			Text:   strings.TrimSpace(enc.Decode(tokens[start:end])),
			Tokens: end - start,
		})

		if end == len(tokens) {
			break
		}
	}
	return units, nil
}
