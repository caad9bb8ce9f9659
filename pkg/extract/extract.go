// Package extract implements a deterministic entity and relationship
// extractor over plain text. It serves as the fallback when no language
// model is configured or a model call fails, so ingestion always yields a
// graph.
package extract

import (
	"regexp"
	"strings"

	"github.com/synapse-kb/synapse/backend/pkg/ai"
)

const minEntityLength = 4

// evidence sentences are trimmed to keep relationship properties small
const maxEvidenceLength = 100

var (
	entityRe   = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)*\b`)
	sentenceRe = regexp.MustCompile(`[.!?]`)
)

// Entities returns the capitalized phrases in text that look like entity
// mentions, deduplicated in order of first appearance. Multi-word phrases
// are typed as Person, single words as Concept.
func Entities(text string) []ai.ExtractedEntity {
	matches := entityRe.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	entities := make([]ai.ExtractedEntity, 0, len(matches))

	for _, match := range matches {
		if len(match) < minEntityLength {
			continue
		}
		if _, ok := seen[match]; ok {
			continue
		}
		seen[match] = struct{}{}

		entityType := "Concept"
		if strings.Contains(match, " ") {
			entityType = "Person"
		}
		entities = append(entities, ai.ExtractedEntity{
			Name: match,
			Type: entityType,
		})
	}
	return entities
}

// Relationships pairs up entities that occur in the same sentence. Each
// unordered pair produces at most one MENTIONED_WITH relationship, carrying
// the first sentence where the pair co-occurred as evidence.
func Relationships(text string, entities []ai.ExtractedEntity) []ai.ExtractedRelationship {
	relationships := make([]ai.ExtractedRelationship, 0)
	seen := make(map[string]struct{})

	for _, sentence := range sentenceRe.Split(text, -1) {
		var present []string
		for _, entity := range entities {
			if strings.Contains(sentence, entity.Name) {
				present = append(present, entity.Name)
			}
		}

		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				if _, ok := seen[pairKey(present[i], present[j])]; ok {
					continue
				}
				seen[pairKey(present[i], present[j])] = struct{}{}

				evidence := strings.TrimSpace(sentence)
				if len(evidence) > maxEvidenceLength {
					evidence = evidence[:maxEvidenceLength]
				}
				relationships = append(relationships, ai.ExtractedRelationship{
					Source:   present[i],
					Target:   present[j],
					Type:     "MENTIONED_WITH",
					Evidence: evidence,
				})
			}
		}
	}
	return relationships
}

// Extract runs the full heuristic pipeline and returns the result in the
// same shape a model extraction produces.
func Extract(text string) ai.ExtractionResult {
	entities := Entities(text)
	return ai.ExtractionResult{
		Entities:      entities,
		Relationships: Relationships(text, entities),
	}
}

// MentionCount counts the occurrences of name in text. It is stored as a
// node property so the UI can surface how often an entity appears.
func MentionCount(text string, name string) int {
	return strings.Count(text, name)
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}
