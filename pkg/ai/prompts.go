package ai

import (
	"fmt"
	"strings"
)

// ExtractionSystemPrompt instructs the model to act as an information
// extraction engine. It is shared by all adapters.
const ExtractionSystemPrompt = `You are an information extraction engine for a knowledge graph.
You read a passage of text and identify the entities it mentions and the
relationships between them.

Rules:
- Use the most complete name that appears in the text as the entity name.
- Entity types are single words such as Person, Organization, Location,
  Concept, Event, Product or Date.
- Relationship types are UPPER_SNAKE_CASE verbs such as WORKS_FOR,
  LOCATED_IN, FOUNDED or PART_OF.
- Only extract relationships between entities you also list.
- Do not invent entities or relationships that the text does not support.`

// AnswerSystemPrompt instructs the model to answer questions over a
// serialized subgraph without inventing facts.
const AnswerSystemPrompt = `You help users explore their personal knowledge graph.
You are given the question and the part of the graph that matched it.
Answer concisely using only the given nodes and relationships. If the graph
does not contain the answer, say so instead of guessing.`

// ImagePrompt instructs a vision model to describe an uploaded image so
// the description can be processed like any other document text.
const ImagePrompt = `Describe this image in detail for a knowledge base.
Name every person, organization, place, object and piece of text you can
identify, and state the relationships between them that the image shows.
Transcribe any readable text verbatim. Do not speculate about anything the
image does not show.`

// ExtractionPrompt renders the user prompt for an extraction request.
func ExtractionPrompt(text string) string {
	return fmt.Sprintf("Extract all entities and relationships from the following text:\n\n%s", text)
}

// AnswerPrompt renders the user prompt for a graph-grounded answer.
func AnswerPrompt(question string, graphContext string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nMatching graph data:\n")
	if strings.TrimSpace(graphContext) == "" {
		b.WriteString("(no matching nodes)\n")
	} else {
		b.WriteString(graphContext)
	}
	return b.String()
}
