package extract

import (
	"strings"
	"testing"
)

const sampleText = "Satya Nadella is the CEO of Microsoft. Microsoft develops Azure. Azure is a cloud computing platform."

func TestEntities(t *testing.T) {
	entities := Entities(sampleText)

	byName := make(map[string]string, len(entities))
	for _, e := range entities {
		byName[e.Name] = e.Type
	}

	if typ, ok := byName["Satya Nadella"]; !ok || typ != "Person" {
		t.Errorf("expected Satya Nadella as Person, got %q (found=%v)", typ, ok)
	}
	if typ, ok := byName["Microsoft"]; !ok || typ != "Concept" {
		t.Errorf("expected Microsoft as Concept, got %q (found=%v)", typ, ok)
	}
	if typ, ok := byName["Azure"]; !ok || typ != "Concept" {
		t.Errorf("expected Azure as Concept, got %q (found=%v)", typ, ok)
	}

	// "CEO" is all caps and "is" is lowercase, neither should match
	if _, ok := byName["CEO"]; ok {
		t.Error("all-caps acronym should not be extracted")
	}
}

func TestEntitiesSkipsShortAndDuplicate(t *testing.T) {
	entities := Entities("Max met Max at the Alps. The Alps are high.")

	count := 0
	for _, e := range entities {
		if e.Name == "Max" {
			t.Error("names shorter than four characters should be skipped")
		}
		if e.Name == "Alps" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected Alps once, got %d", count)
	}
}

func TestRelationshipsSameSentenceOnly(t *testing.T) {
	result := Extract(sampleText)

	var pairs []string
	for _, r := range result.Relationships {
		if r.Type != "MENTIONED_WITH" {
			t.Errorf("unexpected relationship type %q", r.Type)
		}
		pairs = append(pairs, r.Source+"|"+r.Target)
	}

	joined := strings.Join(pairs, ",")
	if !strings.Contains(joined, "Satya Nadella|Microsoft") {
		t.Errorf("expected Satya Nadella and Microsoft related, got %v", pairs)
	}
	if strings.Contains(joined, "Satya Nadella|Azure") || strings.Contains(joined, "Azure|Satya Nadella") {
		t.Errorf("entities from different sentences should not be related, got %v", pairs)
	}
}

func TestRelationshipsDedupeUnorderedPair(t *testing.T) {
	text := "Alice Smith knows Bob Jones. Bob Jones knows Alice Smith."
	result := Extract(text)

	if len(result.Relationships) != 1 {
		t.Fatalf("expected a single relationship for the pair, got %d", len(result.Relationships))
	}
	if result.Relationships[0].Evidence == "" {
		t.Error("expected evidence sentence to be recorded")
	}
}

func TestRelationshipEvidenceTruncated(t *testing.T) {
	long := "Alice Smith met Bob Jones while " + strings.Repeat("walking and talking ", 20) + "in town"
	result := Extract(long)

	if len(result.Relationships) == 0 {
		t.Fatal("expected at least one relationship")
	}
	if got := len(result.Relationships[0].Evidence); got > 100 {
		t.Errorf("evidence should be truncated to 100 chars, got %d", got)
	}
}

func TestMentionCount(t *testing.T) {
	if got := MentionCount(sampleText, "Microsoft"); got != 2 {
		t.Errorf("expected 2 mentions, got %d", got)
	}
}

func TestExtractEmptyText(t *testing.T) {
	result := Extract("")
	if len(result.Entities) != 0 || len(result.Relationships) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
