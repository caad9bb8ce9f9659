package csv

import (
	"context"
	"strings"
	"testing"

	"github.com/synapse-kb/synapse/backend/pkg/loader"
)

type stubLoader struct {
	content []byte
	reads   int
}

func (s *stubLoader) GetFileText(_ context.Context, _ loader.GraphFile) ([]byte, error) {
	s.reads++
	return s.content, nil
}

func TestGetFileTextRendersHeaderPairs(t *testing.T) {
	stub := &stubLoader{content: []byte("name,company\nSatya Nadella,Microsoft\n")}
	l := NewCSVGraphLoader(stub)

	text, err := l.GetFileText(context.Background(), loader.GraphFile{ID: "f1", FilePath: "people.csv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := string(text)
	if !strings.Contains(got, "name: Satya Nadella") || !strings.Contains(got, "company: Microsoft") {
		t.Errorf("unexpected rendering: %q", got)
	}
}

func TestGetFileTextSynthesizesColumnsWithoutHeader(t *testing.T) {
	stub := &stubLoader{content: []byte("1,Microsoft\n2,Azure\n")}
	l := NewCSVGraphLoader(stub)

	text, err := l.GetFileText(context.Background(), loader.GraphFile{ID: "f1", FilePath: "data.csv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(text), "column_2: Microsoft") {
		t.Errorf("expected synthesized column names, got %q", string(text))
	}
}

func TestGetFileTextTSVDelimiter(t *testing.T) {
	stub := &stubLoader{content: []byte("name\tcompany\nSatya Nadella\tMicrosoft\n")}
	l := NewCSVGraphLoader(stub)

	text, err := l.GetFileText(context.Background(), loader.GraphFile{ID: "f1", FilePath: "people.tsv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(text), "company: Microsoft") {
		t.Errorf("expected tab-separated parsing, got %q", string(text))
	}
}

func TestGetFileTextCaches(t *testing.T) {
	stub := &stubLoader{content: []byte("name\nMicrosoft\n")}
	l := NewCSVGraphLoader(stub)

	file := loader.GraphFile{ID: "f1", FilePath: "data.csv"}
	if _, err := l.GetFileText(context.Background(), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.GetFileText(context.Background(), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.reads != 1 {
		t.Errorf("expected one underlying read, got %d", stub.reads)
	}
}
