package htmldoc

import (
	"context"
	"strings"
	"testing"

	"github.com/synapse-kb/synapse/backend/pkg/loader"
)

type stubLoader struct {
	content []byte
}

func (s *stubLoader) GetFileText(_ context.Context, _ loader.GraphFile) ([]byte, error) {
	return s.content, nil
}

func TestGetFileTextExtractsVisibleText(t *testing.T) {
	page := `<html><head><title>People</title><style>body{color:red}</style></head>
<body><h1>Company Notes</h1><p>Satya Nadella leads Microsoft.</p>
<script>alert("hidden")</script></body></html>`

	l := NewHTMLGraphLoader(&stubLoader{content: []byte(page)})
	text, err := l.GetFileText(context.Background(), loader.GraphFile{ID: "f1", FilePath: "page.html"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := string(text)
	if !strings.Contains(got, "Satya Nadella leads Microsoft.") {
		t.Errorf("expected paragraph text, got %q", got)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "color:red") {
		t.Errorf("script/style content should be dropped, got %q", got)
	}
}

func TestGetFileTextBlockBoundaries(t *testing.T) {
	page := `<body><p>First paragraph.</p><p>Second paragraph.</p></body>`

	l := NewHTMLGraphLoader(&stubLoader{content: []byte(page)})
	text, err := l.GetFileText(context.Background(), loader.GraphFile{ID: "f1", FilePath: "page.html"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(text), "\n") {
		t.Errorf("paragraphs should be separated by newlines, got %q", string(text))
	}
}

func TestGetFileTextArticleContent(t *testing.T) {
	page := `<html><head><title>Quarterly Review</title></head><body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<article><h1>Quarterly Review</h1>
<p>Satya Nadella opened the quarterly review with an overview of cloud revenue.
Microsoft reported continued growth across the Azure platform, with enterprise
customers migrating workloads at a steady pace throughout the quarter.</p>
<p>The infrastructure team presented capacity plans for the next two quarters,
covering new datacenter regions and the supporting network buildout.</p>
</article></body></html>`

	l := NewHTMLGraphLoader(&stubLoader{content: []byte(page)})
	text, err := l.GetFileText(context.Background(), loader.GraphFile{
		ID:       "f1",
		FileName: "review.html",
		FilePath: "review.html",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := string(text)
	if !strings.Contains(got, "cloud revenue") || !strings.Contains(got, "datacenter regions") {
		t.Errorf("expected article paragraphs, got %q", got)
	}
}
