package image

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/loader"
)

type stubVisionClient struct {
	description string
	err         error

	calls      int
	lastPrompt string
	lastImage  loader.GraphBase64
}

func (s *stubVisionClient) Extract(context.Context, string, ...ai.GenerateOption) (ai.ExtractionResult, error) {
	return ai.ExtractionResult{}, errors.New("not implemented")
}

func (s *stubVisionClient) Answer(context.Context, string, string, ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubVisionClient) Embedding(context.Context, []byte) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (s *stubVisionClient) DescribeImage(_ context.Context, prompt string, image loader.GraphBase64) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastImage = image
	return s.description, s.err
}

func (s *stubVisionClient) ResetMetrics()               {}
func (s *stubVisionClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type stubLoader struct {
	data []byte
}

func (s *stubLoader) GetFileText(context.Context, loader.GraphFile) ([]byte, error) {
	return s.data, nil
}

func TestGetFileTextDescribesImage(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	client := &stubVisionClient{description: "A whiteboard listing the Synapse team."}
	l := NewImageGraphLoader(NewImageGraphLoaderParams{
		Loader:   &stubLoader{data: raw},
		AIClient: client,
	})

	text, err := l.GetFileText(context.Background(), loader.GraphFile{
		ID:       "1",
		FileName: "board.png",
		FilePath: "uploads/1/abc.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(text) != "A whiteboard listing the Synapse team." {
		t.Errorf("unexpected description: %q", text)
	}
	if client.lastPrompt != ai.ImagePrompt {
		t.Error("expected the image prompt to be used")
	}
	if client.lastImage.Base64 != base64.StdEncoding.EncodeToString(raw) {
		t.Error("expected the raw bytes to be base64 encoded")
	}
	if client.lastImage.FileType != "data:image/png;base64," {
		t.Errorf("unexpected data url prefix: %q", client.lastImage.FileType)
	}
}

func TestGetFileTextCaches(t *testing.T) {
	client := &stubVisionClient{description: "desc"}
	l := NewImageGraphLoader(NewImageGraphLoaderParams{
		Loader:   &stubLoader{data: []byte{1}},
		AIClient: client,
	})

	file := loader.GraphFile{ID: "2", FileName: "a.jpg", FilePath: "a.jpg"}
	for i := 0; i < 3; i++ {
		if _, err := l.GetFileText(context.Background(), file); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
	}
	if client.calls != 1 {
		t.Errorf("expected 1 vision call, got %d", client.calls)
	}
}

func TestGetFileTextVisionError(t *testing.T) {
	l := NewImageGraphLoader(NewImageGraphLoaderParams{
		Loader:   &stubLoader{data: []byte{1}},
		AIClient: &stubVisionClient{err: errors.New("model down")},
	})

	if _, err := l.GetFileText(context.Background(), loader.GraphFile{ID: "3", FileName: "b.png"}); err == nil {
		t.Fatal("expected error from vision failure")
	}
}

func TestEncodeUnknownExtensionDefaultsToPNG(t *testing.T) {
	b64 := Encode([]byte{1, 2}, "picture")
	if b64.FileType != "data:image/png;base64," {
		t.Errorf("unexpected prefix: %q", b64.FileType)
	}
}
