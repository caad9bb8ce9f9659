package loader

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
		category FileCategory
		wantErr  error
	}{
		{"text file", "notes.txt", 1024, FileCategoryDocument, nil},
		{"markdown", "README.md", 1024, FileCategoryDocument, nil},
		{"uppercase extension", "REPORT.PDF", 1024, FileCategoryDocument, nil},
		{"image", "photo.jpeg", 1024, FileCategoryImage, nil},
		{"csv", "data.csv", 1024, FileCategoryStructured, nil},
		{"json", "config.json", 1024, FileCategoryStructured, nil},
		{"at the limit", "big.txt", MaxFileSize, FileCategoryDocument, nil},
		{"over the limit", "big.txt", MaxFileSize + 1, "", ErrFileTooLarge},
		{"executable", "malware.exe", 1024, "", ErrUnsupportedType},
		{"no extension", "noext", 1024, "", ErrUnsupportedType},
		{"empty name", "   ", 1024, "", ErrMissingFileName},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			category, err := Validate(test.fileName, test.size)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("expected %v, got %v", test.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if category != test.category {
				t.Errorf("got category %q, expected %q", category, test.category)
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(GraphFile{ID: "a", FilePath: "/tmp/x.txt"})
	b := CacheKey(GraphFile{ID: "b", FilePath: "/tmp/x.txt"})
	if a == b {
		t.Error("files with different ids must have different cache keys")
	}
}
