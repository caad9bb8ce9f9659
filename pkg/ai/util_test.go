package ai

import (
	"testing"
)

func TestUnmarshalFlexible(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "valid json",
			input:    `{"name": "Microsoft"}`,
			expected: "Microsoft",
		},
		{
			name:     "double encoded",
			input:    `"{\"name\": \"Microsoft\"}"`,
			expected: "Microsoft",
		},
		{
			name:     "unquoted keys repaired",
			input:    `{name: "Microsoft"}`,
			expected: "Microsoft",
		},
		{
			name:     "duplicate leading brace",
			input:    `{ {"name": "Microsoft"}`,
			expected: "Microsoft",
		},
		{
			name:     "trailing comma repaired",
			input:    `{"name": "Microsoft",}`,
			expected: "Microsoft",
		},
		{
			name:    "not json at all",
			input:   `<<<>>>`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var out payload
			err := UnmarshalFlexible(test.input, &out)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil (out=%+v)", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Name != test.expected {
				t.Errorf("got name %q, expected %q", out.Name, test.expected)
			}
		})
	}
}

func TestGenerateSchemaInlinesDefinitions(t *testing.T) {
	schema := GenerateSchema(&ExtractionResult{})
	if schema == nil {
		t.Fatal("expected schema, got nil")
	}
}

func TestExtractionPromptContainsText(t *testing.T) {
	prompt := ExtractionPrompt("Satya Nadella is the CEO of Microsoft.")
	if prompt == "" || len(prompt) < len("Satya Nadella") {
		t.Fatalf("unexpected prompt %q", prompt)
	}
}
