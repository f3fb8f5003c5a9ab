package translator

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGlossary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write glossary: %v", err)
	}
	return path
}

func TestGlossaryApply(t *testing.T) {
	path := writeGlossary(t, `
settings:
  case_sensitive: false
terms:
  en:
    "graça": "grace"
    "Espírito Santo": "Holy Spirit"
  es:
    "gracia": "Gracia"
`)

	g, err := LoadGlossary(path)
	if err != nil {
		t.Fatalf("Failed to load glossary: %v", err)
	}

	testCases := []struct {
		name   string
		target string
		in     string
		want   string
	}{
		{"single term", "en", "pela graça somos salvos", "pela grace somos salvos"},
		{"case insensitive", "en", "Graça e paz", "grace e paz"},
		{"multi word term", "en", "o Espírito Santo nos guia", "o Holy Spirit nos guia"},
		{"other language untouched", "es", "pela graça somos salvos", "pela graça somos salvos"},
		{"no word-boundary bleed", "en", "desgraça total", "desgraça total"},
		{"unknown language passes through", "fr", "la grâce", "la grâce"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.Apply(tc.target, tc.in); got != tc.want {
				t.Errorf("Apply(%s, %q) = %q, want %q", tc.target, tc.in, got, tc.want)
			}
		})
	}
}

func TestGlossaryCaseSensitive(t *testing.T) {
	path := writeGlossary(t, `
settings:
  case_sensitive: true
terms:
  en:
    "Davi": "David"
`)

	g, err := LoadGlossary(path)
	if err != nil {
		t.Fatalf("Failed to load glossary: %v", err)
	}

	if got := g.Apply("en", "Davi reinou"); got != "David reinou" {
		t.Errorf("Expected exact-case replacement, got %q", got)
	}
	if got := g.Apply("en", "davi reinou"); got != "davi reinou" {
		t.Errorf("Expected lowercase to pass through, got %q", got)
	}
}

func TestEmptyGlossary(t *testing.T) {
	g, err := LoadGlossary("")
	if err != nil {
		t.Fatalf("Empty path should not error: %v", err)
	}
	if got := g.Apply("en", "anything at all"); got != "anything at all" {
		t.Errorf("Empty glossary must pass text through, got %q", got)
	}
}
