package document

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSearchDirectory(t *testing.T) {
	tempDir := t.TempDir()
	files := map[string][]byte{
		"passport_scan.pdf":    []byte("%PDF-1.4 fake"),
		"invoice_2024.pdf":     []byte("%PDF-1.4 fake"),
		"notes.txt":            []byte("not a document"),
		"subdir/diploma.pdf":   []byte("%PDF-1.4 fake"),
		".hidden/ignored.pdf":  []byte("%PDF-1.4 fake"),
		"empty_placeholder.pdf": nil,
	}
	for name, content := range files {
		path := filepath.Join(tempDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	search := NewSearch(1024 * 1024)

	result, err := search.SearchDirectory(tempDir, "")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range result.Files {
		names = append(names, f.Name)
	}
	// txt, hidden-dir and empty files are excluded.
	want := map[string]bool{"passport_scan.pdf": true, "invoice_2024.pdf": true, "diploma.pdf": true}
	if len(names) != len(want) {
		t.Fatalf("found %v, want %v", names, want)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected file %q", n)
		}
	}
}

func TestSearchDirectoryWithQuery(t *testing.T) {
	tempDir := t.TempDir()
	for _, name := range []string{"passport_scan.pdf", "invoice_2024.pdf"} {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	search := NewSearch(1024 * 1024)
	result, err := search.SearchDirectory(tempDir, "passport")
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalCount != 1 || result.Files[0].Name != "passport_scan.pdf" {
		t.Errorf("query result = %+v", result.Files)
	}
}

func TestSearchDirectoryErrors(t *testing.T) {
	search := NewSearch(1024)
	if _, err := search.SearchDirectory("", ""); err == nil {
		t.Error("empty directory should fail")
	}
	if _, err := search.SearchDirectory("/non/existent/dir", ""); err == nil {
		t.Error("missing directory should fail")
	}
}

func TestCountDocuments(t *testing.T) {
	tempDir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "c.txt"} {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	count, err := NewSearch(1024).CountDocuments(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestMatchesQuery(t *testing.T) {
	tests := []struct {
		filename string
		query    string
		want     bool
	}{
		{"passport_scan.pdf", "passport", true},
		{"passport_scan.pdf", "scan passport", true},
		{"Invoice-2024_ACME.pdf", "acme 2024", true},
		{"Invoice-2024_ACME.pdf", "diploma", false},
		{"anything.pdf", "", true},
	}
	for _, tt := range tests {
		if got := matchesQuery(tt.filename, tt.query); got != tt.want {
			t.Errorf("matchesQuery(%q, %q) = %v, want %v", tt.filename, tt.query, got, tt.want)
		}
	}
}

func TestSplitIntoWords(t *testing.T) {
	got := splitIntoWords("Invoice-2024_ACME (final).pdf")
	want := []string{"invoice", "2024", "acme", "final", "pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitIntoWords = %v, want %v", got, want)
	}
}
