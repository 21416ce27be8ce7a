package storage

import (
	"os"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "http://localhost:8081/files/")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveResolveRoundTrip(t *testing.T) {
	s := newTestStore(t)

	url, err := s.Save("uploads", "starter kit.zip", strings.NewReader("zip bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "http://localhost:8081/files/uploads/") {
		t.Fatalf("url = %q", url)
	}
	if !strings.HasSuffix(url, "_starter_kit.zip") {
		t.Fatalf("url missing sanitized timestamped name: %q", url)
	}

	path, ok := s.Resolve(url)
	if !ok {
		t.Fatalf("Resolve(%q) failed", url)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "zip bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestSaveDefaultsFolder(t *testing.T) {
	s := newTestStore(t)
	url, err := s.Save("../..", "a.zip", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(url, "/files/downloads/") {
		t.Fatalf("traversal folder should fall back to downloads, got %q", url)
	}
}

func TestSaveRejectsEmptyName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("uploads", "...", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for name that sanitizes to nothing")
	}
}

func TestResolveRejectsForeignAndTraversalURLs(t *testing.T) {
	s := newTestStore(t)

	cases := []string{
		"https://cdn.example.com/files/a.zip",
		"http://localhost:8081/other/a.zip",
		"http://localhost:8081/files/../secrets.env",
		"http://localhost:8081/files/",
		"",
	}
	for _, u := range cases {
		if path, ok := s.Resolve(u); ok {
			t.Errorf("Resolve(%q) = (%q, true), want rejection", u, path)
		}
	}

	// Unknown but well-formed paths fail on the existence check.
	if _, ok := s.Resolve("http://localhost:8081/files/uploads/missing.zip"); ok {
		t.Error("resolved a file that does not exist")
	}
}
