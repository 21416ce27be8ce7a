// Package storage is the disk-backed object store hosting downloadable
// archives and portfolio/product images, served under /files/.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Store struct {
	Dir string
	// BaseURL is the public prefix files are reachable under, e.g.
	// "http://localhost:8081/files".
	BaseURL string
}

func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save stores the stream under {folder}/{millis}_{name} and returns the
// public URL. The timestamp prefix keeps repeated uploads of the same file
// from colliding.
func (s *Store) Save(folder, name string, r io.Reader) (string, error) {
	folder = sanitize(folder)
	if folder == "" {
		folder = "downloads"
	}
	name = sanitize(filepath.Base(name))
	if name == "" {
		return "", fmt.Errorf("invalid file name")
	}

	fname := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name)
	dir := filepath.Join(s.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder %s: %w", folder, err)
	}
	f, err := os.Create(filepath.Join(dir, fname))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write %s: %w", fname, err)
	}
	return s.BaseURL + "/" + folder + "/" + fname, nil
}

// Resolve maps a URL back to an on-disk path when it points into this store.
// The redemption flow uses it as the first delivery tier; any other URL is
// handled by the fetch and redirect tiers.
func (s *Store) Resolve(rawURL string) (string, bool) {
	rel, ok := strings.CutPrefix(rawURL, s.BaseURL+"/")
	if !ok || rel == "" {
		return "", false
	}
	rel = filepath.Clean(filepath.FromSlash(rel))
	if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", false
	}
	path := filepath.Join(s.Dir, rel)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
