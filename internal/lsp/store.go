package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"
)

type document struct {
	text    string
	version int32
}

// Store holds the latest text of every open document.
type Store struct {
	mu   sync.RWMutex
	docs map[string]document // uri -> latest contents
}

func NewStore() *Store {
	return &Store{docs: map[string]document{}}
}

// Set records text for uri unless a newer version is already stored. It
// reports whether the text was accepted.
func (s *Store) Set(uri, text string, version int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.docs[uri]; ok && version != 0 && cur.version > version {
		return false
	}
	s.docs[uri] = document{text: text, version: version}
	return true
}

func (s *Store) Get(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d.text, ok
}

func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// IsLoxURI reports whether uri names a .lox document.
func IsLoxURI(uri string) bool {
	return strings.HasSuffix(strings.ToLower(uri), ".lox")
}

// URIToPath converts a file:// URI to a local path, or "" for other
// schemes.
func URIToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return filepath.FromSlash(u.Path)
}
