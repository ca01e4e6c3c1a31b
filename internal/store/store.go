// Package store keeps the gallery's single JSON document. Every logical
// operation loads the full document, and every mutation rewrites it in full.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
)

// Backend persists the raw document bytes.
type Backend interface {
	// Load returns the stored bytes; exists is false when nothing was ever saved.
	Load(ctx context.Context) (data []byte, exists bool, err error)
	Save(ctx context.Context, data []byte) error
}

// Store serializes read-modify-write cycles against one document.
type Store struct {
	mu      sync.RWMutex
	backend Backend
}

// Open wraps backend and writes an empty document if none exists yet.
func Open(ctx context.Context, backend Backend) (*Store, error) {
	s := &Store{backend: backend}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists, err := backend.Load(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrPersistence, "failed to open data store: %v", err)
	}
	if !exists {
		if err := s.write(ctx, entity.NewDocument()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Read loads and decodes the full document.
func (s *Store) Read(ctx context.Context) (*entity.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(ctx)
}

// Write replaces the persisted document in full.
func (s *Store) Write(ctx context.Context, doc *entity.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, doc)
}

// Update runs fn against a freshly loaded document and persists the result.
// No other Update or Read interleaves with it. If fn returns an error the
// document is left as it was and the error is returned unchanged.
func (s *Store) Update(ctx context.Context, fn func(doc *entity.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(ctx, doc)
}

func (s *Store) read(ctx context.Context) (*entity.Document, error) {
	data, exists, err := s.backend.Load(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrPersistence, "failed to read data store: %v", err)
	}
	if !exists {
		return entity.NewDocument(), nil
	}
	return Decode(data)
}

func (s *Store) write(ctx context.Context, doc *entity.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return apperror.Wrap(apperror.ErrPersistence, "failed to encode data store: %v", err)
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return apperror.Wrap(apperror.ErrPersistence, "failed to write data store: %v", err)
	}
	return nil
}

// rawDocument uses raw fields so a missing key can be told apart from an empty one.
type rawDocument struct {
	Users    json.RawMessage `json:"users"`
	Artworks json.RawMessage `json:"artworks"`
}

// Decode parses document bytes, rejecting anything that is not the expected shape.
func Decode(data []byte) (*entity.Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, corrupt("document is not a JSON object: %v", err)
	}
	if !isJSONKind(raw.Users, '{') {
		return nil, corrupt("users must be an object")
	}
	if !isJSONKind(raw.Artworks, '[') {
		return nil, corrupt("artworks must be an array")
	}

	doc := entity.NewDocument()
	if err := json.Unmarshal(raw.Users, &doc.Users); err != nil {
		return nil, corrupt("invalid users: %v", err)
	}
	if err := json.Unmarshal(raw.Artworks, &doc.Artworks); err != nil {
		return nil, corrupt("invalid artworks: %v", err)
	}

	for key, u := range doc.Users {
		if u == nil {
			return nil, corrupt("user %q is null", key)
		}
		if u.ID == "" {
			u.ID = key
		}
		if u.ID != key {
			return nil, corrupt("user key %q does not match id %q", key, u.ID)
		}
		if u.UploadIDs == nil {
			u.UploadIDs = []string{}
		}
	}
	for i, a := range doc.Artworks {
		if a.ID == "" {
			return nil, corrupt("artwork at index %d has no id", i)
		}
	}
	return doc, nil
}

// Encode renders the document the way the original db.json was written.
func Encode(doc *entity.Document) ([]byte, error) {
	if doc.Users == nil {
		doc.Users = make(map[string]*entity.User)
	}
	if doc.Artworks == nil {
		doc.Artworks = make([]entity.Artwork, 0)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func isJSONKind(raw json.RawMessage, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open
}

func corrupt(format string, args ...any) error {
	return apperror.Wrap(apperror.ErrCorruptStore, "data store is corrupt: %s", fmt.Sprintf(format, args...))
}
