// Package storage persists the deduplication state and the decision audit log.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

// DefaultMaxSeenEntries bounds the persisted seen set.
const DefaultMaxSeenEntries = 10000

// seenDocument is the persisted layout. IDs are ordered oldest-first so the
// eviction order is part of the format, not an accident of trimming.
type seenDocument struct {
	LastUpdated string   `json:"last_updated"`
	SeenIDs     []string `json:"seen_ids"`
	Count       int      `json:"count"`
}

// SeenStore tracks which listing IDs have already been processed. State is
// loaded once at startup and rewritten atomically after each mutation batch.
type SeenStore struct {
	logger     *slog.Logger
	index      map[string]struct{}
	path       string
	ids        []string
	maxEntries int
	mu         sync.Mutex
}

// NewSeenStore creates a store backed by the given file and loads any
// existing state. A missing or corrupt file is tolerated: the set starts
// empty and the run continues.
func NewSeenStore(path string, maxEntries int, logger *slog.Logger) *SeenStore {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxSeenEntries
	}

	s := &SeenStore{
		path:       path,
		maxEntries: maxEntries,
		logger:     logger,
		index:      make(map[string]struct{}),
	}
	s.load()
	return s
}

func (s *SeenStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing seen-listings file, starting fresh", "path", s.path)
		} else {
			s.logger.Warn("could not read seen-listings file, starting fresh", "path", s.path, "error", err)
		}
		return
	}

	var doc seenDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("seen-listings file is corrupt, starting fresh", "path", s.path, "error", err)
		return
	}

	for _, id := range doc.SeenIDs {
		if _, dup := s.index[id]; dup {
			continue
		}
		s.ids = append(s.ids, id)
		s.index[id] = struct{}{}
	}
	s.logger.Info("loaded seen listing IDs", "count", len(s.ids))
}

// IsSeen reports whether a listing ID has been processed before.
func (s *SeenStore) IsSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// Count returns the number of recorded listing IDs.
func (s *SeenStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// FilterUnseen returns the subsequence of listings whose ID is not yet
// recorded, preserving input order.
func (s *SeenStore) FilterUnseen(listings []model.Listing) []model.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	unseen := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := s.index[l.ID]; !ok {
			unseen = append(unseen, l)
		}
	}
	return unseen
}

// MarkManySeen records a batch of listing IDs, evicts the oldest entries
// beyond the bound, and persists the whole set once.
func (s *SeenStore) MarkManySeen(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.index[id]; ok {
			continue
		}
		s.ids = append(s.ids, id)
		s.index[id] = struct{}{}
	}

	if excess := len(s.ids) - s.maxEntries; excess > 0 {
		for _, id := range s.ids[:excess] {
			delete(s.index, id)
		}
		s.ids = append([]string(nil), s.ids[excess:]...)
	}

	return s.save()
}

// save rewrites the whole document atomically: write to a temp file in the
// same directory, then rename over the target.
func (s *SeenStore) save() error {
	doc := seenDocument{
		SeenIDs:     s.ids,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Count:       len(s.ids),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode seen listings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".seen-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write seen listings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace seen listings file: %w", err)
	}

	return nil
}
