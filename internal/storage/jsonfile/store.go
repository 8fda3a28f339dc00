// Package jsonfile implements the file-backed store: one JSON file per
// entity collection, rewritten wholly on every mutation. Writes go to a
// temporary file in the same directory followed by an atomic rename, so a
// reader never observes a partially written file. There is no locking
// between concurrent writers; the last write wins. Acceptable only for low
// record counts.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/readnest/readnest/internal/common"
	"github.com/readnest/readnest/internal/logging"
)

// Codec binds the generic store to one entity type: identity and ownership
// accessors, creation-time finalization, patch application, validation of
// decoded records, and the search predicate.
type Codec[T any, P any] struct {
	ID       func(*T) string
	Owner    func(*T) string
	Finalize func(*T)
	Apply    func(*T, P)
	Validate func(*T) error
	Match    func(*T, string) bool
}

type Store[T any, P any] struct {
	path  string
	codec Codec[T, P]
	log   logging.Logger
}

// New creates a store writing the named collection file under dir,
// creating dir if needed.
func New[T any, P any](dir, filename string, codec Codec[T, P], log logging.Logger) (*Store[T, P], error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store[T, P]{
		path:  filepath.Join(dir, filename),
		codec: codec,
		log:   log,
	}, nil
}

// load reads the whole collection. An absent or unparsable file yields an
// empty collection; individual records failing decode are dropped so the
// rest of the collection stays readable.
func (s *Store[T, P]) load(ctx context.Context) []*T {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.Warn(ctx, "collection file unparsable, treating as empty", "path", s.path, "error", err)
		return nil
	}

	records := make([]*T, 0, len(raw))
	for _, r := range raw {
		rec := new(T)
		if err := json.Unmarshal(r, rec); err != nil {
			s.log.Debug(ctx, "dropping undecodable record", "path", s.path, "error", err)
			continue
		}
		if err := s.codec.Validate(rec); err != nil {
			s.log.Debug(ctx, "dropping invalid record", "path", s.path, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// save rewrites the whole collection: serialize to a temp file in the same
// directory, then rename over the target path.
func (s *Store[T, P]) save(records []*T) error {
	if records == nil {
		records = []*T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s *Store[T, P]) List(ctx context.Context, owner string) ([]*T, error) {
	records := s.load(ctx)
	if owner == "" {
		return records, nil
	}
	filtered := make([]*T, 0, len(records))
	for _, r := range records {
		if s.codec.Owner(r) == owner {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (s *Store[T, P]) Get(ctx context.Context, id string) (*T, error) {
	for _, r := range s.load(ctx) {
		if s.codec.ID(r) == id {
			return r, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Store[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	records := s.load(ctx)
	s.codec.Finalize(rec)
	records = append(records, rec)
	if err := s.save(records); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store[T, P]) Update(ctx context.Context, id string, patch P) (*T, error) {
	records := s.load(ctx)
	for _, r := range records {
		if s.codec.ID(r) != id {
			continue
		}
		s.codec.Apply(r, patch)
		if err := s.save(records); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, common.ErrNotFound
}

func (s *Store[T, P]) Delete(ctx context.Context, id string) error {
	records := s.load(ctx)
	kept := make([]*T, 0, len(records))
	for _, r := range records {
		if s.codec.ID(r) != id {
			kept = append(kept, r)
		}
	}
	return s.save(kept)
}

func (s *Store[T, P]) Search(ctx context.Context, owner, query string) ([]*T, error) {
	q := strings.ToLower(query)
	matched := make([]*T, 0)
	for _, r := range s.load(ctx) {
		if owner != "" && s.codec.Owner(r) != owner {
			continue
		}
		if s.codec.Match(r, q) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}
