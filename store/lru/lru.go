// Package lru implements a content store that acts as a least-recently-used
// cache for a nested content store.
package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/filecab/filecab"
	"github.com/filecab/filecab/store"
)

var _ filecab.Store = &Store{}

// Store implements a memory-based least-recently-used cache for a
// content store.
// Writes pass through to the underlying store.
// Blobs are immutable, so a cache entry can never be stale.
type Store struct {
	c *lru.Cache // Digest -> Blob
	s filecab.Store
}

// New produces a new Store backed by `s` and caching up to `size` blobs.
func New(s filecab.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

// Get gets the blob with digest `d`.
func (s *Store) Get(ctx context.Context, d filecab.Digest) (filecab.Blob, error) {
	if got, ok := s.c.Get(d); ok {
		return got.(filecab.Blob), nil
	}
	got, err := s.s.Get(ctx, d)
	if err != nil {
		return nil, err
	}
	s.c.Add(d, got)
	return got, nil
}

// Put adds a blob to the underlying store if it wasn't already present.
func (s *Store) Put(ctx context.Context, b filecab.Blob) (filecab.Digest, bool, error) {
	d, added, err := s.s.Put(ctx, b)
	if err != nil {
		return d, added, err
	}
	s.c.Add(d, b)
	return d, added, nil
}

// ListDigests produces all blob digests in the underlying store, in lexicographic order.
func (s *Store) ListDigests(ctx context.Context, start filecab.Digest, f func(filecab.Digest) error) error {
	return s.s.ListDigests(ctx, start, f)
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (filecab.Store, error) {
		size, ok := conf["size"].(float64)
		if !ok {
			return nil, errors.New(`missing "size" parameter`)
		}
		nestedConf, ok := conf["nested"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedType, ok := nestedConf["type"].(string)
		if !ok {
			return nil, errors.New(`missing "type" parameter in "nested"`)
		}
		nested, err := store.Create(ctx, nestedType, nestedConf)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nested, int(size))
	})
}
