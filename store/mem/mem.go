// Package mem implements an in-memory content store.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/filecab/filecab"
	"github.com/filecab/filecab/store"
)

var _ filecab.Store = &Store{}

// Store is a memory-based implementation of a content store.
type Store struct {
	mu    sync.Mutex
	blobs map[filecab.Digest]filecab.Blob
}

// New produces a new Store.
func New() *Store {
	return &Store{
		blobs: make(map[filecab.Digest]filecab.Blob),
	}
}

// Get gets the blob with digest `d`.
func (s *Store) Get(_ context.Context, d filecab.Digest) (filecab.Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.blobs[d]; ok {
		return b, nil
	}
	return nil, filecab.ErrNotFound
}

// Put adds a blob to the store if it wasn't already present.
func (s *Store) Put(_ context.Context, b filecab.Blob) (filecab.Digest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added bool

	d := b.Digest()
	if _, ok := s.blobs[d]; !ok {
		s.blobs[d] = b
		added = true
	}

	return d, added, nil
}

// ListDigests produces all blob digests in the store, in lexicographic order.
func (s *Store) ListDigests(_ context.Context, start filecab.Digest, f func(filecab.Digest) error) error {
	s.mu.Lock()
	digests := make([]filecab.Digest, 0, len(s.blobs))
	for d := range s.blobs {
		digests = append(digests, d)
	}
	s.mu.Unlock()

	sort.Slice(digests, func(i, j int) bool { return digests[i].Less(digests[j]) })
	index := sort.Search(len(digests), func(n int) bool {
		return start.Less(digests[n])
	})

	for i := index; i < len(digests); i++ {
		err := f(digests[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (filecab.Store, error) {
		return New(), nil
	})
}
