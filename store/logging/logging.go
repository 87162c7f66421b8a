// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/filecab/filecab"
	"github.com/filecab/filecab/store"
)

var _ filecab.Store = &Store{}

// Store delegates to a nested content store and logs each operation.
type Store struct {
	s filecab.Store
}

// New produces a new Store wrapping `s`.
func New(s filecab.Store) *Store {
	return &Store{s: s}
}

// Get gets the blob with digest `d` from the nested store.
func (s *Store) Get(ctx context.Context, d filecab.Digest) (filecab.Blob, error) {
	b, err := s.s.Get(ctx, d)
	if err != nil {
		log.WithError(err).Errorf("get %s", d)
	} else {
		log.Debugf("get %s", d)
	}
	return b, err
}

// Put adds a blob to the nested store if it wasn't already present.
func (s *Store) Put(ctx context.Context, b filecab.Blob) (filecab.Digest, bool, error) {
	d, added, err := s.s.Put(ctx, b)
	if err != nil {
		log.WithError(err).Error("put")
	} else {
		log.Debugf("put %s, added=%v", d, added)
	}
	return d, added, err
}

// ListDigests produces all blob digests in the nested store, in lexicographic order.
func (s *Store) ListDigests(ctx context.Context, start filecab.Digest, f func(filecab.Digest) error) error {
	log.Debugf("list digests, start=%s", start)
	return s.s.ListDigests(ctx, start, func(d filecab.Digest) error {
		err := f(d)
		if err != nil {
			log.WithError(err).Errorf("  list digests: %s", d)
		} else {
			log.Debugf("  list digests: %s", d)
		}
		return err
	})
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (filecab.Store, error) {
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
		return New(nested), nil
	})
}
