// Package engine implements the storage engine of a filecab depot:
// it files content under aliases,
// deduplicates byte-identical content via its digest,
// and keeps the alias index durable.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/bobg/flock"
	"github.com/pkg/errors"

	"github.com/filecab/filecab"
	"github.com/filecab/filecab/index"
	"github.com/filecab/filecab/store/file"
)

// DefaultRoot is the storage root used when none is supplied:
// a subdirectory of the process's working directory.
const DefaultRoot = "filecab"

const indexFileBaseName = "index"

// Engine ties a content store to an alias index rooted at a directory.
//
// An Engine starts uninitialized and becomes ready after Initialize,
// which Store and Get also trigger lazily.
// Once ready it stays ready for the life of the process.
//
// Locking discipline: a single RWMutex per Engine.
// Store holds the write lock across its whole
// check-bind-commit sequence, so two concurrent Stores can never
// interleave their read-modify-write of the index.
// Get and Aliases take the read lock for the index lookup only,
// and proceed concurrently with each other.
// Commits to the index file are additionally serialized across
// processes sharing the same root with a file lock.
type Engine struct {
	root  string
	blobs filecab.Store

	flocker flock.Locker

	mu    sync.RWMutex
	idx   *index.Index
	ready bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore directs blob storage to s instead of the default
// file-based store under the root.
// The alias index stays in the root directory either way.
func WithStore(s filecab.Store) Option {
	return func(e *Engine) {
		e.blobs = s
	}
}

// New produces an Engine rooted at root,
// or at DefaultRoot if root is empty.
// The result is uninitialized; see Initialize.
func New(root string, opts ...Option) *Engine {
	if root == "" {
		root = DefaultRoot
	}
	e := &Engine{root: root}
	for _, opt := range opts {
		opt(e)
	}
	if e.blobs == nil {
		e.blobs = file.New(filepath.Join(root, "blobs"))
	}
	return e
}

// Root returns the engine's storage root.
func (e *Engine) Root() string { return e.root }

// Blobs returns the engine's content store.
func (e *Engine) Blobs() filecab.Store { return e.blobs }

func (e *Engine) indexPath() string {
	return filepath.Join(e.root, indexFileBaseName)
}

// Initialize makes the engine ready:
// it creates the storage root recursively if missing,
// creates an empty index file if missing,
// and loads the durable index into memory.
// It is safe to call repeatedly and runs at most once;
// Store and Get call it lazily.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialize(ctx)
}

// Caller must hold the write lock.
func (e *Engine) initialize(_ context.Context) error {
	if e.ready {
		return nil
	}

	err := os.MkdirAll(e.root, 0755)
	if err != nil {
		return errors.Wrapf(err, "ensuring root %s exists", e.root)
	}

	path := e.indexPath()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err == nil {
		f.Close()
	} else if !os.IsExist(err) {
		return errors.Wrapf(err, "creating index file %s", path)
	}

	idx, err := e.loadIndex()
	if err != nil {
		return err
	}

	e.idx = idx
	e.ready = true
	return nil
}

func (e *Engine) ensureReady(ctx context.Context) error {
	e.mu.RLock()
	ready := e.ready
	e.mu.RUnlock()
	if ready {
		return nil
	}
	return e.Initialize(ctx)
}

// Store files content under alias.
//
// It fails with filecab.ErrEmptyAlias or filecab.ErrEmptyContent if
// either input is empty,
// with filecab.ErrInvalidAlias if the alias cannot survive the index's
// durable text form (see index.ValidateAlias),
// and with filecab.ErrAliasInUse if alias is already bound -
// to any digest, including this content's own.
//
// Content byte-identical to something already stored is not persisted
// again; the existing blob gains another alias.
// On success the updated index has been durably committed.
func (e *Engine) Store(ctx context.Context, alias string, content []byte) error {
	err := index.ValidateAlias(alias)
	if err != nil {
		return err
	}
	d, err := filecab.NewDigest(content)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	err = e.initialize(ctx)
	if err != nil {
		return err
	}

	if _, ok := e.idx.Digest(alias); ok {
		return errors.Wrapf(filecab.ErrAliasInUse, "storing %q", alias)
	}

	_, _, err = e.blobs.Put(ctx, filecab.Blob(content))
	if err != nil {
		return errors.Wrapf(err, "storing content for %q", alias)
	}

	// Bind into a copy; the copy becomes the in-memory index only
	// once the commit succeeds.
	// A failed commit thus leaves no phantom binding behind for a
	// later commit to persist - only an orphaned blob, which can
	// never cause an incorrect read.
	next := e.idx.Clone()
	err = next.Bind(alias, d)
	if err != nil {
		return err
	}

	return e.commit(next)
}

// Get returns the content filed under alias.
//
// It fails with filecab.ErrNotFound if alias was never stored,
// and with filecab.ErrCorrupted if alias is bound in the index but the
// blob it refers to is missing from the content store.
func (e *Engine) Get(ctx context.Context, alias string) ([]byte, error) {
	if alias == "" {
		return nil, filecab.ErrEmptyAlias
	}
	err := e.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	d, ok := e.idx.Digest(alias)
	e.mu.RUnlock()
	if !ok {
		return nil, filecab.ErrNotFound
	}

	b, err := e.blobs.Get(ctx, d)
	if errors.Is(err, filecab.ErrNotFound) {
		return nil, errors.Wrapf(filecab.ErrCorrupted, "alias %q bound to missing blob %s", alias, d)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting blob %s", d)
	}
	return b, nil
}

// Aliases calls f for each alias binding, in lexical alias order.
// If f returns an error, Aliases exits with that error.
func (e *Engine) Aliases(ctx context.Context, f func(alias string, d filecab.Digest) error) error {
	err := e.ensureReady(ctx)
	if err != nil {
		return err
	}

	e.mu.RLock()
	snapshot := e.idx.Clone()
	e.mu.RUnlock()

	return snapshot.Each(f)
}
