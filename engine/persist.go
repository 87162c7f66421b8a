package engine

import (
	"bytes"
	"os"

	"github.com/google/renameio"
	"github.com/pkg/errors"

	"github.com/filecab/filecab/index"
)

// loadIndex reads the durable index from the root.
// An absent index file is the bootstrap case and yields an empty index.
func (e *Engine) loadIndex() (*index.Index, error) {
	path := e.indexPath()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return index.New(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening index %s", path)
	}
	defer f.Close()

	idx, err := index.Parse(f)
	return idx, errors.Wrapf(err, "parsing index %s", path)
}

// commit durably replaces the index file with the union of idx and
// whatever is on disk, then adopts that union as the new in-memory
// index.
// If any step fails, the in-memory index is untouched: bindings reach
// it only by way of a successful commit.
// Re-reading under the file lock is what lets another process sharing
// the root advance the durable index between our commits without its
// additions being overwritten by our stale copy.
// The replacement itself is write-temp-then-rename, so a crash
// mid-commit leaves the previous index intact.
//
// Caller must hold the write lock.
func (e *Engine) commit(idx *index.Index) error {
	lockPath := e.indexPath() + ".lock"
	err := e.flocker.Lock(lockPath)
	if err != nil {
		return errors.Wrapf(err, "locking %s", lockPath)
	}
	defer e.flocker.Unlock(lockPath)

	durable, err := e.loadIndex()
	if err != nil {
		return err
	}
	err = durable.Merge(idx)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	err = durable.Dump(buf)
	if err != nil {
		return err
	}
	err = renameio.WriteFile(e.indexPath(), buf.Bytes(), 0644)
	if err != nil {
		return errors.Wrapf(err, "replacing index %s", e.indexPath())
	}

	e.idx = durable
	return nil
}
