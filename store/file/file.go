// Package file implements a content store as a file hierarchy.
package file

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/renameio"
	"github.com/pkg/errors"

	"github.com/filecab/filecab"
	"github.com/filecab/filecab/store"
)

var _ filecab.Store = &Store{}

// Store is a file-based implementation of a content store.
// Each blob lives in a file named after its digest,
// sharded into subdirectories to keep directories small.
type Store struct {
	root string
}

// New produces a new Store storing data beneath `root`.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) blobpath(d filecab.Digest) string {
	h := d.String()
	return filepath.Join(s.root, h[:2], h[:4], h)
}

// Get gets the blob with digest `d`.
func (s *Store) Get(_ context.Context, d filecab.Digest) (filecab.Blob, error) {
	path := s.blobpath(d)
	blob, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, filecab.ErrNotFound
	}
	return blob, errors.Wrapf(err, "reading %s", path)
}

// Put adds a blob to the store if it wasn't already present.
// The blob is written to a temporary file and renamed into place,
// so concurrent writers of identical content race harmlessly and a
// crash mid-write never leaves a partial blob visible.
func (s *Store) Put(_ context.Context, b filecab.Blob) (filecab.Digest, bool, error) {
	var (
		d    = b.Digest()
		path = s.blobpath(d)
		dir  = filepath.Dir(path)
	)

	if _, err := s.stat(d); err == nil {
		return d, false, nil
	} else if !os.IsNotExist(err) {
		return filecab.Zero, false, errors.Wrapf(err, "statting %s", path)
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return filecab.Zero, false, errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	t, err := renameio.TempFile(dir, path)
	if err != nil {
		return filecab.Zero, false, errors.Wrapf(err, "creating temp file in %s", dir)
	}
	defer t.Cleanup()

	_, err = t.Write(b)
	if err != nil {
		return filecab.Zero, false, errors.Wrapf(err, "writing data to %s", path)
	}

	err = t.CloseAtomicallyReplace()
	if err != nil {
		return filecab.Zero, false, errors.Wrapf(err, "renaming into %s", path)
	}

	return d, true, nil
}

func (s *Store) stat(d filecab.Digest) (os.FileInfo, error) {
	return os.Stat(s.blobpath(d))
}

// ListDigests produces all blob digests in the store, in lexicographic order.
func (s *Store) ListDigests(ctx context.Context, start filecab.Digest, f func(filecab.Digest) error) error {
	topLevel, err := ioutil.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", s.root)
	}

	startHex := start.String()
	topIndex := sort.Search(len(topLevel), func(n int) bool {
		return topLevel[n].Name() >= startHex[:2]
	})
	for i := topIndex; i < len(topLevel); i++ {
		topInfo := topLevel[i]
		if !topInfo.IsDir() {
			continue
		}
		topName := topInfo.Name()
		if len(topName) != 2 {
			continue
		}
		if _, err = strconv.ParseInt(topName, 16, 64); err != nil {
			continue
		}

		midLevel, err := ioutil.ReadDir(filepath.Join(s.root, topName))
		if err != nil {
			return errors.Wrapf(err, "reading dir %s/%s", s.root, topName)
		}
		midIndex := sort.Search(len(midLevel), func(n int) bool {
			return midLevel[n].Name() >= startHex[:4]
		})
		for j := midIndex; j < len(midLevel); j++ {
			midInfo := midLevel[j]
			if !midInfo.IsDir() {
				continue
			}
			midName := midInfo.Name()
			if len(midName) != 4 {
				continue
			}
			if _, err = strconv.ParseInt(midName, 16, 64); err != nil {
				continue
			}

			blobInfos, err := ioutil.ReadDir(filepath.Join(s.root, topName, midName))
			if err != nil {
				return errors.Wrapf(err, "reading dir %s/%s/%s", s.root, topName, midName)
			}

			index := sort.Search(len(blobInfos), func(n int) bool {
				return blobInfos[n].Name() > startHex
			})
			for k := index; k < len(blobInfos); k++ {
				blobInfo := blobInfos[k]
				if blobInfo.IsDir() {
					continue
				}

				d, err := filecab.DigestFromHex(blobInfo.Name())
				if err != nil {
					continue
				}

				err = f(d)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (filecab.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		return New(root), nil
	})
}
