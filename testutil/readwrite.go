// Package testutil has helpers for testing content-store implementations.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/filecab/filecab"
)

// ReadWrite permits testing a Store implementation
// by writing some data to it,
// reading it back out to make sure it's the same,
// and checking that a second put of the same data is a no-op.
func ReadWrite(ctx context.Context, t *testing.T, s filecab.Store, data []byte) {
	d, added, err := s.Put(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("expected the blob to be added")
	}
	if want := filecab.Blob(data).Digest(); d != want {
		t.Errorf("got digest %s, want %s", d, want)
	}

	got, err := s.Get(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %d bytes that do not match the %d written", len(got), len(data))
	}

	d2, added, err := s.Put(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("expected the second put to be a no-op")
	}
	if d2 != d {
		t.Errorf("got digest %s on re-put, want %s", d2, d)
	}
}

// NotFound checks that the store reports filecab.ErrNotFound for a
// digest no blob was stored under.
func NotFound(ctx context.Context, t *testing.T, s filecab.Store) {
	_, err := s.Get(ctx, filecab.Blob("no blob was stored for this").Digest())
	if !errors.Is(err, filecab.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

// ConcurrentPut races several writers storing identical content and
// verifies the store converges on exactly one intact blob.
func ConcurrentPut(ctx context.Context, t *testing.T, s filecab.Store, data []byte) {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, _, err := s.Put(ctx, data)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	d := filecab.Blob(data).Digest()
	got, err := s.Get(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("blob corrupted by concurrent puts")
	}

	var n int
	err = s.ListDigests(ctx, filecab.Zero, func(filecab.Digest) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("got %d blobs, want 1", n)
	}
}
