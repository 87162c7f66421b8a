package lru

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"

	"github.com/filecab/filecab"
	"github.com/filecab/filecab/store/mem"
	"github.com/filecab/filecab/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s, err := New(mem.New(), 10)
	if err != nil {
		t.Fatal(err)
	}
	testutil.ReadWrite(ctx, t, s, []byte("a very long string1"))
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s, err := New(mem.New(), 10)
	if err != nil {
		t.Fatal(err)
	}
	testutil.NotFound(ctx, t, s)
}

func TestGetCaches(t *testing.T) {
	ctx := context.Background()

	counter := &countingStore{s: mem.New()}
	s, err := New(counter, 10)
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("a very long string1")

	// Put through the nested store only, so the cache starts cold.
	d, _, err := counter.Put(ctx, content)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		got, err := s.Get(ctx, d)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("got %q, want %q", got, content)
		}
	}

	if n := atomic.LoadInt64(&counter.gets); n != 1 {
		t.Errorf("nested store saw %d gets, want 1", n)
	}
}

func TestPutPrimes(t *testing.T) {
	ctx := context.Background()

	counter := &countingStore{s: mem.New()}
	s, err := New(counter, 10)
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("a very long string1")
	d, _, err := s.Put(ctx, content)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = s.Get(ctx, d); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt64(&counter.gets); n != 0 {
		t.Errorf("nested store saw %d gets, want 0", n)
	}
}

// countingStore counts Gets that reach the nested store.
type countingStore struct {
	gets int64 // atomic
	s    filecab.Store
}

func (c *countingStore) Get(ctx context.Context, d filecab.Digest) (filecab.Blob, error) {
	atomic.AddInt64(&c.gets, 1)
	return c.s.Get(ctx, d)
}

func (c *countingStore) Put(ctx context.Context, b filecab.Blob) (filecab.Digest, bool, error) {
	return c.s.Put(ctx, b)
}

func (c *countingStore) ListDigests(ctx context.Context, start filecab.Digest, f func(filecab.Digest) error) error {
	return c.s.ListDigests(ctx, start, f)
}
