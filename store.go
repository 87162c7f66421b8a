package filecab

import "context"

// Getter is a read-only Store (qv).
type Getter interface {
	// Get gets a blob by its digest.
	Get(context.Context, Digest) (Blob, error)

	// ListDigests calls a function for each blob digest in the store in lexicographic order,
	// beginning with the first digest _after_ the specified one.
	//
	// The calls reflect at least the set of digests
	// known at the moment ListDigests was called.
	// It is unspecified whether later changes,
	// that happen concurrently with ListDigests,
	// are reflected.
	//
	// If the callback function returns an error,
	// ListDigests exits with that error.
	ListDigests(context.Context, Digest, func(d Digest) error) error
}

// Store is a content store.
// It stores byte sequences - "blobs" - of arbitrary length.
// Each blob can be retrieved using its digest as a lookup key.
// A blob exists in a store at most once,
// no matter how many times it is put or under how many aliases it is filed.
type Store interface {
	Getter

	// Put adds b to the store if it was not already present.
	// It returns b's digest and a boolean that is true iff the blob had to be added.
	// Put is safe to call concurrently with identical content:
	// the final state is exactly one intact blob.
	Put(ctx context.Context, b Blob) (d Digest, added bool, err error)
}
