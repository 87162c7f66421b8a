package filecab

import "errors"

// ErrNotFound is the error returned
// when a Getter tries to access a non-existent digest,
// and when the engine resolves an alias that was never stored.
var ErrNotFound = errors.New("not found")

// ErrAliasInUse is the error returned when storing under an alias
// that is already bound to a digest.
// An alias is single-use for the lifetime of a storage root,
// even when the content is identical.
var ErrAliasInUse = errors.New("alias already in use")

// ErrCorrupted is the error returned when the index binds an alias
// to a digest for which no blob exists.
// It is distinct from ErrNotFound:
// the alias was stored, but its content is unreadable.
var ErrCorrupted = errors.New("index references missing content")

// ErrEmptyAlias and ErrEmptyContent reject empty inputs to the engine's Store.
var (
	ErrEmptyAlias   = errors.New("empty alias")
	ErrEmptyContent = errors.New("empty content")
)

// ErrInvalidAlias rejects aliases that cannot survive the index's
// durable text form: ones containing a newline or comma, or carrying
// leading or trailing whitespace.
var ErrInvalidAlias = errors.New("invalid alias")

var errWrongLen = errors.New("wrong length")
