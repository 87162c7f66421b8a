// Package filecab is a content-addressable file depot.
//
// A depot stores arbitrarily sized sequences of bytes,
// or _blobs_,
// and indexes them by their hash,
// which is used as a unique key.
// This key is called the blob’s _digest_.
//
// With a sufficiently good hash algorithm,
// the likelihood of any two distinct blobs “colliding” is negligible.
// This module uses sha2-256,
// which is a sufficiently good hash algorithm,
// and adds no collision handling on top of that assumption.
//
// Callers do not usually deal in digests.
// They file content under an _alias_,
// a caller-chosen name such as a filename,
// and read it back by that alias.
// An alias is bound to exactly one digest,
// once,
// for the lifetime of the depot:
// there is no rename and no delete,
// and filing a second piece of content under a used alias is an error.
// Byte-identical content filed under many aliases is persisted exactly once.
//
// The engine subpackage ties the pieces together:
// it owns the alias index,
// keeps it durable with crash-safe writes,
// and merges its commits with those of other processes sharing the same storage root.
// Blob storage itself is pluggable;
// the store subpackages provide filesystem,
// in-memory,
// and SQL-backed implementations,
// plus caching and logging wrappers.
package filecab
