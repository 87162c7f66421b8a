package filecab

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

type (
	// Blob is the type of stored content.
	Blob []byte

	// Digest is the identity of a blob: its sha256 hash.
	Digest [sha256.Size]byte
)

// Digest computes the Digest of a blob.
func (b Blob) Digest() Digest {
	return sha256.Sum256(b)
}

// NewDigest computes the digest of content.
// Empty content has no digest and fails with ErrEmptyContent.
func NewDigest(content []byte) (Digest, error) {
	if len(content) == 0 {
		return Zero, ErrEmptyContent
	}
	return Blob(content).Digest(), nil
}

// Zero is the zero value of a Digest.
var Zero Digest

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) Less(other Digest) bool {
	return bytes.Compare(d[:], other[:]) < 0
}

func (d *Digest) FromHex(s string) error {
	if len(s) != 2*sha256.Size {
		return errWrongLen
	}
	_, err := hex.Decode(d[:], []byte(s))
	return err
}

// DigestFromBytes converts a byte slice to a Digest.
func DigestFromBytes(b []byte) Digest {
	var out Digest
	copy(out[:], b)
	return out
}

// DigestFromHex parses the hex form of a digest,
// the form produced by Digest.String.
func DigestFromHex(s string) (Digest, error) {
	var out Digest
	err := out.FromHex(s)
	return out, err
}
