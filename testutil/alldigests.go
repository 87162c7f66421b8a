package testutil

import (
	"context"
	"testing"

	"github.com/filecab/filecab"
)

// AllDigests collects every digest in s,
// in the order ListDigests produces them.
func AllDigests(ctx context.Context, t *testing.T, g filecab.Getter) []filecab.Digest {
	t.Helper()

	var out []filecab.Digest
	err := g.ListDigests(ctx, filecab.Zero, func(d filecab.Digest) error {
		out = append(out, d)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}
