// Package index maintains the mapping from content digests to the
// aliases that reference them.
package index

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/filecab/filecab"
)

// Index maps each content digest to the set of aliases bound to it.
// A reverse map from alias to digest enforces the global rule that an
// alias is bound at most once across all digests.
//
// An Index is not safe for concurrent use.
// The engine owns its Index and serializes access to it.
type Index struct {
	aliases map[filecab.Digest]map[string]struct{}
	digests map[string]filecab.Digest
}

// New produces an empty Index.
func New() *Index {
	return &Index{
		aliases: make(map[filecab.Digest]map[string]struct{}),
		digests: make(map[string]filecab.Digest),
	}
}

// Digest returns the digest the given alias is bound to,
// and whether the alias is bound at all.
func (idx *Index) Digest(alias string) (filecab.Digest, bool) {
	d, ok := idx.digests[alias]
	return d, ok
}

// Aliases returns the aliases bound to d, in lexical order.
func (idx *Index) Aliases(d filecab.Digest) []string {
	out := make([]string, 0, len(idx.aliases[d]))
	for alias := range idx.aliases[d] {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of bound aliases.
func (idx *Index) Len() int {
	return len(idx.digests)
}

// ValidateAlias reports whether alias can survive the index's durable
// text form.
// It fails with filecab.ErrEmptyAlias for an empty alias,
// and with filecab.ErrInvalidAlias for one containing a newline or
// comma (the format's separators) or carrying leading or trailing
// whitespace (which Parse trims away).
func ValidateAlias(alias string) error {
	if alias == "" {
		return filecab.ErrEmptyAlias
	}
	if strings.ContainsAny(alias, "\n\r,") || alias != strings.TrimSpace(alias) {
		return errors.Wrapf(filecab.ErrInvalidAlias, "alias %q", alias)
	}
	return nil
}

// Bind binds alias to d.
// It fails with filecab.ErrAliasInUse if alias is already bound to any
// digest, including d itself,
// and rejects aliases that ValidateAlias does.
func (idx *Index) Bind(alias string, d filecab.Digest) error {
	err := ValidateAlias(alias)
	if err != nil {
		return err
	}
	if _, ok := idx.digests[alias]; ok {
		return errors.Wrapf(filecab.ErrAliasInUse, "binding %q", alias)
	}
	idx.add(alias, d)
	return nil
}

// Clone returns an independent copy of idx.
func (idx *Index) Clone() *Index {
	out := New()
	for alias, d := range idx.digests {
		out.add(alias, d)
	}
	return out
}

// Caller must have checked that alias is unbound.
func (idx *Index) add(alias string, d filecab.Digest) {
	if idx.aliases[d] == nil {
		idx.aliases[d] = make(map[string]struct{})
	}
	idx.aliases[d][alias] = struct{}{}
	idx.digests[alias] = d
}

// Merge adds every binding in other to idx,
// unioning the alias sets of digests present in both.
// A binding already present in idx is a no-op.
// An alias that other binds to a different digest fails with
// filecab.ErrAliasInUse and leaves idx partially merged.
func (idx *Index) Merge(other *Index) error {
	for alias, d := range other.digests {
		if have, ok := idx.digests[alias]; ok {
			if have != d {
				return errors.Wrapf(filecab.ErrAliasInUse, "alias %q bound to both %s and %s", alias, have, d)
			}
			continue
		}
		idx.add(alias, d)
	}
	return nil
}

// Each calls f for each binding, in lexical alias order.
// If f returns an error, Each exits with that error.
func (idx *Index) Each(f func(alias string, d filecab.Digest) error) error {
	aliases := make([]string, 0, len(idx.digests))
	for alias := range idx.digests {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		err := f(alias, idx.digests[alias])
		if err != nil {
			return err
		}
	}
	return nil
}

// Dump writes idx to w in its durable text form:
// one line per digest,
//   <digest> : <alias1>, <alias2>, ...
// with digests and aliases in lexical order,
// so that equal indexes dump identically and Parse(Dump(idx))
// reproduces idx.
func (idx *Index) Dump(w io.Writer) error {
	digests := make([]filecab.Digest, 0, len(idx.aliases))
	for d := range idx.aliases {
		digests = append(digests, d)
	}
	sort.Slice(digests, func(i, j int) bool { return digests[i].Less(digests[j]) })

	for _, d := range digests {
		_, err := fmt.Fprintf(w, "%s : %s\n", d, strings.Join(idx.Aliases(d), ", "))
		if err != nil {
			return errors.Wrap(err, "writing index entry")
		}
	}
	return nil
}

// Parse reads the text form produced by Dump.
// Blank lines are ignored.
// A line whose digest is malformed,
// or that rebinds an alias appearing under an earlier digest,
// is an error.
func Parse(r io.Reader) (*Index, error) {
	idx := New()
	sc := bufio.NewScanner(r)
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("line %d: malformed index entry", lineno)
		}

		d, err := filecab.DigestFromHex(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: parsing digest", lineno)
		}

		for _, alias := range strings.Split(parts[1], ",") {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			err = idx.Bind(alias, d)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineno)
			}
		}
	}
	return idx, errors.Wrap(sc.Err(), "scanning index")
}
