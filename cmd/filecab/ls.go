package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/filecab/filecab"
)

func (c maincmd) ls(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	return c.eng.Aliases(ctx, func(alias string, d filecab.Digest) error {
		fmt.Printf("%s -> %s\n", alias, d)
		return nil
	})
}

func (c maincmd) digests(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	return c.eng.Blobs().ListDigests(ctx, filecab.Zero, func(d filecab.Digest) error {
		fmt.Println(d)
		return nil
	})
}
