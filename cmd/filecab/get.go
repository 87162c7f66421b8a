package main

import (
	"context"
	"flag"
	"os"

	"github.com/pkg/errors"
)

func (c maincmd) get(ctx context.Context, fs *flag.FlagSet, args []string) error {
	alias := fs.String("alias", "", "alias of the content to get")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	if *alias == "" {
		return errors.New("must supply -alias")
	}

	content, err := c.eng.Get(ctx, *alias)
	if err != nil {
		return errors.Wrapf(err, "getting %q", *alias)
	}

	_, err = os.Stdout.Write(content)
	return errors.Wrap(err, "writing content")
}
