package main

import (
	"context"
	"flag"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
)

func (c maincmd) put(ctx context.Context, fs *flag.FlagSet, args []string) error {
	alias := fs.String("alias", "", "alias to file the content under")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	if *alias == "" {
		return errors.New("must supply -alias")
	}

	var content []byte
	if fs.NArg() > 0 {
		content, err = ioutil.ReadFile(fs.Arg(0))
		if err != nil {
			return errors.Wrapf(err, "reading %s", fs.Arg(0))
		}
	} else {
		content, err = ioutil.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "reading stdin")
		}
	}

	return c.eng.Store(ctx, *alias, content)
}
