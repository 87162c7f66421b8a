// Command filecab is a CLI for filing content in, and retrieving it
// from, a filecab storage root.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/bobg/subcmd"
	log "github.com/sirupsen/logrus"

	"github.com/filecab/filecab/engine"
	"github.com/filecab/filecab/store"
	_ "github.com/filecab/filecab/store/file"
	_ "github.com/filecab/filecab/store/logging"
	_ "github.com/filecab/filecab/store/lru"
	_ "github.com/filecab/filecab/store/mem"
	_ "github.com/filecab/filecab/store/pg"
	_ "github.com/filecab/filecab/store/sqlite3"
)

type maincmd struct {
	eng *engine.Engine
}

type config struct {
	Root  string                 `json:"root"`
	Store map[string]interface{} `json:"store"`
}

func main() {
	configPath := flag.String("config", "filecab.json", "path to config file")
	flag.Parse()

	var conf config

	f, err := os.Open(*configPath)
	if os.IsNotExist(err) {
		// No config file: default root, default file store.
	} else if err != nil {
		log.Fatalf("opening config file %s: %s", *configPath, err)
	} else {
		err = json.NewDecoder(f).Decode(&conf)
		f.Close()
		if err != nil {
			log.Fatalf("decoding config file %s: %s", *configPath, err)
		}
	}

	ctx := context.Background()

	var opts []engine.Option
	if conf.Store != nil {
		typ, ok := conf.Store["type"].(string)
		if !ok {
			log.Fatalf("config file %s: store missing `type` parameter", *configPath)
		}
		s, err := store.Create(ctx, typ, conf.Store)
		if err != nil {
			log.Fatalf("creating %s-type store: %s", typ, err)
		}
		opts = append(opts, engine.WithStore(s))
	}

	eng := engine.New(conf.Root, opts...)

	err = subcmd.Run(ctx, maincmd{eng: eng}, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"init":    c.init,
		"put":     c.put,
		"get":     c.get,
		"ls":      c.ls,
		"digests": c.digests,
	}
}

func (c maincmd) init(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	return c.eng.Initialize(ctx)
}
