// Package store is a registry of content-store implementations,
// which register themselves here from their init functions.
package store

import (
	"context"
	"fmt"

	"github.com/filecab/filecab"
)

// Factory builds a Store from a configuration map.
type Factory func(context.Context, map[string]interface{}) (filecab.Store, error)

var registry = make(map[string]Factory)

// Register associates a factory with a store-type key.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create builds a Store of the registered type named by key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (filecab.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}
