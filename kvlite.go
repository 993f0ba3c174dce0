// Package kvlite is a generic key/value cache backed by an embedded SQLite
// database file, with optional time-based expiration.
package kvlite

import (
	"context"

	"github.com/kvlite/kvlite/internal/config"
	"github.com/kvlite/kvlite/pkg/conn/cache"

	_ "github.com/kvlite/kvlite/internal/conn/memory/cache" // memory backend
	_ "github.com/kvlite/kvlite/internal/conn/sqlite/cache" // sqlite backend
)

// Version references the code version.
const Version = "0.1.0"

// Connect connects the cache backend configured through the environment,
// see internal/config for the available settings.
func Connect(ctx context.Context) (cache.Backend, error) {
	conf, err := config.Parse()
	if err != nil {
		return nil, err
	}
	return cache.Connect(ctx, conf.CacheURL)
}

// Open opens (or creates) an embedded database file at path and returns the
// cache backend stored in it. Expired entries are swept once on open;
// long-running callers must invoke Sweep themselves. Callers own the backend
// and must Close it on every exit path.
func Open(ctx context.Context, path string) (cache.Backend, error) {
	return cache.Connect(ctx, "sqlite://"+path)
}
