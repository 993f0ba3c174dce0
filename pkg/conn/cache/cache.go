// Package cache contains abstractions and implementations
// for a cache backend.
package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// errInvalidName is returned when a name is invalid.
var errInvalidName = errors.New("name is invalid")

// Entry is a single row of the cache table.
type Entry struct {
	// ID is assigned by the engine and remains stable across overwrites.
	ID int64
	// Name is the unique business key, matched case-sensitively.
	Name string
	// Value is an opaque text payload. Callers serialize complex data
	// externally.
	Value string
	// CreatedAt is set by the engine on insert and reset on every
	// subsequent write of the same name.
	CreatedAt time.Time
	// ExpiresAt is the absolute expiry instant, nil if the entry
	// never expires.
	ExpiresAt *time.Time
}

// Expired reports whether the entry is expired at the given instant.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

// Backend defines the abstract backend. Backends are not guaranteed to be
// safe for concurrent use by multiple goroutines unless documented
// otherwise; serialize access per handle if that guarantee is needed.
type Backend interface {
	// Ping returns an error if offline.
	Ping(context.Context) error

	// Put stores value under name, replacing any previous entry with the
	// same name and resetting its creation time. With expireMinutes > 0
	// the entry expires that many minutes from now; otherwise it never
	// expires, clearing any expiry a previous write may have set.
	Put(ctx context.Context, name, value string, expireMinutes int) error

	// Get retrieves the entry stored under name, or nil if there is
	// none. Expired entries that have not been swept yet are returned
	// as-is.
	Get(ctx context.Context, name string) (*Entry, error)

	// GetAll retrieves every entry, expired or not, in backend order.
	GetAll(ctx context.Context) ([]*Entry, error)

	// GetExpired retrieves the entries a Sweep would remove.
	GetExpired(ctx context.Context) ([]*Entry, error)

	// Count returns the total number of entries, expired or not.
	Count(ctx context.Context) (int64, error)

	// Del deletes the entry stored under name. Deleting a missing name
	// is not an error.
	Del(ctx context.Context, name string) error

	// Sweep deletes every entry that is expired at the time of the call.
	Sweep(ctx context.Context) error

	// Flush deletes all stored data.
	Flush(ctx context.Context) error

	// Close closes the backend.
	Close() error
}

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Factory initializes a new backend at runtime.
type Factory func(context.Context, *url.URL) (Backend, error)

// Register registers a new backend by scheme.
// It will panic if multiple backends are registered under the same scheme.
func Register(scheme string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[scheme]; ok {
		panic("scheme " + scheme + " is already registered")
	}
	registry[scheme] = factory
}

// Connect connects a backend via URL.
func Connect(ctx context.Context, urlString string) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	u, err := url.Parse(urlString)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL %q", urlString)
	}

	factory, ok := registry[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("unknown cache type %q", u.Scheme)
	}

	return factory(ctx, u)
}

// ValidateName returns an error if name is invalid.
func ValidateName(name string) error {
	if name == "" {
		return errInvalidName
	}
	return nil
}
