// Package cache implements an in-memory cache backend.
package cache

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/kvlite/kvlite/pkg/conn/cache"
)

func init() {
	cache.Register("memory", func(context.Context, *url.URL) (cache.Backend, error) {
		return New(nil), nil
	})
}

type item struct {
	id      int64
	value   string
	created time.Time
	exp     *time.Time
}

func (it *item) Expired(now time.Time) bool {
	return it.exp != nil && it.exp.Before(now)
}

type backend struct {
	cc     clock.Clock
	names  map[string]*item
	lastID int64
	mu     sync.RWMutex
}

// New inits a new in-memory cache backend. Please use for development and testing only!
func New(cc clock.Clock) cache.Backend {
	if cc == nil {
		cc = clock.New()
	}

	return &backend{
		cc:    cc,
		names: make(map[string]*item),
	}
}

// Ping implements cache.Backend interface.
func (*backend) Ping(_ context.Context) error {
	return nil
}

// Put implements cache.Backend interface.
func (b *backend) Put(_ context.Context, name, value string, expireMinutes int) error {
	if err := cache.ValidateName(name); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	it, ok := b.names[name]
	if !ok {
		b.lastID++
		it = &item{id: b.lastID}
		b.names[name] = it
	}

	it.value = value
	it.created = b.cc.Now()
	if expireMinutes > 0 {
		exp := b.cc.Now().Add(time.Duration(expireMinutes) * time.Minute)
		it.exp = &exp
	} else {
		it.exp = nil
	}
	return nil
}

// Get implements cache.Backend interface. Expired items are returned
// as-is until swept.
func (b *backend) Get(_ context.Context, name string) (*cache.Entry, error) {
	if err := cache.ValidateName(name); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	it, ok := b.names[name]
	if !ok {
		return nil, nil
	}
	return toEntry(name, it), nil
}

// GetAll implements cache.Backend interface.
func (b *backend) GetAll(_ context.Context) ([]*cache.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var entries []*cache.Entry
	for name, it := range b.names {
		entries = append(entries, toEntry(name, it))
	}
	return entries, nil
}

// GetExpired implements cache.Backend interface.
func (b *backend) GetExpired(_ context.Context) ([]*cache.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	now := b.cc.Now()

	var entries []*cache.Entry
	for name, it := range b.names {
		if it.Expired(now) {
			entries = append(entries, toEntry(name, it))
		}
	}
	return entries, nil
}

// Count implements cache.Backend interface.
func (b *backend) Count(_ context.Context) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return int64(len(b.names)), nil
}

// Del implements cache.Backend interface.
func (b *backend) Del(_ context.Context, name string) error {
	if err := cache.ValidateName(name); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.names, name)
	return nil
}

// Sweep implements cache.Backend interface.
func (b *backend) Sweep(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.cc.Now()
	for name, it := range b.names {
		if it.Expired(now) {
			delete(b.names, name)
		}
	}
	return nil
}

// Flush implements cache.Backend interface.
func (b *backend) Flush(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.names = make(map[string]*item)
	return nil
}

// Close implements cache.Backend interface.
func (*backend) Close() error {
	return nil
}

func toEntry(name string, it *item) *cache.Entry {
	entry := &cache.Entry{
		ID:        it.id,
		Name:      name,
		Value:     it.value,
		CreatedAt: it.created,
	}
	if it.exp != nil {
		exp := *it.exp
		entry.ExpiresAt = &exp
	}
	return entry
}
