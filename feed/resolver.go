package feed

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// NameLookup performs one external address-to-name lookup
// ---------------------------------------------------------
type NameLookup interface {
	LookupName(ctx context.Context, address string) (string, error)
}

// Resolver resolves addresses to display names with a session cache.
//
// Cache entries are keyed by lower-cased address and are append-only: once
// an address has been looked up, the cached answer (including "no name") is
// returned without another external call. A lookup failure is recorded as
// "no name" for the rest of the session and never propagated; a broken name
// service must not break the feed.
type Resolver struct {
	lookup NameLookup

	mu    sync.RWMutex
	cache map[string]string // lower-cased address -> name, "" = no name

	group singleflight.Group
}

// NewResolver creates a Resolver with an empty cache
func NewResolver(lookup NameLookup) *Resolver {
	return &Resolver{
		lookup: lookup,
		cache:  make(map[string]string),
	}
}

// Resolve returns the display name for an address, if it has one.
//
// Concurrent calls for the same unresolved address share a single in-flight
// lookup, so a batch referencing one address many times costs one external
// call.
func (r *Resolver) Resolve(ctx context.Context, address string) (string, bool) {
	key := strings.ToLower(address)

	r.mu.RLock()
	name, cached := r.cache[key]
	r.mu.RUnlock()
	if cached {
		return name, name != ""
	}

	resolved, _, _ := r.group.Do(key, func() (any, error) {
		name, err := r.lookup.LookupName(ctx, key)
		if err != nil {
			name = "" // failure becomes a cached "no name" for this session
		}

		r.mu.Lock()
		r.cache[key] = name
		r.mu.Unlock()

		return name, nil
	})

	name = resolved.(string)
	return name, name != ""
}

// CacheSize returns the number of addresses decided so far
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
