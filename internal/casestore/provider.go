package casestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Options carries backend tuning shared by every store implementation.
type Options struct {
	// DataDir is where photo files live. SQL backends store paths only, so
	// they need it as much as the file backend does.
	DataDir string

	// Connection pool limits, SQL backends only.
	MaxOpenConns int
	MaxIdleConns int
}

// Factory opens a store from the part of the URI after "scheme://".
type Factory func(ctx context.Context, target string, opts Options) (Store, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// Register makes a store backend available under a URI scheme. Backends call
// it from init; commands wire them in with blank imports to avoid import
// cycles between this package and its implementations.
func Register(scheme string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic("casestore: Register factory is nil")
	}
	if _, dup := factories[scheme]; dup {
		panic("casestore: Register called twice for scheme " + scheme)
	}
	factories[scheme] = factory
}

// Open parses a store URI (file://DIR, postgres://..., mysql://...) and
// opens the matching backend.
func Open(ctx context.Context, uri string, opts Options) (Store, error) {
	scheme, target, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return nil, fmt.Errorf("store URI %q has no scheme, expected scheme://target", uri)
	}

	factoriesMu.RLock()
	factory, found := factories[scheme]
	factoriesMu.RUnlock()
	if !found {
		return nil, fmt.Errorf("unknown store scheme %q (registered: %s)", scheme, strings.Join(Schemes(), ", "))
	}

	return factory(ctx, target, opts)
}

// Schemes returns the registered scheme names sorted alphabetically.
func Schemes() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	schemes := make([]string, 0, len(factories))
	for s := range factories {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}
