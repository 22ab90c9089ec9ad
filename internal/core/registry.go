package core

import (
	"sort"
	"strings"
	"sync"
)

// Patcher rewrites repodata records for one family of subdirs.
type Patcher interface {
	// Patch returns the patched form of rec. It must not modify rec; when
	// nothing applies it may return rec itself.
	Patch(rec Record) (Record, error)
}

// PatcherFunc adapts a function to the Patcher interface.
type PatcherFunc func(rec Record) (Record, error)

func (f PatcherFunc) Patch(rec Record) (Record, error) {
	return f(rec)
}

// Factory creates a patcher for a given subdir.
type Factory func(subdir string) Patcher

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a patcher factory for every subdir starting with prefix
// (e.g. "win-").
func Register(prefix string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[prefix] = factory
}

// PatcherFor returns the patcher for subdir, or nil if no registered prefix
// matches. The longest matching prefix wins.
func PatcherFor(subdir string) Patcher {
	mu.RLock()
	defer mu.RUnlock()

	best := ""
	var factory Factory
	for prefix, f := range factories {
		if strings.HasPrefix(subdir, prefix) && len(prefix) >= len(best) {
			best = prefix
			factory = f
		}
	}
	if factory == nil {
		return nil
	}
	return factory(subdir)
}

// SupportedPlatforms returns all registered subdir prefixes, sorted.
func SupportedPlatforms() []string {
	mu.RLock()
	defer mu.RUnlock()

	prefixes := make([]string, 0, len(factories))
	for p := range factories {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}
