package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Opener connects to a catalog backend. The returned func releases whatever
// the backend holds open and is never nil on success.
type Opener func(ctx context.Context) (Source, func(), error)

var (
	registry = make(map[string]Opener)
	mu       sync.RWMutex
)

// Register makes a backend available under name. Registering the same name
// twice replaces the earlier opener.
func Register(name string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = open
}

func Get(name string) (Opener, error) {
	mu.RLock()
	defer mu.RUnlock()
	open, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("source %q not registered (have %v)", name, listLocked())
	}
	return open, nil
}

// List returns the registered backend names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	return listLocked()
}

func listLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
