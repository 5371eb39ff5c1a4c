package image

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry     = make(map[ID]Provider)
	registryLock sync.RWMutex
	defaultID    = Ubuntu
)

// Register adds a provider to the registry. Called from init() functions in
// provider implementations.
func Register(p Provider) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[p.ID()] = p
}

// Get returns a provider by ID.
func Get(id ID) (Provider, error) {
	registryLock.RLock()
	defer registryLock.RUnlock()

	p, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown base image %q (available: %v)", id, list())
	}
	return p, nil
}

// GetDefault returns the default base image provider.
func GetDefault() (Provider, error) {
	return Get(defaultID)
}

// List returns all registered image IDs, sorted.
func List() []ID {
	registryLock.RLock()
	defer registryLock.RUnlock()
	return list()
}

func list() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
