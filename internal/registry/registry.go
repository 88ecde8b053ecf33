// Package registry provides a global registry of environment factories.
// Environment packages register themselves in init() functions (see
// internal/env/builtin), allowing the CLI to discover and instantiate them
// by ID without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/gym2048/internal/env"
)

// EnvInfo contains metadata about a registered environment.
type EnvInfo struct {
	ID          string
	Description string
}

// Factory creates a new environment seeded with seed.
type Factory func(seed uint64) env.Environment

type entry struct {
	factory     Factory
	description string
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds an environment factory to the registry.
// Panics if an environment with the same ID is already registered.
func Register(id, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("registry: environment %q already registered", id))
	}
	entries[id] = entry{factory: f, description: description}
}

// List returns information about all registered environments, sorted by ID.
func List() []EnvInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]EnvInfo, 0, len(entries))
	for id, e := range entries {
		result = append(result, EnvInfo{ID: id, Description: e.description})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new environment by its ID.
// Returns an error if the ID is not registered.
func Create(id string, seed uint64) (env.Environment, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown environment %q", id)
	}

	return e.factory(seed), nil
}

// Exists checks if an environment with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}
