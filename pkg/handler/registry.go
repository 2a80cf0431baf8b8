package handler

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultRegistry holds the handlers that register themselves at init time.
var DefaultRegistry = NewRegistry()

// Registry stores handler factories by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name. Duplicate names return an error.
func (r *Registry) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("handler: factory is required")
	}
	key := NormalizeName(name)
	if key == "" {
		return fmt.Errorf("handler: handler name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("handler: handler %q already registered", key)
	}

	r.factories[key] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Get retrieves the factory registered under name.
func (r *Registry) Get(name string) (Factory, error) {
	key := NormalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("handler: handler name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("handler: handler %q not found", key)
	}
	return factory, nil
}

// New looks up name and constructs a handler with the given arguments.
func (r *Registry) New(name, theme, customTemplates, configFilePath string, config map[string]any) (Handler, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	h := factory(theme, customTemplates, configFilePath, config)
	if h == nil {
		return nil, fmt.Errorf("handler: factory %q returned nil", NormalizeName(name))
	}
	return h, nil
}

// List returns a sorted list of handler names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a handler is registered under name.
func (r *Registry) Has(name string) bool {
	key := NormalizeName(name)
	if key == "" {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[key]
	return ok
}

// NormalizeName returns the registry key for name: trimmed and lowercased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
