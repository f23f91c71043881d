package filter

import (
	"fmt"
	"sync"
)

// Manager keeps compiled filter presets, typically loaded from configuration.
type Manager struct {
	filters map[string]*Filter
	mu      sync.RWMutex
}

// NewManager creates a new filter manager
func NewManager() *Manager {
	return &Manager{
		filters: make(map[string]*Filter),
	}
}

// Register compiles and stores a named filter, replacing any existing one.
func (m *Manager) Register(name, expression string) error {
	filter, err := Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterAll compiles and stores multiple filters. Nothing is registered if
// any expression fails to compile.
func (m *Manager) RegisterAll(filters map[string]string) error {
	compiled := make(map[string]*Filter, len(filters))
	for name, expression := range filters {
		filter, err := Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	for name, filter := range compiled {
		m.filters[name] = filter
	}
	m.mu.Unlock()

	return nil
}

// Get returns the named preset.
func (m *Manager) Get(name string) (*Filter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	filter, ok := m.filters[name]
	return filter, ok
}

// Resolve returns the named preset if one exists, otherwise compiles the
// argument as an inline expression.
func (m *Manager) Resolve(nameOrExpression string) (*Filter, error) {
	if filter, ok := m.Get(nameOrExpression); ok {
		return filter, nil
	}
	return Compile(nameOrExpression)
}
