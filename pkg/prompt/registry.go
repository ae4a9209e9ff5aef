package prompt

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores family tables by name and hands out formatters for them.
// The zero value is not usable; construct with NewRegistry. All methods are
// safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry returns an empty registry. Built-in families live in the
// families package; callers decide which to install.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Register adds a table under its family name. Nil tables and duplicate
// family names are rejected.
func (r *Registry) Register(table *Table) error {
	if r == nil {
		return fmt.Errorf("prompt: registry is nil")
	}
	if table == nil {
		return fmt.Errorf("prompt: cannot register a nil table")
	}
	family := strings.TrimSpace(table.Family())
	if family == "" {
		return fmt.Errorf("prompt: cannot register a table without a family name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[family]; exists {
		return fmt.Errorf("prompt: family %q already registered", family)
	}
	r.tables[family] = table
	return nil
}

// MustRegister panics when Register fails. Useful for wiring built-in
// families during program initialisation.
func (r *Registry) MustRegister(table *Table) {
	if err := r.Register(table); err != nil {
		panic(err)
	}
}

// Get returns the table registered for a family. Unknown families fail with
// *ConfigurationError carrying the known family names.
func (r *Registry) Get(family string) (*Table, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt: registry is nil")
	}

	r.mu.RLock()
	table, ok := r.tables[family]
	r.mu.RUnlock()
	if !ok {
		return nil, &ConfigurationError{Family: family, Known: r.List()}
	}
	return table, nil
}

// Formatter returns a formatter for a registered family. Unknown families
// fail with *ConfigurationError.
func (r *Registry) Formatter(family string) (*Formatter, error) {
	table, err := r.Get(family)
	if err != nil {
		return nil, err
	}
	return NewFormatter(table), nil
}

// Has reports whether a family is registered.
func (r *Registry) Has(family string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[family]
	return ok
}

// List returns the registered family names sorted alphabetically.
func (r *Registry) List() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
