package familyfile

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-promptgen/pkg/prompt"
)

// Store holds the family tables loaded from definition documents, tracking
// which document each family came from so duplicate declarations can name
// both sources.
type Store struct {
	tables  map[string]*prompt.Table
	sources map[string]string
}

func newStore() *Store {
	return &Store{
		tables:  make(map[string]*prompt.Table),
		sources: make(map[string]string),
	}
}

// Table returns the loaded table for a family and whether it exists.
func (s *Store) Table(family string) (*prompt.Table, bool) {
	if s == nil {
		return nil, false
	}
	table, ok := s.tables[family]
	return table, ok
}

// Source returns the document a family was declared in.
func (s *Store) Source(family string) (string, bool) {
	if s == nil {
		return "", false
	}
	source, ok := s.sources[family]
	return source, ok
}

// Names returns the loaded family names sorted alphabetically.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the store holds no families.
func (s *Store) Empty() bool {
	return s == nil || len(s.tables) == 0
}

// RegisterAll installs every loaded family into reg in sorted name order, so
// collisions with already registered families surface deterministically.
func (s *Store) RegisterAll(reg *prompt.Registry) error {
	if s == nil {
		return fmt.Errorf("familyfile: store is nil")
	}
	for _, name := range s.Names() {
		if err := reg.Register(s.tables[name]); err != nil {
			return err
		}
	}
	return nil
}
