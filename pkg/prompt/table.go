package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an immutable set of role templates for one model family. All
// validation happens in NewTable; a Table that exists renders without
// configuration errors.
type Table struct {
	family string
	roles  map[string]*Template
	names  []string
}

// NewTable parses and validates every definition and returns the family's
// table. Definitions are validated in sorted role order so the first error
// reported is deterministic; any disagreement between a template string and
// its declared slots surfaces as a *MalformedTemplateError naming the
// offending role, and no table is returned on error.
func NewTable(family string, defs map[string]Definition) (*Table, error) {
	if strings.TrimSpace(family) == "" {
		return nil, fmt.Errorf("prompt: family name is required")
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("prompt: family %q declares no roles", family)
	}

	names := make([]string, 0, len(defs))
	for role := range defs {
		names = append(names, role)
	}
	sort.Strings(names)

	table := &Table{family: family, roles: make(map[string]*Template, len(defs)), names: names}
	for _, role := range names {
		if strings.TrimSpace(role) == "" {
			return nil, fmt.Errorf("prompt: family %q declares an empty role name", family)
		}
		tmpl, err := parseTemplate(family, role, defs[role])
		if err != nil {
			return nil, err
		}
		table.roles[role] = tmpl
	}

	return table, nil
}

// MustTable is NewTable panicking on error. Intended for built-in tables
// wired at package initialisation, where a malformed definition is a
// programming mistake.
func MustTable(family string, defs map[string]Definition) *Table {
	table, err := NewTable(family, defs)
	if err != nil {
		panic(err)
	}
	return table
}

// Family returns the model family name the table renders for.
func (t *Table) Family() string { return t.family }

// Roles returns the defined role names sorted alphabetically. The returned
// slice is a copy.
func (t *Table) Roles() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Template returns the parsed template for a role and whether the role is
// defined.
func (t *Table) Template(role string) (*Template, bool) {
	tmpl, ok := t.roles[role]
	return tmpl, ok
}
