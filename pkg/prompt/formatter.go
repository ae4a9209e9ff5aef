package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Turn is one conversation step: a role plus the slot values for that role's
// template. A nil Slots map is equivalent to an empty one.
type Turn struct {
	Role  string
	Slots map[string]string
}

// Formatter renders prompts for one model family. It wraps an immutable
// table, performs no I/O, and is safe for concurrent use without locking.
type Formatter struct {
	table *Table
}

// NewFormatter wraps a validated table. It panics on a nil table; passing one
// is a programming mistake, not a runtime condition.
func NewFormatter(table *Table) *Formatter {
	if table == nil {
		panic("prompt: NewFormatter requires a table")
	}
	return &Formatter{table: table}
}

// Family returns the model family the formatter renders for.
func (f *Formatter) Family() string { return f.table.Family() }

// Roles returns the role names the formatter can render, sorted
// alphabetically.
func (f *Formatter) Roles() []string { return f.table.Roles() }

// Slots returns the slot names a role's template declares, in the order they
// first appear in the template source, and whether the role is defined.
func (f *Formatter) Slots(role string) ([]string, bool) {
	tmpl, ok := f.table.Template(role)
	if !ok {
		return nil, false
	}
	return tmpl.Slots(), true
}

// Table returns the underlying table.
func (f *Formatter) Table() *Table { return f.table }

// Render substitutes the supplied values into the role's template and returns
// the assembled string. The value set must match the declared slots exactly:
// a declared slot with no value fails with *MissingSlotError (checked in
// template-appearance order), a value matching no declared slot fails with
// *UnexpectedSlotError (checked in alphabetical order), and an undefined role
// fails with *UnknownRoleError. Values are substituted verbatim; they are
// never trimmed, escaped, or re-scanned for placeholders. On error no partial
// output is returned.
func (f *Formatter) Render(role string, slots map[string]string) (string, error) {
	tmpl, ok := f.table.Template(role)
	if !ok {
		return "", &UnknownRoleError{Family: f.table.Family(), Role: role, Roles: f.table.Roles()}
	}
	for _, slot := range tmpl.slots {
		if _, ok := slots[slot]; !ok {
			return "", &MissingSlotError{Family: f.table.Family(), Role: role, Slot: slot}
		}
	}
	if len(slots) > len(tmpl.modalities) {
		extras := make([]string, 0, len(slots)-len(tmpl.modalities))
		for name := range slots {
			if _, ok := tmpl.modalities[name]; !ok {
				extras = append(extras, name)
			}
		}
		sort.Strings(extras)
		return "", &UnexpectedSlotError{Family: f.table.Family(), Role: role, Slot: extras[0]}
	}
	return tmpl.render(slots), nil
}

// RenderConversation renders each turn in order and concatenates the results
// with no separator between turns; templates carry their own boundaries. The
// first failing turn aborts the render, wrapping the underlying typed error
// with the one-based turn position.
func (f *Formatter) RenderConversation(turns []Turn) (string, error) {
	var b strings.Builder
	for i, turn := range turns {
		rendered, err := f.Render(turn.Role, turn.Slots)
		if err != nil {
			return "", fmt.Errorf("prompt: turn %d: %w", i+1, err)
		}
		b.WriteString(rendered)
	}
	return b.String(), nil
}
