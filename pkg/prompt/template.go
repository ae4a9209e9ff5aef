package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Definition is the authoring form of one role's template: a raw source
// string plus the slots it declares. Placeholders use {name} syntax. The
// reserved placeholders {bos} and {eos} expand to the sequence markers and
// must not appear among the declared slots.
type Definition struct {
	Template string
	Slots    map[string]Modality
}

type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentSlot
	segmentMarker
)

// segment is one parsed piece of a template source: literal text, a slot
// reference, or a marker reference. text holds the literal bytes, the slot
// name, or the marker literal respectively.
type segment struct {
	kind segmentKind
	text string
}

// Template is the parsed, validated form of a single role's definition. It is
// immutable after construction and safe for concurrent use.
type Template struct {
	family     string
	role       string
	source     string
	segments   []segment
	slots      []string
	modalities map[string]Modality
}

// Family returns the model family the template belongs to.
func (t *Template) Family() string { return t.family }

// Role returns the conversation role the template renders.
func (t *Template) Role() string { return t.role }

// Source returns the raw template string the Template was parsed from.
func (t *Template) Source() string { return t.source }

// Slots returns the declared slot names in the order their placeholders first
// appear in the template source. The returned slice is a copy.
func (t *Template) Slots() []string {
	out := make([]string, len(t.slots))
	copy(out, t.slots)
	return out
}

// Modality returns the declared modality for a slot and whether the slot is
// declared at all.
func (t *Template) Modality(slot string) (Modality, bool) {
	m, ok := t.modalities[slot]
	return m, ok
}

// render assembles the output string from the parsed segments. Callers have
// already checked that values covers the declared slots exactly.
func (t *Template) render(values map[string]string) string {
	var b strings.Builder
	b.Grow(len(t.source))
	for _, seg := range t.segments {
		switch seg.kind {
		case segmentSlot:
			b.WriteString(values[seg.text])
		default:
			b.WriteString(seg.text)
		}
	}
	return b.String()
}

// parseTemplate turns a definition into a Template, reporting every
// disagreement between the source string and the declared slots as a
// *MalformedTemplateError.
func parseTemplate(family, role string, def Definition) (*Template, error) {
	malformed := func(format string, args ...any) error {
		return &MalformedTemplateError{Family: family, Role: role, Reason: fmt.Sprintf(format, args...)}
	}

	declared := make([]string, 0, len(def.Slots))
	for slot := range def.Slots {
		declared = append(declared, slot)
	}
	sort.Strings(declared)
	for _, slot := range declared {
		if reservedPlaceholder(slot) {
			return nil, malformed("slot name %q is reserved for the sequence marker", slot)
		}
		if !isSlotName(slot) {
			return nil, malformed("slot name %q is not an identifier", slot)
		}
		if m := def.Slots[slot]; !m.Valid() {
			return nil, malformed("slot %q declares unsupported modality %q", slot, m)
		}
	}

	// Copy the declared slots so later mutation of the definition cannot
	// reach a constructed template.
	modalities := make(map[string]Modality, len(def.Slots))
	for slot, m := range def.Slots {
		modalities[slot] = m
	}

	tmpl := &Template{family: family, role: role, source: def.Template, modalities: modalities}
	used := make(map[string]bool, len(def.Slots))
	rest := def.Template
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		closing := strings.IndexByte(rest, '}')
		if open == -1 && closing == -1 {
			tmpl.segments = append(tmpl.segments, segment{kind: segmentLiteral, text: rest})
			break
		}
		if closing != -1 && (open == -1 || closing < open) {
			return nil, malformed("unmatched %q", "}")
		}
		if closing == -1 {
			return nil, malformed("unterminated placeholder")
		}
		if open > 0 {
			tmpl.segments = append(tmpl.segments, segment{kind: segmentLiteral, text: rest[:open]})
		}
		name := rest[open+1 : closing]
		rest = rest[closing+1:]
		switch {
		case name == "":
			return nil, malformed("empty placeholder")
		case name == bosPlaceholder:
			tmpl.segments = append(tmpl.segments, segment{kind: segmentMarker, text: BOSMarker})
		case name == eosPlaceholder:
			tmpl.segments = append(tmpl.segments, segment{kind: segmentMarker, text: EOSMarker})
		case !isSlotName(name):
			return nil, malformed("placeholder %q is not an identifier", name)
		default:
			if _, ok := def.Slots[name]; !ok {
				return nil, malformed("placeholder %q has no declared slot", name)
			}
			if !used[name] {
				used[name] = true
				tmpl.slots = append(tmpl.slots, name)
			}
			tmpl.segments = append(tmpl.segments, segment{kind: segmentSlot, text: name})
		}
	}
	for _, slot := range declared {
		if !used[slot] {
			return nil, malformed("declared slot %q never appears in the template", slot)
		}
	}

	return tmpl, nil
}

// isSlotName reports whether s is a valid placeholder identifier: ASCII
// letters, digits, and underscores, not starting with a digit.
func isSlotName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
