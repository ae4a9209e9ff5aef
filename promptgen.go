// Package promptgen renders chat-style language model prompts from
// declarative per-family template tables. The root package bundles the core
// renderer with the built-in families for callers with simple needs; the
// packages under pkg/ expose the individual pieces for callers that load
// custom families, compose conversations interactively, or emit preview
// reports.
//
//	out, err := promptgen.Render("llama3", "user", map[string]string{
//		"message": "Hi",
//	})
package promptgen

import (
	"github.com/goliatone/go-promptgen/pkg/families"
	"github.com/goliatone/go-promptgen/pkg/prompt"
)

// Core types re-exported so light callers only import the root package.
type (
	Definition = prompt.Definition
	Formatter  = prompt.Formatter
	Modality   = prompt.Modality
	Registry   = prompt.Registry
	Table      = prompt.Table
	Turn       = prompt.Turn
)

// ModalityText marks a slot that accepts plain text.
const ModalityText = prompt.ModalityText

// NewRegistry returns a registry preloaded with the built-in model families.
// Custom tables can be registered on top.
func NewRegistry() *Registry {
	reg := prompt.NewRegistry()
	for _, table := range families.Tables() {
		reg.MustRegister(table)
	}
	return reg
}

// New returns a formatter for a built-in model family. Unknown families fail
// with *prompt.ConfigurationError naming the families that exist.
func New(family string) (*Formatter, error) {
	return NewRegistry().Formatter(family)
}

// Families returns the built-in family names sorted alphabetically.
func Families() []string {
	return NewRegistry().List()
}

// Render is a one-shot helper: format a single turn for a built-in family.
func Render(family, role string, slots map[string]string) (string, error) {
	formatter, err := New(family)
	if err != nil {
		return "", err
	}
	return formatter.Render(role, slots)
}

// RenderConversation is a one-shot helper: format a whole conversation for a
// built-in family.
func RenderConversation(family string, turns []Turn) (string, error) {
	formatter, err := New(family)
	if err != nil {
		return "", err
	}
	return formatter.RenderConversation(turns)
}
