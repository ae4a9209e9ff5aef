// Package families ships the prompt tables for the model families supported
// out of the box. Each table is built from a plain definition map, so the
// package doubles as a reference for authoring custom families.
package families

import "github.com/goliatone/go-promptgen/pkg/prompt"

// Built-in family names.
const (
	// Llama2 names the Llama 2 chat format.
	Llama2 = "llama2"
	// Llama3 names the Llama 3 chat format.
	Llama3 = "llama3"
)

// Conversation roles used by the built-in tables. Custom families may define
// any role names they like; these constants only cover what ships here.
const (
	RolePreamble      = "preamble"
	RoleSystem        = "system"
	RoleSystemAndUser = "system_and_user"
	RoleUser          = "user"
	RoleAssistant     = "assistant"
)

// Slot names used by the built-in tables.
const (
	SlotSystem  = "system"
	SlotMessage = "message"
)

// Tables returns freshly built tables for every built-in family. Each call
// constructs new tables, so callers can hand them to independent registries.
func Tables() []*prompt.Table {
	return []*prompt.Table{
		Llama2Table(),
		Llama3Table(),
	}
}

// Register installs every built-in family into reg. It fails when a family
// name is already taken.
func Register(reg *prompt.Registry) error {
	for _, table := range Tables() {
		if err := reg.Register(table); err != nil {
			return err
		}
	}
	return nil
}
