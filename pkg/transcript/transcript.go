// Package transcript loads conversations from YAML or JSON documents so they
// can be rendered in one call. A document carries an optional family hint and
// the ordered turns:
//
//	family: llama3
//	turns:
//	  - role: preamble
//	  - role: user
//	    slots:
//	      message: Hi
//
// The loader validates shape only (turns exist, every turn names a role);
// whether roles and slots match a family's table is decided when the
// conversation is rendered.
package transcript

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-promptgen/pkg/prompt"
)

// Conversation is an ordered list of turns, optionally pinned to a model
// family by the document that declared it.
type Conversation struct {
	family string
	turns  []prompt.Turn
}

// Family returns the family hint declared by the document, or an empty
// string when the document left the family to the caller.
func (c *Conversation) Family() string {
	if c == nil {
		return ""
	}
	return c.family
}

// Turns returns the conversation turns in document order. The slice and the
// slot maps are copies; mutating them does not affect the conversation.
func (c *Conversation) Turns() []prompt.Turn {
	if c == nil {
		return nil
	}
	out := make([]prompt.Turn, len(c.turns))
	for i, turn := range c.turns {
		out[i] = prompt.Turn{Role: turn.Role, Slots: cloneSlots(turn.Slots)}
	}
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.turns)
}

// Render renders the conversation through a formatter.
func (c *Conversation) Render(f *prompt.Formatter) (string, error) {
	if c == nil {
		return "", fmt.Errorf("transcript: conversation is nil")
	}
	return f.RenderConversation(c.turns)
}

type documentFile struct {
	Family string     `json:"family" yaml:"family"`
	Turns  []turnFile `json:"turns" yaml:"turns"`
}

type turnFile struct {
	Role  string            `json:"role" yaml:"role"`
	Slots map[string]string `json:"slots" yaml:"slots"`
}

// LoadFile loads a transcript document from the host filesystem.
func LoadFile(name string) (*Conversation, error) {
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("transcript: read %s: %w", name, err)
	}
	return Parse(raw, name)
}

// LoadFS walks fsys and loads every .json, .yaml, and .yml document found,
// keyed by the document's base name without its extension. Two documents
// reducing to the same key is an error naming both sources.
func LoadFS(fsys fs.FS) (map[string]*Conversation, error) {
	if fsys == nil {
		return nil, fmt.Errorf("transcript: filesystem is nil")
	}

	conversations := make(map[string]*Conversation)
	sources := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDocumentFile(p) {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("transcript: read %s: %w", p, err)
		}
		conv, err := Parse(raw, p)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if previous, exists := sources[key]; exists {
			return fmt.Errorf("transcript: duplicate transcript %q (declared in %s and %s)", key, previous, p)
		}
		conversations[key] = conv
		sources[key] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func isDocumentFile(name string) bool {
	switch path.Ext(name) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Parse loads a conversation from raw document bytes. source names the
// document origin in error messages.
func Parse(raw []byte, source string) (*Conversation, error) {
	var doc documentFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		if yamlErr := yaml.Unmarshal(raw, &doc); yamlErr != nil {
			return nil, fmt.Errorf("transcript: parse %s: %w", source, yamlErr)
		}
	}
	if len(doc.Turns) == 0 {
		return nil, fmt.Errorf("transcript: %s declares no turns", source)
	}

	conv := &Conversation{family: doc.Family, turns: make([]prompt.Turn, 0, len(doc.Turns))}
	for i, turn := range doc.Turns {
		if turn.Role == "" {
			return nil, fmt.Errorf("transcript: %s: turn %d declares no role", source, i+1)
		}
		conv.turns = append(conv.turns, prompt.Turn{Role: turn.Role, Slots: cloneSlots(turn.Slots)})
	}
	return conv, nil
}

func cloneSlots(slots map[string]string) map[string]string {
	if len(slots) == 0 {
		return nil
	}
	out := make(map[string]string, len(slots))
	for name, value := range slots {
		out[name] = value
	}
	return out
}
