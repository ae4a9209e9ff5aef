// Package familyfile loads model family definitions from YAML or JSON
// documents. A document declares one or more families, each mapping role
// names to a template string and its slot declarations:
//
//	families:
//	  chatml:
//	    roles:
//	      user:
//	        template: "<|im_start|>user\n{message}<|im_end|>\n"
//	        slots:
//	          message: text
//
// Every definition is validated through prompt.NewTable at load time, so a
// store that loads successfully only hands out tables that render.
package familyfile

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-promptgen/pkg/prompt"
)

type documentFile struct {
	Families map[string]familySection `json:"families" yaml:"families"`
}

type familySection struct {
	Roles map[string]roleSection `json:"roles" yaml:"roles"`
}

type roleSection struct {
	Template string            `json:"template" yaml:"template"`
	Slots    map[string]string `json:"slots" yaml:"slots"`
}

// LoadFS walks fsys and loads every .json, .yaml, and .yml document found.
// Families may be spread across files; declaring the same family twice is an
// error naming both sources.
func LoadFS(fsys fs.FS) (*Store, error) {
	if fsys == nil {
		return nil, fmt.Errorf("familyfile: filesystem is nil")
	}

	store := newStore()
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !IsDefinitionFile(p) {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("familyfile: read %s: %w", p, err)
		}
		return store.parse(raw, p)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadFile loads a single definition document from the host filesystem.
func LoadFile(name string) (*Store, error) {
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("familyfile: read %s: %w", name, err)
	}
	return Parse(raw, name)
}

// Parse loads family definitions from raw document bytes. source names the
// document origin in error messages.
func Parse(raw []byte, source string) (*Store, error) {
	store := newStore()
	if err := store.parse(raw, source); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) parse(raw []byte, source string) error {
	var doc documentFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		if yamlErr := yaml.Unmarshal(raw, &doc); yamlErr != nil {
			return fmt.Errorf("familyfile: parse %s: %w", source, yamlErr)
		}
	}
	if len(doc.Families) == 0 {
		return fmt.Errorf("familyfile: %s declares no families", source)
	}

	names := make([]string, 0, len(doc.Families))
	for name := range doc.Families {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if previous, exists := s.sources[name]; exists {
			return fmt.Errorf("familyfile: duplicate family %q (declared in %s and %s)", name, previous, source)
		}
		defs, err := doc.Families[name].definitions(name, source)
		if err != nil {
			return err
		}
		table, err := prompt.NewTable(name, defs)
		if err != nil {
			return fmt.Errorf("familyfile: %s: %w", source, err)
		}
		s.tables[name] = table
		s.sources[name] = source
	}
	return nil
}

func (section familySection) definitions(family, source string) (map[string]prompt.Definition, error) {
	if len(section.Roles) == 0 {
		return nil, fmt.Errorf("familyfile: %s: family %q declares no roles", source, family)
	}

	defs := make(map[string]prompt.Definition, len(section.Roles))
	for role, spec := range section.Roles {
		def := prompt.Definition{Template: spec.Template}
		if len(spec.Slots) > 0 {
			def.Slots = make(map[string]prompt.Modality, len(spec.Slots))
			for slot, modality := range spec.Slots {
				switch modality {
				case "", string(prompt.ModalityText):
					// An omitted modality defaults to text.
					def.Slots[slot] = prompt.ModalityText
				default:
					return nil, fmt.Errorf("familyfile: %s: family %q role %q: unsupported modality %q for slot %q", source, family, role, modality, slot)
				}
			}
		}
		defs[role] = def
	}
	return defs, nil
}

// IsDefinitionFile reports whether a file name carries one of the document
// extensions the loader understands.
func IsDefinitionFile(name string) bool {
	switch path.Ext(name) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
