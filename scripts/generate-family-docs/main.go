package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-promptgen"
	"github.com/goliatone/go-promptgen/pkg/familyfile"
	"github.com/goliatone/go-promptgen/pkg/prompt"
)

func main() {
	var (
		familiesPath = flag.String("families", "", "optional file or directory with extra family definitions")
		outputPath   = flag.String("output", "", "output path for the generated markdown (stdout when empty)")
	)
	flag.Parse()

	registry := promptgen.NewRegistry()
	if *familiesPath != "" {
		store, err := loadFamilies(*familiesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load family definitions: %v\n", err)
			os.Exit(1)
		}
		if err := store.RegisterAll(registry); err != nil {
			fmt.Fprintf(os.Stderr, "failed to register family definitions: %v\n", err)
			os.Exit(1)
		}
	}

	doc, err := renderDoc(registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to render family reference: %v\n", err)
		os.Exit(1)
	}

	if *outputPath == "" {
		fmt.Print(doc)
		return
	}
	if err := os.WriteFile(*outputPath, []byte(doc), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *outputPath, err)
		os.Exit(1)
	}
	fmt.Printf("✓ Wrote family reference to %s\n", *outputPath)
}

func loadFamilies(path string) (*familyfile.Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return familyfile.LoadFS(os.DirFS(path))
	}
	return familyfile.LoadFile(path)
}

// renderDoc lays out every registered family as a markdown table of roles,
// their slots, and the raw template text.
func renderDoc(registry *prompt.Registry) (string, error) {
	var b strings.Builder
	b.WriteString("# Model family reference\n")
	for _, family := range registry.List() {
		table, err := registry.Get(family)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n## %s\n\n", family)
		b.WriteString("| Role | Slots | Template |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, role := range table.Roles() {
			tmpl, ok := table.Template(role)
			if !ok {
				continue
			}
			slots := strings.Join(tmpl.Slots(), ", ")
			if slots == "" {
				slots = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | `%s` |\n", role, slots, escapeTemplate(tmpl.Source()))
		}
	}
	return b.String(), nil
}

func escapeTemplate(source string) string {
	replacer := strings.NewReplacer("\n", `\n`, "|", `\|`)
	return replacer.Replace(source)
}
