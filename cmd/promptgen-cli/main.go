package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-promptgen"
	"github.com/goliatone/go-promptgen/pkg/compose"
	"github.com/goliatone/go-promptgen/pkg/familyfile"
	"github.com/goliatone/go-promptgen/pkg/preview"
	"github.com/goliatone/go-promptgen/pkg/prompt"
	"github.com/goliatone/go-promptgen/pkg/transcript"
)

func main() {
	family := flag.String("family", "llama3", "model family to render with")
	role := flag.String("role", "", "render a single turn for this role")
	var slots slotValues
	flag.Var(&slots, "slot", "slot value as name=value (repeatable)")
	transcriptPath := flag.String("transcript", "", "transcript document to render (YAML or JSON)")
	familiesPath := flag.String("families", "", "file or directory with extra family definitions")
	list := flag.Bool("list", false, "list known families and exit")
	describe := flag.Bool("describe", false, "describe the selected family's roles and exit")
	interactive := flag.Bool("interactive", false, "compose the conversation interactively")
	previewPath := flag.String("preview", "", "write an HTML preview report to this file")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	ctx := context.Background()

	reg := promptgen.NewRegistry()
	if *familiesPath != "" {
		store, err := loadFamilies(*familiesPath)
		if err != nil {
			log.Fatalf("Failed to load families: %v", err)
		}
		if err := store.RegisterAll(reg); err != nil {
			log.Fatalf("Failed to register families: %v", err)
		}
	}

	if *list {
		for _, name := range reg.List() {
			fmt.Println(name)
		}
		return
	}

	selected := *family
	var turns []prompt.Turn
	if *transcriptPath != "" {
		conv, err := transcript.LoadFile(*transcriptPath)
		if err != nil {
			log.Fatalf("Failed to load transcript: %v", err)
		}
		if conv.Family() != "" {
			selected = conv.Family()
		}
		turns = conv.Turns()
	}

	formatter, err := reg.Formatter(selected)
	if err != nil {
		log.Fatalf("Failed to resolve family: %v", err)
	}

	if *describe {
		describeFamily(formatter)
		return
	}

	switch {
	case *interactive:
		composer, err := compose.New(formatter)
		if err != nil {
			log.Fatalf("Failed to start composer: %v", err)
		}
		turns, err = composer.Run(ctx)
		if errors.Is(err, compose.ErrAborted) {
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(1)
		}
		if err != nil {
			log.Fatalf("Failed to compose conversation: %v", err)
		}
	case *role != "":
		turns = []prompt.Turn{{Role: *role, Slots: slots.values}}
	case turns != nil:
		// Loaded from the transcript document.
	default:
		log.Fatalf("Nothing to render: pass -role, -transcript, or -interactive")
	}

	rendered, err := formatter.RenderConversation(turns)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Prompt written to %s\n", *output)
	} else {
		fmt.Println(rendered)
	}

	if *previewPath != "" {
		report, err := preview.Build(formatter, turns)
		if err != nil {
			log.Fatalf("Failed to build preview: %v", err)
		}
		renderer, err := preview.New()
		if err != nil {
			log.Fatalf("Failed to construct preview renderer: %v", err)
		}
		document, err := renderer.Render(report)
		if err != nil {
			log.Fatalf("Failed to render preview: %v", err)
		}
		if err := os.WriteFile(*previewPath, document, 0o644); err != nil {
			log.Fatalf("Failed to write preview: %v", err)
		}
		fmt.Printf("Preview written to %s\n", *previewPath)
	}
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

func describeFamily(f *prompt.Formatter) {
	fmt.Printf("family: %s\n", f.Family())
	for _, role := range f.Roles() {
		names, _ := f.Slots(role)
		if len(names) == 0 {
			fmt.Printf("  %s (no slots)\n", role)
			continue
		}
		fmt.Printf("  %s (slots: %s)\n", role, strings.Join(names, ", "))
	}
}

// slotValues collects repeated -slot name=value flags.
type slotValues struct {
	values map[string]string
}

func (s *slotValues) String() string {
	if len(s.values) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(s.values))
	for name, value := range s.values {
		pairs = append(pairs, name+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (s *slotValues) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[name] = value
	return nil
}
