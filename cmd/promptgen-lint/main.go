package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/goliatone/go-promptgen/pkg/familyfile"
)

type violation struct {
	file    string
	message string
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint model family definition documents. Paths may be files or directories.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{
			"examples/families",
		}
	}

	var violations []violation
	for _, path := range paths {
		linted, err := lintPath(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				return violations[i].message < violations[j].message
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v.message)
		}
		os.Exit(1)
	}
}

// lintPath validates one file, or every definition document under one
// directory. Unreadable paths are hard errors; documents that fail to load
// come back as violations so the remaining paths still get checked.
func lintPath(path string) ([]violation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if !info.IsDir() {
		return lintFile(path), nil
	}

	var result []violation
	err = filepath.WalkDir(path, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !familyfile.IsDefinitionFile(p) {
			return nil
		}
		result = append(result, lintFile(p)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return result, nil
}

func lintFile(path string) []violation {
	if _, err := familyfile.LoadFile(path); err != nil {
		return []violation{{file: path, message: err.Error()}}
	}
	return nil
}
