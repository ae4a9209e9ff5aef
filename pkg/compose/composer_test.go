package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptgen/pkg/families"
	"github.com/goliatone/go-promptgen/pkg/prompt"
)

// scriptedDriver replays canned answers and records what the composer asked.
type scriptedDriver struct {
	selections []string
	values     []string
	confirms   []bool

	asked []string
	infos []string

	selectErr error
}

func (d *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	if d.selectErr != nil {
		return "", d.selectErr
	}
	if len(d.selections) == 0 {
		return "", fmt.Errorf("scripted driver: no selection left for %q", cfg.Message)
	}
	next := d.selections[0]
	d.selections = d.selections[1:]
	return next, nil
}

func (d *scriptedDriver) Multiline(_ context.Context, cfg MultilineConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	if len(d.values) == 0 {
		return "", fmt.Errorf("scripted driver: no value left for %q", cfg.Message)
	}
	next := d.values[0]
	d.values = d.values[1:]
	return next, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	d.asked = append(d.asked, cfg.Message)
	if len(d.confirms) == 0 {
		return false, fmt.Errorf("scripted driver: no confirmation left for %q", cfg.Message)
	}
	next := d.confirms[0]
	d.confirms = d.confirms[1:]
	return next, nil
}

func (d *scriptedDriver) Info(_ context.Context, message string) error {
	d.infos = append(d.infos, message)
	return nil
}

func TestComposerRunCollectsTurns(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{
		selections: []string{families.RoleUser, families.RoleAssistant},
		values:     []string{"Hi", "Hello!"},
		confirms:   []bool{true, false},
	}

	composer, err := New(prompt.NewFormatter(families.Llama3Table()), WithDriver(driver))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	turns, err := composer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []prompt.Turn{
		{Role: families.RoleUser, Slots: map[string]string{families.SlotMessage: "Hi"}},
		{Role: families.RoleAssistant, Slots: map[string]string{families.SlotMessage: "Hello!"}},
	}
	if diff := cmp.Diff(want, turns); diff != "" {
		t.Fatalf("turns mismatch (-want +got):\n%s", diff)
	}

	// Every accepted turn was echoed back, already rendered.
	if len(driver.infos) != 2 {
		t.Fatalf("expected 2 echoed turns, got %d: %v", len(driver.infos), driver.infos)
	}
	if want := "<|start_header_id|>user<|end_header_id|>\n\nHi<|eot_id|>"; driver.infos[0] != want {
		t.Fatalf("unexpected echo:\n want %q\n  got %q", want, driver.infos[0])
	}
}

func TestComposerRunSkipsSlotPromptsForBareRoles(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{
		selections: []string{families.RolePreamble},
		confirms:   []bool{false},
	}

	composer, err := New(prompt.NewFormatter(families.Llama3Table()), WithDriver(driver), WithEcho(false))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	turns, err := composer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(turns) != 1 || turns[0].Role != families.RolePreamble || turns[0].Slots != nil {
		t.Fatalf("unexpected turns: %+v", turns)
	}
	if len(driver.infos) != 0 {
		t.Fatalf("echo disabled but Info was called: %v", driver.infos)
	}

	for _, message := range driver.asked {
		if strings.Contains(message, "slot") {
			t.Fatalf("preamble has no slots but composer asked %q", message)
		}
	}
}

func TestComposerRunPropagatesAbort(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{selectErr: ErrAborted}

	composer, err := New(prompt.NewFormatter(families.Llama2Table()), WithDriver(driver))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	turns, err := composer.Run(context.Background())
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if turns != nil {
		t.Fatalf("expected no turns on abort, got %+v", turns)
	}
}

func TestComposerRunHonoursContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	composer, err := New(prompt.NewFormatter(families.Llama2Table()), WithDriver(&scriptedDriver{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := composer.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRequiresFormatter(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatalf("expected nil formatter to fail")
	}
}
