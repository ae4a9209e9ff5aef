// Package compose builds conversations interactively. A Composer walks the
// user through picking a role, filling that role's slots, and deciding
// whether to add another turn, validating each turn against the family's
// table as it is entered. The prompting backend sits behind the Driver
// interface, so tests script the session instead of driving a terminal.
package compose

import (
	"context"
	"fmt"

	"github.com/goliatone/go-promptgen/pkg/prompt"
)

// Option customises a Composer.
type Option func(*Composer)

// WithDriver replaces the terminal-backed driver. Pass a scripted
// implementation in tests.
func WithDriver(driver Driver) Option {
	return func(c *Composer) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithEcho controls whether each turn is rendered back through the driver's
// Info channel as it is captured. Enabled by default.
func WithEcho(enabled bool) Option {
	return func(c *Composer) {
		c.echo = enabled
	}
}

// Composer collects conversation turns for one model family.
type Composer struct {
	formatter *prompt.Formatter
	driver    Driver
	echo      bool
}

// New constructs a composer for the given formatter. The survey-backed
// terminal driver is used unless WithDriver replaces it.
func New(formatter *prompt.Formatter, opts ...Option) (*Composer, error) {
	if formatter == nil {
		return nil, fmt.Errorf("compose: formatter is required")
	}
	c := &Composer{
		formatter: formatter,
		driver:    NewSurveyDriver(),
		echo:      true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run drives the interactive session and returns the captured turns in entry
// order. Every turn has been rendered once against the family table before it
// is accepted, so the returned conversation renders cleanly. An interrupt
// surfaces as ErrAborted with no turns; a cancelled context surfaces as the
// context's error.
func (c *Composer) Run(ctx context.Context) ([]prompt.Turn, error) {
	roles := c.formatter.Roles()
	var turns []prompt.Turn
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		role, err := c.driver.Select(ctx, SelectConfig{
			Message: fmt.Sprintf("Role for turn %d", len(turns)+1),
			Options: roles,
			Help:    fmt.Sprintf("Roles defined by the %q family", c.formatter.Family()),
		})
		if err != nil {
			return nil, err
		}

		slots, err := c.collectSlots(ctx, role)
		if err != nil {
			return nil, err
		}

		rendered, err := c.formatter.Render(role, slots)
		if err != nil {
			return nil, fmt.Errorf("compose: render turn %d: %w", len(turns)+1, err)
		}
		if c.echo {
			if err := c.driver.Info(ctx, rendered); err != nil {
				return nil, err
			}
		}
		turns = append(turns, prompt.Turn{Role: role, Slots: slots})

		more, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Add another turn?", Default: true})
		if err != nil {
			return nil, err
		}
		if !more {
			return turns, nil
		}
	}
}

func (c *Composer) collectSlots(ctx context.Context, role string) (map[string]string, error) {
	names, ok := c.formatter.Slots(role)
	if !ok {
		return nil, fmt.Errorf("compose: family %q defines no role %q", c.formatter.Family(), role)
	}
	if len(names) == 0 {
		return nil, nil
	}

	slots := make(map[string]string, len(names))
	for _, name := range names {
		value, err := c.driver.Multiline(ctx, MultilineConfig{
			Message: fmt.Sprintf("Value for slot %q", name),
		})
		if err != nil {
			return nil, err
		}
		slots[name] = value
	}
	return slots, nil
}
