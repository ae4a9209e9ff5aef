package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// SelectConfig describes a single-choice question.
type SelectConfig struct {
	Message string
	Options []string
	Help    string
}

// MultilineConfig describes a free-form text question. Multiline input suits
// slot values, which regularly carry embedded newlines.
type MultilineConfig struct {
	Message string
	Help    string
}

// ConfirmConfig describes a yes/no question.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// Driver abstracts the interactive prompting backend so composition logic can
// be exercised without a terminal. Implementations translate their interrupt
// signal into ErrAborted.
type Driver interface {
	Select(ctx context.Context, cfg SelectConfig) (string, error)
	Multiline(ctx context.Context, cfg MultilineConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Info(ctx context.Context, message string) error
}

// NewSurveyDriver returns the terminal-backed driver used by default. Output
// written by Info goes to stdout.
func NewSurveyDriver() Driver {
	return &surveyDriver{out: os.Stdout}
}

type surveyDriver struct {
	out io.Writer
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	question := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	var answer string
	if err := survey.AskOne(question, &answer); err != nil {
		return "", translateSurveyError(err)
	}
	return answer, nil
}

func (d *surveyDriver) Multiline(ctx context.Context, cfg MultilineConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	question := &survey.Multiline{
		Message: cfg.Message,
		Help:    cfg.Help,
	}
	var answer string
	if err := survey.AskOne(question, &answer); err != nil {
		return "", translateSurveyError(err)
	}
	return answer, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	question := &survey.Confirm{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	answer := cfg.Default
	if err := survey.AskOne(question, &answer); err != nil {
		return false, translateSurveyError(err)
	}
	return answer, nil
}

func (d *surveyDriver) Info(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, message)
	return err
}

func translateSurveyError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
