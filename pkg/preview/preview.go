// Package preview renders conversations into standalone HTML reports for
// inspection. A report shows each turn's slot inputs next to the exact text
// the formatter produced, followed by the full concatenated prompt, so
// template problems can be spotted without reading escape sequences in a
// terminal.
package preview

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-promptgen/pkg/prompt"
)

// Report is the material a preview document is built from. All strings are
// raw; escaping happens when the report is rendered to HTML.
type Report struct {
	Family string
	Title  string
	Turns  []TurnView
	Prompt string
}

// TurnView captures one rendered turn: the inputs that went in and the text
// that came out.
type TurnView struct {
	Position int
	Role     string
	Slots    []SlotView
	Rendered string
}

// SlotView is one slot's name and supplied value, ordered as the slot appears
// in the role's template.
type SlotView struct {
	Name  string
	Value string
}

// Build renders every turn through the formatter and assembles the report.
// Prompt holds the same bytes RenderConversation would produce for the same
// turns. The first failing turn aborts the build.
func Build(f *prompt.Formatter, turns []prompt.Turn) (Report, error) {
	if f == nil {
		return Report{}, fmt.Errorf("preview: formatter is required")
	}

	report := Report{Family: f.Family()}
	var full strings.Builder
	for i, turn := range turns {
		rendered, err := f.Render(turn.Role, turn.Slots)
		if err != nil {
			return Report{}, fmt.Errorf("preview: turn %d: %w", i+1, err)
		}

		names, _ := f.Slots(turn.Role)
		slots := make([]SlotView, 0, len(names))
		for _, name := range names {
			slots = append(slots, SlotView{Name: name, Value: turn.Slots[name]})
		}

		report.Turns = append(report.Turns, TurnView{
			Position: i + 1,
			Role:     turn.Role,
			Slots:    slots,
			Rendered: rendered,
		})
		full.WriteString(rendered)
	}
	report.Prompt = full.String()
	return report, nil
}
