package preview

import (
	"bytes"
	"fmt"
	"html"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// DefaultTemplate is the embedded document rendered when no override is
// configured.
const DefaultTemplate = "report.tpl"

type config struct {
	fsys         fs.FS
	templateName string
}

// Option customises the renderer configuration.
type Option func(*config)

// WithTemplatesFS replaces the embedded templates with a caller-supplied
// filesystem. Pass nil to keep the embedded defaults.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(c *config) {
		if fsys != nil {
			c.fsys = fsys
		}
	}
}

// WithTemplateName selects which document from the template filesystem is
// rendered.
func WithTemplateName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.templateName = name
		}
	}
}

// Renderer turns reports into HTML documents. Templates are compiled once
// and cached; the renderer is safe for concurrent use.
type Renderer struct {
	set          *pongo2.TemplateSet
	templateName string

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

// New constructs a renderer over the embedded templates unless options say
// otherwise.
func New(opts ...Option) (*Renderer, error) {
	cfg := config{fsys: TemplatesFS(), templateName: DefaultTemplate}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Renderer{
		set:          pongo2.NewSet("promptgen-preview", pongo2.NewFSLoader(cfg.fsys)),
		templateName: cfg.templateName,
		cache:        make(map[string]*pongo2.Template),
	}, nil
}

// Render produces the HTML document for a report.
func (r *Renderer) Render(report Report) ([]byte, error) {
	tmpl, err := r.load(r.templateName)
	if err != nil {
		return nil, fmt.Errorf("preview: load template %s: %w", r.templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(documentContext(report), &buf); err != nil {
		return nil, fmt.Errorf("preview: execute template %s: %w", r.templateName, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) load(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, err
	}
	r.cache[name] = tmpl
	return tmpl, nil
}

type turnContext struct {
	Position int
	Role     string
	Slots    []slotContext
	Rendered string
}

type slotContext struct {
	Name  string
	Value string
}

// documentContext maps a report onto template variables. Every string is
// made HTML-safe here: slot values are sanitised to plain text, while
// rendered prompt text is entity-escaped so marker bytes stay visible.
func documentContext(report Report) pongo2.Context {
	title := report.Title
	if title == "" {
		title = fmt.Sprintf("%s prompt preview", report.Family)
	}

	turns := make([]turnContext, 0, len(report.Turns))
	for _, turn := range report.Turns {
		slots := make([]slotContext, 0, len(turn.Slots))
		for _, slot := range turn.Slots {
			slots = append(slots, slotContext{
				Name:  html.EscapeString(slot.Name),
				Value: PlainText(slot.Value),
			})
		}
		turns = append(turns, turnContext{
			Position: turn.Position,
			Role:     html.EscapeString(turn.Role),
			Slots:    slots,
			Rendered: html.EscapeString(turn.Rendered),
		})
	}

	return pongo2.Context{
		"title":  html.EscapeString(title),
		"family": html.EscapeString(report.Family),
		"turns":  turns,
		"prompt": html.EscapeString(report.Prompt),
	}
}
