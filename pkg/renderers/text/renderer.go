// Package text renders forms for the terminal with lipgloss.
package text

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/goliatone/go-formdoc/pkg/codec"
	"github.com/goliatone/go-formdoc/pkg/engine"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
)

// Name is the registry name of the text backend.
const Name = "text"

const (
	checked   = "\u2611"
	unchecked = "\u2610"
)

type Option func(*Renderer)

// WithRenderer sets the lipgloss renderer. The default writes to io.Discard,
// which yields plain output without colour codes.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(t *Renderer) {
		if r != nil {
			t.lg = r
		}
	}
}

// WithWidth wraps values at width columns. Zero disables wrapping.
func WithWidth(width int) Option {
	return func(t *Renderer) {
		if width >= 0 {
			t.width = width
		}
	}
}

// Renderer produces a terminal preview of a form.
type Renderer struct {
	lg    *lipgloss.Renderer
	width int
}

var _ render.Renderer = (*Renderer)(nil)

// New builds the text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{lg: lipgloss.NewRenderer(io.Discard)}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, doc render.Document, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	styles := NewStyles(r.lg, opts.Theme)
	doc = render.ApplySubset(doc, opts.Subset)

	var b strings.Builder
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Badge.Render(doc.FormID),
		styles.Title.Render(doc.Title),
	)
	b.WriteString(header)
	b.WriteString("\n")

	for _, message := range opts.FormErrors {
		b.WriteString(styles.Error.Render("! " + message))
		b.WriteString("\n")
	}

	for _, section := range doc.Sections() {
		if section.Title != "" {
			b.WriteString(styles.Section.Render(strings.ToUpper(section.Title)))
			b.WriteString("\n")
		}
		for _, inst := range section.Fields {
			b.WriteString("\n")
			b.WriteString(styles.Label.Render(inst.Label))
			b.WriteString("\n")
			b.WriteString(r.field(styles, inst))
			for _, message := range opts.Errors[inst.Key] {
				b.WriteString(styles.Error.Render("! " + message))
				b.WriteString("\n")
			}
		}
	}
	return []byte(b.String()), nil
}

func (r *Renderer) field(styles Styles, inst engine.RenderInstruction) string {
	cell := inst.Display
	value := styles.Value
	if r.width > 0 {
		value = value.Width(r.width)
	}
	line := func(s string) string {
		return value.Render(s) + "\n"
	}

	var b strings.Builder
	switch inst.Kind {
	case model.KindStringList:
		if len(cell.Lines) == 0 {
			b.WriteString(styles.Muted.Render("(none)") + "\n")
		}
		for _, entry := range cell.Lines {
			b.WriteString(line("\u2022 " + entry))
		}
	case model.KindKeyedScalarMap, model.KindKeyValueRow:
		width := 0
		for _, item := range cell.Items {
			width = max(width, lipgloss.Width(item.Label))
		}
		for _, item := range cell.Items {
			b.WriteString(line(item.Label + strings.Repeat(" ", width-lipgloss.Width(item.Label)) + "  " + item.Value))
		}
	case model.KindBooleanFlagSet:
		marks := make([]string, 0, len(cell.Checks))
		for _, check := range cell.Checks {
			mark := unchecked
			if check.Checked {
				mark = checked
			}
			marks = append(marks, mark+" "+check.Label)
		}
		b.WriteString(line(strings.Join(marks, "   ")))
	case model.KindValidationTable:
		b.WriteString(criteriaTable(styles, cell.Rows))
	case model.KindScalarMultiline:
		if cell.Text == "" {
			b.WriteString(styles.Muted.Render("(empty)") + "\n")
		}
		for _, text := range cell.Lines {
			b.WriteString(line(text))
		}
	default:
		if cell.Text == "" {
			b.WriteString(styles.Muted.Render("(empty)") + "\n")
			break
		}
		b.WriteString(line(cell.Text))
	}
	return b.String()
}

func criteriaTable(styles Styles, rows []codec.Row) string {
	if len(rows) == 0 {
		return styles.Muted.Render("(no criteria)") + "\n"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "Continuous", "Discrete", "Meaning")
	for _, row := range rows {
		label := ""
		if row.Index == 0 {
			label = limitLabel(row.Limit)
		}
		t.Row(label, row.Continuous, row.Discrete, row.Meaning)
	}
	return styles.Value.Render(t.Render()) + "\n"
}

func limitLabel(limit model.Limit) string {
	switch limit {
	case model.LimitUpper:
		return "Upper Limit"
	case model.LimitLower:
		return "Lower Limit"
	default:
		return string(limit)
	}
}
