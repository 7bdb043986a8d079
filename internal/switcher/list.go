// Package switcher is the chat switcher: a filtered list of people and
// reports where person rows can also be added to a pending group.
package switcher

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type Kind string

const (
	KindUser   Kind = "user"
	KindReport Kind = "report"
)

// Option is one row of the switcher.
type Option struct {
	ID            string
	Text          string
	AlternateText string
	Icon          string
	Kind          Kind
}

// IsPerson reports whether the row offers the add-to-group action.
func (o Option) IsPerson() bool { return o.Kind == KindUser }

// Lines is what the row shows: the alternate text alone when it equals the
// text, else text then alternate text.
func (o Option) Lines() []string {
	if o.Text == o.AlternateText {
		return []string{o.AlternateText}
	}
	return []string{o.Text, o.AlternateText}
}

// Row is the render model of one option.
type Row struct {
	Option  Option
	Focused bool
	Lines   []string
	CanAdd  bool
}

// List renders options and routes the row actions. It holds no state of
// its own.
type List struct {
	FocusedIndex int
	Options      []Option
	OnSelectRow  func(Option)
	OnAddToGroup func(Option)
}

func (l List) Rows() []Row {
	rows := make([]Row, 0, len(l.Options))
	for i, o := range l.Options {
		rows = append(rows, Row{
			Option:  o,
			Focused: i == l.FocusedIndex,
			Lines:   o.Lines(),
			CanAdd:  o.IsPerson(),
		})
	}
	return rows
}

// Select runs the primary action on row i.
func (l List) Select(i int) bool {
	if i < 0 || i >= len(l.Options) || l.OnSelectRow == nil {
		return false
	}
	l.OnSelectRow(l.Options[i])
	return true
}

// AddToGroup runs the secondary action on row i. Only person rows have it.
func (l List) AddToGroup(i int) bool {
	if i < 0 || i >= len(l.Options) || l.OnAddToGroup == nil {
		return false
	}
	o := l.Options[i]
	if !o.IsPerson() {
		return false
	}
	l.OnAddToGroup(o)
	return true
}

var (
	textStyle    = lipgloss.NewStyle()
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	microStyle   = lipgloss.NewStyle().Faint(true)
	addStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	focusedFrame = lipgloss.NewStyle().Background(lipgloss.Color("236"))
)

const addLabel = " [Add]"

// View renders the rows within width columns. Each line is clipped.
func (l List) View(width int) string {
	if width <= 0 || len(l.Options) == 0 {
		return ""
	}
	var b strings.Builder
	for i, row := range l.Rows() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(row, width))
	}
	return b.String()
}

func renderRow(row Row, width int) string {
	primary := textStyle
	if row.Focused {
		primary = activeStyle
	}
	avail := width
	if row.CanAdd {
		avail -= ansi.StringWidth(addLabel)
	}
	if avail < 1 {
		avail = 1
	}
	lines := make([]string, 0, len(row.Lines))
	for i, line := range row.Lines {
		line = ansi.Truncate(line, avail, "…")
		style := primary
		if i > 0 {
			style = microStyle
		}
		out := style.Render(line)
		if i == 0 && row.CanAdd {
			pad := avail - ansi.StringWidth(line)
			out += strings.Repeat(" ", pad) + addStyle.Render(addLabel)
		}
		lines = append(lines, out)
	}
	out := strings.Join(lines, "\n")
	if row.Focused {
		out = focusedFrame.Render(out)
	}
	return out
}
