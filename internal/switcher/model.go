package switcher

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SelectedMsg is emitted when a row is chosen. Group holds the people
// queued with add-to-group before the choice.
type SelectedMsg struct {
	Option Option
	Group  []Option
}

// AddedMsg reports a person queued for the group.
type AddedMsg struct{ Option Option }

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Add    key.Binding
	Clear  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Add:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "add to group")),
		Clear:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear group")),
	}
}

// Model is the interactive switcher: a search box over a List. It owns the
// focused index and the pending group.
type Model struct {
	input    textinput.Model
	keys     keyMap
	options  []Option
	filtered []Option
	focused  int
	pending  []Option
	width    int
}

func New(options []Option, width int) Model {
	inp := textinput.New()
	inp.Placeholder = "find or start a chat"
	inp.Prompt = "> "
	inp.Focus()
	m := Model{input: inp, keys: defaultKeys(), width: width}
	m.SetOptions(options)
	return m
}

// SetOptions replaces the options and re-applies the current query.
func (m *Model) SetOptions(options []Option) {
	m.options = append([]Option(nil), options...)
	m.refilter()
}

func (m *Model) SetWidth(w int) { m.width = w }

func (m *Model) refilter() {
	m.filtered = Filter(m.options, m.input.Value())
	if m.focused >= len(m.filtered) {
		m.focused = max(0, len(m.filtered)-1)
	}
}

func (m Model) Query() string      { return m.input.Value() }
func (m Model) Focused() int       { return m.focused }
func (m Model) Filtered() []Option { return m.filtered }
func (m Model) Pending() []Option  { return append([]Option(nil), m.pending...) }
func (m Model) Bindings() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Add, m.keys.Clear}
}

func (m Model) list(onSelect, onAdd func(Option)) List {
	return List{FocusedIndex: m.focused, Options: m.filtered, OnSelectRow: onSelect, OnAddToGroup: onAdd}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Up):
			if m.focused > 0 {
				m.focused--
			}
			return m, nil
		case key.Matches(k, m.keys.Down):
			if m.focused < len(m.filtered)-1 {
				m.focused++
			}
			return m, nil
		case key.Matches(k, m.keys.Select):
			var cmd tea.Cmd
			group := m.Pending()
			m.list(func(o Option) {
				cmd = func() tea.Msg { return SelectedMsg{Option: o, Group: group} }
			}, nil).Select(m.focused)
			if cmd != nil {
				m.pending = nil
			}
			return m, cmd
		case key.Matches(k, m.keys.Add):
			var cmd tea.Cmd
			m.list(nil, func(o Option) {
				if !containsOption(m.pending, o) {
					m.pending = append(m.pending, o)
				}
				cmd = func() tea.Msg { return AddedMsg{Option: o} }
			}).AddToGroup(m.focused)
			return m, cmd
		case key.Matches(k, m.keys.Clear):
			m.pending = nil
			return m, nil
		}
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.focused = 0
		m.refilter()
	}
	return m, cmd
}

func containsOption(list []Option, o Option) bool {
	for _, p := range list {
		if p.ID == o.ID && p.Text == o.Text && p.AlternateText == o.AlternateText {
			return true
		}
	}
	return false
}

var pendingStyle = lipgloss.NewStyle().Faint(true)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	if len(m.pending) > 0 {
		names := make([]string, 0, len(m.pending))
		for _, p := range m.pending {
			names = append(names, p.Text)
		}
		b.WriteString("\n" + pendingStyle.Render("group: "+strings.Join(names, ", ")))
	}
	b.WriteString("\n")
	if len(m.filtered) == 0 {
		b.WriteString(pendingStyle.Render("no matches"))
		return b.String()
	}
	b.WriteString(m.list(nil, nil).View(m.width))
	return b.String()
}
