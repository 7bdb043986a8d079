package switcher

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func sampleOptions() []Option {
	return []Option{
		{ID: "u1", Text: "Ada Lovelace", AlternateText: "ada@example.com", Kind: KindUser},
		{ID: "r1", Text: "#finance", AlternateText: "#finance", Kind: KindReport},
		{ID: "u2", Text: "grace@example.com", AlternateText: "grace@example.com", Kind: KindUser},
	}
}

func TestRowLines(t *testing.T) {
	t.Parallel()
	rows := List{FocusedIndex: 1, Options: sampleOptions()}.Rows()
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Ada Lovelace", "ada@example.com"}, rows[0].Lines)
	require.Equal(t, []string{"#finance"}, rows[1].Lines)
	require.Equal(t, []string{"grace@example.com"}, rows[2].Lines)
	require.True(t, rows[1].Focused)
	require.False(t, rows[0].Focused)
}

func TestAddOnlyForPersonRows(t *testing.T) {
	t.Parallel()
	var added []Option
	var selected []Option
	l := List{
		Options:      sampleOptions(),
		OnSelectRow:  func(o Option) { selected = append(selected, o) },
		OnAddToGroup: func(o Option) { added = append(added, o) },
	}

	require.True(t, l.AddToGroup(0))
	require.False(t, l.AddToGroup(1), "reports have no add action")
	require.False(t, l.AddToGroup(7))
	require.Equal(t, []Option{sampleOptions()[0]}, added, "callback gets the unmodified option")

	require.True(t, l.Select(1))
	require.Equal(t, []Option{sampleOptions()[1]}, selected)

	for _, row := range l.Rows() {
		require.Equal(t, row.Option.Kind == KindUser, row.CanAdd)
	}
}

func TestListIsPure(t *testing.T) {
	t.Parallel()
	l := List{FocusedIndex: 0, Options: sampleOptions()}
	require.Equal(t, l.View(30), l.View(30))
	require.Empty(t, List{}.View(30))
}

func TestViewLineCountAndClipping(t *testing.T) {
	t.Parallel()
	l := List{FocusedIndex: -1, Options: sampleOptions()}
	out := ansi.Strip(l.View(16))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4, "two lines for Ada, one each for the others")
	for _, line := range lines {
		require.LessOrEqual(t, ansi.StringWidth(line), 16)
	}
	require.Contains(t, lines[0], "[Add]")
	require.NotContains(t, lines[2], "[Add]")
}

func TestFilter(t *testing.T) {
	t.Parallel()
	opts := sampleOptions()
	require.Equal(t, opts, Filter(opts, "  "))

	got := Filter(opts, "grace")
	require.Len(t, got, 1)
	require.Equal(t, "u2", got[0].ID)

	got = Filter(opts, "finanse")
	require.Len(t, got, 1, "a near miss still matches")
	require.Equal(t, "r1", got[0].ID)

	got = Filter(opts, "example")
	require.Equal(t, []string{"u2", "u1"}, ids(got), "earliest match first")

	require.Empty(t, Filter(opts, "zzzzzz"))
}

func ids(opts []Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.ID)
	}
	return out
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, []tea.Msg) {
	t.Helper()
	var out []tea.Msg
	for _, k := range msgs {
		var cmd tea.Cmd
		m, cmd = m.Update(k)
		if cmd != nil {
			if msg := cmd(); msg != nil {
				out = append(out, msg)
			}
		}
	}
	return m, out
}

func TestModelAddThenSelect(t *testing.T) {
	t.Parallel()
	m := New(sampleOptions(), 40)

	m, msgs := press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, []tea.Msg{AddedMsg{Option: sampleOptions()[0]}}, msgs)

	m, msgs = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyTab})
	require.Empty(t, msgs, "report rows cannot be added")
	require.Len(t, m.Pending(), 1)

	m, msgs = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, msgs, 1)
	sel, ok := msgs[0].(SelectedMsg)
	require.True(t, ok)
	require.Equal(t, "u2", sel.Option.ID)
	require.Equal(t, []string{"u1"}, ids(sel.Group))
	require.Empty(t, m.Pending())
}

func TestModelTypingFilters(t *testing.T) {
	t.Parallel()
	m := New(sampleOptions(), 40)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 2, m.Focused())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("fin")})
	require.Equal(t, "fin", m.Query())
	require.Equal(t, []string{"r1"}, ids(m.Filtered()))
	require.Equal(t, 0, m.Focused())
	require.Contains(t, ansi.Strip(m.View()), "#finance")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("qqqq")})
	require.Contains(t, m.View(), "no matches")
	_, msgs := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Empty(t, msgs)
}
