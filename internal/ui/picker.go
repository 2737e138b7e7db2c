package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/xkcdterm/internal/comic"
)

const (
	defaultPickerWidth  = 80
	defaultPickerHeight = 20
)

// Picker is the interactive fuzzy title search.
type Picker struct {
	ThemeName string
	// Output defaults to stderr so stdout stays free for the image.
	Output io.Writer
	Input  io.Reader
}

var _ comic.Picker = (*Picker)(nil)

// Pick shows entries as "<id>: <title>" and returns the one the user chose.
// Leaving without a choice returns comic.ErrSelectionCancelled.
func (p *Picker) Pick(ctx context.Context, entries []comic.Entry) (comic.Entry, error) {
	if len(entries) == 0 {
		return comic.Entry{}, fmt.Errorf("no comics to choose from: %w", comic.ErrNotFound)
	}

	out := p.Output
	if out == nil {
		out = os.Stderr
	}
	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithOutput(out),
	}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}

	final, err := tea.NewProgram(newPickerModel(entries, GetTheme(p.ThemeName)), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return comic.Entry{}, ctx.Err()
		}
		return comic.Entry{}, fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.chosen == nil {
		return comic.Entry{}, comic.ErrSelectionCancelled
	}
	return *m.chosen, nil
}

// entryItem adapts a comic entry to the list component.
type entryItem struct {
	comic.Entry
}

func (i entryItem) Title() string       { return i.Label() }
func (i entryItem) Description() string { return "" }
func (i entryItem) FilterValue() string { return i.Label() }

type pickerModel struct {
	list   list.Model
	keys   keyMap
	chosen *comic.Entry
}

func newPickerModel(entries []comic.Entry, theme Theme) pickerModel {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{e}
	}

	styles := theme.Styles()
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.NormalTitle = styles.Text.Padding(0, 0, 0, 2)
	delegate.Styles.DimmedTitle = styles.FaintText.Padding(0, 0, 0, 2)
	delegate.Styles.SelectedTitle = styles.Selected.
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(0, 0, 0, 1)
	delegate.Styles.FilterMatch = styles.Match

	keys := defaultKeyMap()
	l := list.New(items, delegate, defaultPickerWidth, defaultPickerHeight)
	l.Title = "xkcd"
	l.Styles.Title = styles.Title
	l.FilterInput.Prompt = "Search: "
	l.SetStatusBarItemName("comic", "comics")
	l.Styles.StatusBar = styles.MutedText.Padding(0, 0, 1, 2)
	l.Styles.NoItems = styles.MutedText.Padding(0, 0, 0, 2)
	l.Help.Styles.ShortKey = styles.MutedText
	l.Help.Styles.ShortDesc = styles.FaintText
	l.Help.Styles.FullKey = styles.MutedText
	l.Help.Styles.FullDesc = styles.FaintText
	l.DisableQuitKeybindings()
	l.AdditionalShortHelpKeys = keys.ShortHelp
	l.AdditionalFullHelpKeys = keys.ShortHelp

	// Open straight into the search prompt.
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})

	return pickerModel{list: l, keys: keys}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Choose):
			item, ok := m.list.SelectedItem().(entryItem)
			if !ok {
				return m, nil
			}
			chosen := item.Entry
			m.chosen = &chosen
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back) && m.list.FilterState() == list.Unfiltered:
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}
