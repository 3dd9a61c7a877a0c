package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/iptvx/internal/shared"
)

const (
	defaultWidth  = 80
	defaultHeight = 20
)

// Picker is a multi-select list of categories.
type Picker struct {
	list      list.Model
	help      help.Model
	keys      keyMap
	confirmed bool
	canceled  bool
}

// NewPicker creates a [Picker] over categories. Entries present in preselected start checked.
func NewPicker(title string, categories, preselected []string) *Picker {
	checked := make(map[string]bool, len(preselected))
	for _, c := range preselected {
		checked[c] = true
	}

	items := make([]list.Item, len(categories))
	for i, c := range categories {
		items[i] = categoryItem{name: c, selected: checked[c]}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(items, delegate, defaultWidth, defaultHeight)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &Picker{list: l, help: help.New(), keys: newKeyMap()}
}

func (m *Picker) Init() tea.Cmd {
	return nil
}

// Update handles key presses and window resizes.
func (m *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			m.canceled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.confirm):
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggle):
			return m, m.toggle(m.list.Index())
		case key.Matches(msg, m.keys.all):
			return m, m.toggleAll()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list, a selection count and the help line.
func (m *Picker) View() string {
	if m.confirmed || m.canceled {
		return ""
	}
	if len(m.list.Items()) == 0 {
		return styles.warn.Render("No categories found\n\nPress q to quit")
	}
	count := styles.help.Render(fmt.Sprintf("%d of %d selected", len(m.Selected()), len(m.list.Items())))
	return fmt.Sprintf("%s\n%s\n\n%s", m.list.View(), count, m.help.View(m.keys))
}

// Selected returns the checked categories in list order.
func (m *Picker) Selected() []string {
	var selected []string
	for _, it := range m.list.Items() {
		if c, ok := it.(categoryItem); ok && c.selected {
			selected = append(selected, c.name)
		}
	}
	return selected
}

// Confirmed reports whether the user saved the selection.
func (m *Picker) Confirmed() bool { return m.confirmed }

// Canceled reports whether the user left without saving.
func (m *Picker) Canceled() bool { return m.canceled }

func (m *Picker) toggle(i int) tea.Cmd {
	items := m.list.Items()
	if i < 0 || i >= len(items) {
		return nil
	}
	c, ok := items[i].(categoryItem)
	if !ok {
		return nil
	}
	c.selected = !c.selected
	return m.list.SetItem(i, c)
}

// toggleAll clears every item when all are checked, otherwise checks every item.
func (m *Picker) toggleAll() tea.Cmd {
	items := m.list.Items()
	target := len(m.Selected()) != len(items)

	updated := make([]list.Item, len(items))
	for i, it := range items {
		c := it.(categoryItem)
		c.selected = target
		updated[i] = c
	}
	return m.list.SetItems(updated)
}

// RunPicker runs p as a full-screen program reading from in and drawing to out.
// It returns [shared.ErrCanceled] when the user leaves without saving.
func RunPicker(ctx context.Context, p *Picker, in io.Reader, out io.Writer) ([]string, error) {
	program := tea.NewProgram(p, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return nil, fmt.Errorf("error running picker: %w", err)
	}
	if !p.Confirmed() {
		return nil, shared.ErrCanceled
	}
	return p.Selected(), nil
}
