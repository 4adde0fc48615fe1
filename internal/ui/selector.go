package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
)

// FigureChoice is one selectable entry of the figure picker.
type FigureChoice struct {
	ID    string
	Title string
	File  string
}

type figureItem struct {
	choice   FigureChoice
	selected bool
}

func (i figureItem) Title() string {
	var checkbox string
	if i.selected {
		checkbox = Success.Render("[✓] ")
	} else {
		checkbox = Dim.Render("[ ] ")
	}
	return checkbox + i.choice.Title
}

func (i figureItem) Description() string {
	return Dim.Render(fmt.Sprintf("%s · %s", i.choice.ID, i.choice.File))
}

func (i figureItem) FilterValue() string { return i.choice.ID }

// figureSelectorModel is the Bubble Tea model for the figure picker.
type figureSelectorModel struct {
	list      list.Model
	items     []list.Item
	selected  map[string]bool
	order     []string
	quitting  bool
	confirmed bool
}

// NewFigureSelector builds the picker with every choice preselected.
func NewFigureSelector(choices []FigureChoice) *figureSelectorModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorHighlight).
		BorderForeground(ColorPrimary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorTextDim).
		BorderForeground(ColorPrimary)

	m := &figureSelectorModel{selected: make(map[string]bool)}
	for _, c := range choices {
		m.items = append(m.items, figureItem{choice: c, selected: true})
		m.selected[c.ID] = true
		m.order = append(m.order, c.ID)
	}

	l := list.New(m.items, delegate, 60, 2*len(choices)+6)
	l.Title = "Select Figures"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)
	m.list = l
	return m
}

// Init initializes the model
func (m *figureSelectorModel) Init() tea.Cmd { return nil }

// Update handles messages
func (m *figureSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		case "space", " ", "s":
			if i, ok := m.list.SelectedItem().(figureItem); ok {
				m.toggle(i.choice.ID)
			}
			return m, nil
		case "a":
			all := len(m.Selected()) != len(m.order)
			for _, id := range m.order {
				m.selected[id] = all
			}
			m.refresh()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model
func (m *figureSelectorModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n",
		Success.Render("Selected:"),
		Highlight.Render(fmt.Sprintf("%d figure(s)", len(m.Selected())))))

	helpStyle := lipgloss.NewStyle().Foreground(ColorTextDim)
	b.WriteString(helpStyle.Render("space: toggle · a: all/none · ↑/↓: navigate · enter: confirm · esc: cancel"))

	return tea.NewView(b.String())
}

func (m *figureSelectorModel) toggle(id string) {
	m.selected[id] = !m.selected[id]
	m.refresh()
}

func (m *figureSelectorModel) refresh() {
	for i, item := range m.items {
		fi := item.(figureItem)
		fi.selected = m.selected[fi.choice.ID]
		m.items[i] = fi
	}
	m.list.SetItems(m.items)
}

// Selected returns the chosen figure IDs in registry order.
func (m *figureSelectorModel) Selected() []string {
	var ids []string
	for _, id := range m.order {
		if m.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// WasConfirmed returns true if the user confirmed the selection
func (m *figureSelectorModel) WasConfirmed() bool {
	return m.confirmed
}

// RunFigureSelector runs the interactive picker and returns the selected IDs.
// Cancelling, or confirming an empty selection, returns apperr.ErrCancelled.
func RunFigureSelector(choices []FigureChoice) ([]string, error) {
	p := tea.NewProgram(NewFigureSelector(choices))
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	model := m.(*figureSelectorModel)
	if !model.WasConfirmed() || len(model.Selected()) == 0 {
		return nil, apperr.ErrCancelled
	}
	return model.Selected(), nil
}
