// Package tui implements the interactive template browser: a filterable list
// of stored templates with a rendered markdown preview.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/NewAITees/ai-process-blueprint/internal/models"
	"github.com/NewAITees/ai-process-blueprint/internal/service"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// viewMode represents the current view in the TUI
type viewMode int

const (
	viewList viewMode = iota
	viewDetail
)

// item adapts a template to the bubbles list interface.
type item struct {
	template *models.Template
}

func (i item) Title() string { return i.template.Title }
func (i item) Description() string {
	if i.template.Description != "" {
		return i.template.Description
	}
	return fmt.Sprintf("by %s, updated %s", i.template.Username, i.template.UpdatedAt.Format("2006-01-02"))
}
func (i item) FilterValue() string {
	return i.template.Title + " " + i.template.Description + " " + i.template.Username
}

type loadCompleteMsg struct {
	templates []*models.Template
	err       error
}

// loadTemplatesCmd loads every stored template for browsing.
func loadTemplatesCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.ListTemplates(context.Background(), models.ListOptions{Limit: models.MaxListLimit})
		if err != nil {
			return loadCompleteMsg{err: err}
		}
		return loadCompleteMsg{templates: result.Templates}
	}
}

type keyMap struct {
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model represents the TUI application state
type Model struct {
	service  *service.Service
	viewMode viewMode

	list     list.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	selected *models.Template
	loading  bool
	err      error

	width  int
	height int
}

// NewModel creates the browser model.
func NewModel(svc *service.Service) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Templates"
	l.SetShowStatusBar(false)

	return Model{
		service:  svc,
		viewMode: viewList,
		list:     l,
		loading:  true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return loadTemplatesCmd(m.service)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-3)
		if m.selected != nil {
			m.setPreview(m.selected)
		}
		return m, nil

	case loadCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.templates))
		for i, t := range msg.templates {
			items[i] = item{template: t}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		// Let the list handle keys while its filter input is active.
		if m.viewMode == viewList && m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Enter):
			if m.viewMode == viewList {
				if it, ok := m.list.SelectedItem().(item); ok {
					m.selected = it.template
					m.viewMode = viewDetail
					m.setPreview(it.template)
				}
				return m, nil
			}
		case key.Matches(msg, keys.Back):
			if m.viewMode == viewDetail {
				m.viewMode = viewList
				m.selected = nil
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.viewMode {
	case viewDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading templates: %v\n\nPress q to quit.", m.err)
	}
	if m.loading {
		return "Loading templates..."
	}
	if m.viewMode == viewDetail && m.selected != nil {
		header := titleStyle.Render(m.selected.Title)
		footer := statusStyle.Render("esc back / q quit")
		return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), footer)
	}
	return m.list.View() + "\n" + statusStyle.Render("enter open / q quit")
}

// setPreview renders the selected template body into the viewport.
func (m *Model) setPreview(t *models.Template) {
	if m.renderer == nil {
		wrap := m.width - 4
		if wrap < 20 {
			wrap = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			m.renderer = r
		}
	}

	content := t.Content
	if m.renderer != nil {
		if out, err := m.renderer.Render(t.Content); err == nil {
			content = out
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// Run starts the interactive browser and blocks until it exits.
func Run(svc *service.Service) error {
	p := tea.NewProgram(NewModel(svc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
