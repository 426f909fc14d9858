package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mixprof/mixprof/pkg/errors"
	"github.com/mixprof/mixprof/pkg/profiler"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// methodItem is one row in the method picker.
type methodItem struct {
	method    profiler.Method
	tool      string
	installed bool
}

// MethodPickerModel is the bubbletea model for interactive method selection.
type MethodPickerModel struct {
	Items    []methodItem
	Cursor   int
	Selected *profiler.Method
}

// NewMethodPickerModel creates a picker over the given items.
func NewMethodPickerModel(items []methodItem) MethodPickerModel {
	return MethodPickerModel{Items: items}
}

func (m MethodPickerModel) Init() tea.Cmd {
	return nil
}

func (m MethodPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
		case "enter":
			item := m.Items[m.Cursor]
			if !item.installed {
				return m, nil
			}
			m.Selected = &item.method
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MethodPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Profiling Method"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, item := range m.Items {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "> "
			style = listSelectedStyle
		}

		label := string(item.method)
		note := ""
		if !item.installed {
			style = listDimStyle
			note = listDimStyle.Render(fmt.Sprintf("  (%s not installed)", item.tool))
		}

		b.WriteString(cursor + style.Render(label) + note + "\n")
	}

	return b.String()
}

// pickMethod runs the interactive picker and returns the chosen method.
func pickMethod(ctx context.Context, reg *profiler.Registry) (profiler.Method, error) {
	available := make(map[profiler.Method]bool)
	for _, m := range reg.Available(ctx) {
		available[m] = true
	}

	var items []methodItem
	for _, method := range reg.Methods() {
		p, err := reg.Get(method)
		if err != nil {
			continue
		}
		items = append(items, methodItem{
			method:    method,
			tool:      p.Tool(),
			installed: available[method],
		})
	}

	program := tea.NewProgram(NewMethodPickerModel(items), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return "", err
	}

	model, ok := final.(MethodPickerModel)
	if !ok || model.Selected == nil {
		return "", errors.New(errors.ErrCodeInvalidMethod, "no method selected")
	}
	return *model.Selected, nil
}
