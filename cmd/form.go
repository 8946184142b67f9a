/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nakachan-ing/tsk-cli/internal/model"
)

const (
	formTitle = iota
	formCategory
	formPriority
	formDeadline
	formSubmit
)

var (
	labelStyle  = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("245"))
	choiceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

// taskForm collects a TaskInput. Category and priority cycle with ←/→.
type taskForm struct {
	focus     int
	title     textinput.Model
	deadline  textinput.Model
	category  int
	priority  int
	err       error
	submitted bool
}

func newTaskForm(in model.TaskInput) *taskForm {
	title := textinput.New()
	title.Placeholder = "Pay rent"
	title.SetValue(in.Title)
	title.Focus()

	deadline := textinput.New()
	deadline.Placeholder = "YYYY-MM-DD HH:MM or None"
	deadline.SetValue(in.Deadline)

	f := &taskForm{title: title, deadline: deadline}
	if c, err := model.ParseCategory(in.Category); err == nil {
		f.category = slices.Index(model.Categories, c)
	}
	if p, err := model.ParsePriority(in.Priority); err == nil {
		f.priority = slices.Index(model.Priorities, p)
	}
	return f
}

func (f *taskForm) input() model.TaskInput {
	return model.TaskInput{
		Title:    f.title.Value(),
		Category: string(model.Categories[f.category]),
		Priority: string(model.Priorities[f.priority]),
		Deadline: f.deadline.Value(),
	}
}

func (f *taskForm) setFocus(i int) tea.Cmd {
	f.focus = (i + formSubmit + 1) % (formSubmit + 1)
	f.title.Blur()
	f.deadline.Blur()
	switch f.focus {
	case formTitle:
		return f.title.Focus()
	case formDeadline:
		return f.deadline.Focus()
	}
	return nil
}

func (f *taskForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f *taskForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	switch key.String() {
	case "esc", "ctrl+c":
		return f, tea.Quit
	case "tab", "down":
		return f, f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return f, f.setFocus(f.focus - 1)
	case "enter":
		if f.focus != formSubmit {
			return f, f.setFocus(f.focus + 1)
		}
		if _, err := f.input().Validate(); err != nil {
			f.err = err
			return f, nil
		}
		f.submitted = true
		return f, tea.Quit
	case "left", "right":
		step := 1
		if key.String() == "left" {
			step = -1
		}
		switch f.focus {
		case formCategory:
			f.category = (f.category + step + len(model.Categories)) % len(model.Categories)
			return f, nil
		case formPriority:
			f.priority = (f.priority + step + len(model.Priorities)) % len(model.Priorities)
			return f, nil
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case formTitle:
		f.title, cmd = f.title.Update(msg)
	case formDeadline:
		f.deadline, cmd = f.deadline.Update(msg)
	}
	return f, cmd
}

func (f *taskForm) View() string {
	cursor := func(i int) string {
		if f.focus == i {
			return "👉"
		}
		return "  "
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("📝 New task") + "\n\n")
	s.WriteString(fmt.Sprintf("%s %s %s\n", cursor(formTitle), labelStyle.Render("Title"), f.title.View()))
	s.WriteString(fmt.Sprintf("%s %s ← %s →\n", cursor(formCategory), labelStyle.Render("Category"), choiceStyle.Render(string(model.Categories[f.category]))))
	s.WriteString(fmt.Sprintf("%s %s ← %s →\n", cursor(formPriority), labelStyle.Render("Priority"), choiceStyle.Render(string(model.Priorities[f.priority]))))
	s.WriteString(fmt.Sprintf("%s %s %s\n", cursor(formDeadline), labelStyle.Render("Deadline"), f.deadline.View()))

	submit := "[ Add task ]"
	if f.focus == formSubmit {
		submit = selectedStyle.Render(submit)
	}
	s.WriteString("\n" + cursor(formSubmit) + " " + submit + "\n")

	if f.err != nil {
		s.WriteString("\n" + errorStyle.Render("⚠️ "+explain(f.err)) + "\n")
	}
	s.WriteString("\n" + helpStyle.Render("tab/↑/↓ to move, ←/→ to choose, Enter to confirm, Esc to cancel") + "\n")
	return s.String()
}

// runTaskForm shows the form; ok is false when the user cancelled.
func runTaskForm(in model.TaskInput) (model.TaskInput, bool, error) {
	f := newTaskForm(in)
	if _, err := tea.NewProgram(f).Run(); err != nil {
		return model.TaskInput{}, false, fmt.Errorf("error running TUI: %w", err)
	}
	if !f.submitted {
		return model.TaskInput{}, false, nil
	}
	return f.input(), true, nil
}
