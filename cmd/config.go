/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nakachan-ing/tsk-cli/internal/model"
	"github.com/nakachan-ing/tsk-cli/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const saveAndExit = "Save & Exit"

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

type configModel struct {
	cursor    int
	fields    []string
	config    model.Config
	textInput textinput.Model
	editMode  bool
	err       error
	saved     bool
}

func newConfigModel(config model.Config) *configModel {
	return &configModel{
		fields:    configFields(),
		config:    config,
		textInput: textinput.New(),
	}
}

func configFields() []string {
	return []string{
		"DataDir", "Backend", "PendingFile", "CompletedFile", "SQLiteFile",
		"ExportDir", "Editor",
		"Lock.Enable", "Lock.TimeoutSeconds", "Lock.StaleSeconds",
		"List.PageSize",
		saveAndExit,
	}
}

func (m *configModel) Init() tea.Cmd {
	return nil
}

func (m *configModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editMode {
		switch key.String() {
		case "enter":
			m.err = m.setFieldValue(m.fields[m.cursor], m.textInput.Value())
			m.editMode = false
			m.textInput.Blur()
		case "esc":
			m.editMode = false
			m.textInput.Blur()
		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
	case "enter":
		if m.fields[m.cursor] == saveAndExit {
			if err := store.SaveConfig(m.config); err != nil {
				m.err = err
				return m, nil
			}
			m.saved = true
			return m, tea.Quit
		}
		m.err = nil
		m.editMode = true
		m.textInput.SetValue(m.getFieldValue(m.fields[m.cursor]))
		m.textInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *configModel) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("📄 Configure tsk") + "\n\n")

	for i, field := range m.fields {
		cursor := "  "
		line := field
		if field != saveAndExit {
			line = fmt.Sprintf("%s: %s", field, valueStyle.Render(m.getFieldValue(field)))
		}
		if m.cursor == i {
			cursor = "👉"
			line = selectedStyle.Render(line)
		}
		s.WriteString(fmt.Sprintf("%s %s\n", cursor, line))
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render("⚠️ "+m.err.Error()) + "\n")
	}
	if m.editMode {
		s.WriteString("\n✏️  Editing: " + m.fields[m.cursor] + "\n")
		s.WriteString(m.textInput.View() + "\n")
		s.WriteString(helpStyle.Render("(Enter to apply, ESC to cancel)") + "\n")
	} else {
		s.WriteString("\n" + helpStyle.Render("↑/↓ to move, Enter to edit, q to quit without saving") + "\n")
	}
	return s.String()
}

func (m *configModel) getFieldValue(field string) string {
	switch field {
	case "DataDir":
		return m.config.DataDir
	case "Backend":
		return m.config.Backend
	case "PendingFile":
		return m.config.PendingFile
	case "CompletedFile":
		return m.config.CompletedFile
	case "SQLiteFile":
		return m.config.SQLiteFile
	case "ExportDir":
		return m.config.ExportDir
	case "Editor":
		return m.config.Editor
	case "Lock.Enable":
		return strconv.FormatBool(m.config.Lock.Enable)
	case "Lock.TimeoutSeconds":
		return strconv.Itoa(m.config.Lock.TimeoutSeconds)
	case "Lock.StaleSeconds":
		return strconv.Itoa(m.config.Lock.StaleSeconds)
	case "List.PageSize":
		return strconv.Itoa(m.config.List.PageSize)
	}
	return ""
}

func (m *configModel) setFieldValue(field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case "DataDir":
		m.config.DataDir = value
	case "Backend":
		if value != model.BackendCSV && value != model.BackendSQLite {
			return fmt.Errorf("backend must be %s or %s", model.BackendCSV, model.BackendSQLite)
		}
		m.config.Backend = value
	case "PendingFile":
		m.config.PendingFile = value
	case "CompletedFile":
		m.config.CompletedFile = value
	case "SQLiteFile":
		m.config.SQLiteFile = value
	case "ExportDir":
		m.config.ExportDir = value
	case "Editor":
		m.config.Editor = value
	case "Lock.Enable":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", field)
		}
		m.config.Lock.Enable = b
	case "Lock.TimeoutSeconds", "Lock.StaleSeconds", "List.PageSize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", field)
		}
		switch field {
		case "Lock.TimeoutSeconds":
			m.config.Lock.TimeoutSeconds = n
		case "Lock.StaleSeconds":
			m.config.Lock.StaleSeconds = n
		default:
			m.config.List.PageSize = n
		}
	}
	return nil
}

// readRawConfig returns the config file as written, without env overrides
// or ~ expansion, so saving it back does not bake them in.
func readRawConfig(path string) (model.Config, error) {
	config := model.DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return config, nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure config.yaml interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := store.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		fmt.Println(configPath)

		config, err := readRawConfig(configPath)
		if err != nil {
			return err
		}

		m := newConfigModel(config)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		if m.saved {
			fmt.Println("✅ Config saved.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
