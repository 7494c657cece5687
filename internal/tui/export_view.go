package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brizzai/social-manager/internal/auth/connections"
	authmodels "github.com/brizzai/social-manager/internal/auth/models"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ExportView handles prompting for a filename and exporting connections
type ExportView struct {
	connections  []authmodels.Connection
	textInput    textinput.Model
	err          error
	width        int
	height       int
	exportStatus string
	Success      bool
}

// NewExportView creates a new export view
func NewExportView(list []authmodels.Connection) ExportView {
	ti := textinput.New()
	ti.Placeholder = "connections.yaml"
	ti.Focus()
	ti.Width = 40

	return ExportView{
		connections: list,
		textInput:   ti,
	}
}

// Init initializes the export view
func (m ExportView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the export view
func (m ExportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return BackToSettingsMsg{} }
		case "enter":
			if m.textInput.Value() == "" {
				m.exportStatus = "Please enter a filename"
				return m, nil
			}

			filename := m.textInput.Value()
			if err := ExportConnectionsToFile(m.connections, filename); err != nil {
				m.err = err
				m.exportStatus = fmt.Sprintf("Error exporting: %v", err)
				return m, nil
			}

			m.Success = true
			m.exportStatus = completeMessageStyle(fmt.Sprintf("Exported %s to %s", pluralize(len(m.connections), "connection"), filename))
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tea.Quit()
			})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the export view
func (m ExportView) View() string {
	var sb strings.Builder

	verticalPadding := (m.height - 6) / 2
	for i := 0; i < verticalPadding; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(centerText(titleStyle.Render("Export Connections"), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(centerText("Enter a .yaml or .json filename:", m.width))
	sb.WriteString("\n")
	sb.WriteString(centerText(m.textInput.View(), m.width))
	sb.WriteString("\n\n")

	if m.exportStatus != "" {
		sb.WriteString(centerText(m.exportStatus, m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText("(esc) Back to settings | (enter) Export", m.width))

	return sb.String()
}

// BackToSettingsMsg signals to go back to the settings page
type BackToSettingsMsg struct{}

// ExportConnectionsToFile writes list to filename. A .json extension picks
// JSON, anything else YAML.
func ExportConnectionsToFile(list []authmodels.Connection, filename string) error {
	format := connections.FormatYAML
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		format = connections.FormatJSON
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := connections.Encode(f, format, list); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func centerText(text string, width int) string {
	if width <= len(text) {
		return text
	}

	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
