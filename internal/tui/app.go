package tui

import (
	"github.com/brizzai/social-manager/internal/auth/callback"
	authmodels "github.com/brizzai/social-manager/internal/auth/models"
	tea "github.com/charmbracelet/bubbletea"
)

type page string

const (
	pageCallback page = "callback"
	pageSettings page = "settings"
	pageExport   page = "export"
)

// AppModel is the main application model that manages page switching
type AppModel struct {
	callbackPage CallbackPageModel
	settingsPage SettingsPageModel
	exportView   ExportView
	page         page
	hasCallback  bool
	// NavigatedTo is the settings URL the callback page moved on to
	NavigatedTo string
}

// NewCallbackApp starts on the callback page of flow and moves on to the
// settings page when the flow is done
func NewCallbackApp(provider authmodels.Provider, flow *callback.Flow, backend Backend) AppModel {
	return AppModel{
		callbackPage: NewCallbackPageModel(provider, flow),
		settingsPage: NewSettingsPageModel(backend),
		page:         pageCallback,
		hasCallback:  true,
	}
}

// NewSettingsApp starts on the settings page
func NewSettingsApp(backend Backend) AppModel {
	return AppModel{
		settingsPage: NewSettingsPageModel(backend),
		page:         pageSettings,
	}
}

// Init initializes the AppModel
func (m AppModel) Init() tea.Cmd {
	if m.page == pageCallback {
		return m.callbackPage.Init()
	}
	return m.settingsPage.Init()
}

// Update handles app-level messages and delegates to the appropriate page model
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case NavigateMsg:
		m.NavigatedTo = msg.URL
		m.page = pageSettings
		return m, m.settingsPage.Init()

	case ExportMsg:
		m.page = pageExport
		m.exportView = NewExportView(msg.Connections)
		return m, m.exportView.Init()

	case BackToSettingsMsg:
		m.page = pageSettings
		return m, nil

	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		var tempModel tea.Model

		if m.hasCallback {
			tempModel, cmd = m.callbackPage.Update(msg)
			m.callbackPage = tempModel.(CallbackPageModel)
			cmds = append(cmds, cmd)
		}

		tempModel, cmd = m.settingsPage.Update(msg)
		m.settingsPage = tempModel.(SettingsPageModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	// Delegate message to the active page
	var cmd tea.Cmd
	var tempModel tea.Model
	switch m.page {
	case pageCallback:
		tempModel, cmd = m.callbackPage.Update(msg)
		m.callbackPage = tempModel.(CallbackPageModel)
	case pageSettings:
		tempModel, cmd = m.settingsPage.Update(msg)
		m.settingsPage = tempModel.(SettingsPageModel)
	case pageExport:
		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the active page
func (m AppModel) View() string {
	switch m.page {
	case pageCallback:
		return m.callbackPage.View()
	case pageExport:
		return m.exportView.View()
	default:
		return m.settingsPage.View()
	}
}

// Outcome is the callback flow result, zero for a settings-only app
func (m AppModel) Outcome() callback.Outcome {
	return m.callbackPage.Outcome()
}

// IsExported reports whether the user finished an export
func (m AppModel) IsExported() bool {
	return m.exportView.Success
}
