package tui

import (
	"context"
	"fmt"

	authmodels "github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// Backend is the part of the server API the settings page needs
type Backend interface {
	Connections(ctx context.Context) ([]authmodels.Connection, error)
	Disconnect(ctx context.Context, provider authmodels.Provider, providerUserID string) error
}

// settingsKeyMap holds key bindings for the settings page.
type settingsKeyMap struct {
	reload key.Binding
	export key.Binding
	quit   key.Binding
}

func newSettingsKeyMap() *settingsKeyMap {
	return &settingsKeyMap{
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		export: key.NewBinding(
			key.WithKeys("E", "e"),
			key.WithHelp("E", "Export"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
	}
}

// connectionsLoadedMsg carries the result of a connections fetch
type connectionsLoadedMsg struct {
	connections []authmodels.Connection
	err         error
}

// ExportMsg asks the app to open the export view
type ExportMsg struct {
	Connections []authmodels.Connection
}

// SettingsPageModel lists the connected accounts
type SettingsPageModel struct {
	list    list.Model
	keys    *settingsKeyMap
	backend Backend
	err     error
}

// NewSettingsPageModel creates the settings page
func NewSettingsPageModel(backend Backend) SettingsPageModel {
	keys := newSettingsKeyMap()
	delegate := newItemDelegate(newDelegateKeyMap(), backend)

	l := list.New(nil, delegate, 0, 0)
	l.Title = titleStyle.Render("Connected accounts")
	l.SetShowFilter(true)
	l.SetStatusBarItemName("account", "accounts")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			keys.reload,
			keys.export,
			keys.quit,
		}
	}

	return SettingsPageModel{list: l, keys: keys, backend: backend}
}

// Init loads the connections
func (m SettingsPageModel) Init() tea.Cmd {
	return m.load()
}

func (m SettingsPageModel) load() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		conns, err := backend.Connections(context.Background())
		return connectionsLoadedMsg{connections: conns, err: err}
	}
}

// Update handles messages for the settings page
func (m SettingsPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectionsLoadedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, m.list.NewStatusMessage(errorMessageStyle("Failed to load connections: " + msg.err.Error()))
		}
		items := make([]list.Item, len(msg.connections))
		for i, c := range msg.connections {
			items[i] = models.ConnectionItem{Connection: c}
		}
		return m, m.list.SetItems(items)

	case disconnectedMsg:
		if msg.err != nil {
			return m, m.list.NewStatusMessage(errorMessageStyle(fmt.Sprintf("Failed to disconnect %s: %v", msg.item.Title(), msg.err)))
		}
		statusCmd := m.list.NewStatusMessage(statusMessageStyle("Disconnected " + msg.item.Title()))
		// the list may have been reloaded or filtered while the request ran
		index := m.indexOf(msg.item.Connection)
		if index < 0 {
			return m, statusCmd
		}
		setCmd := m.list.SetItem(index, msg.item.MarkDisconnected())
		return m, tea.Batch(setCmd, statusCmd)

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.reload):
			return m, m.load()
		case key.Matches(msg, m.keys.export):
			connections := m.Connections()
			return m, func() tea.Msg {
				return ExportMsg{Connections: connections}
			}
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list
func (m SettingsPageModel) View() string {
	return docStyle.Render(m.list.View())
}

// Connections returns the listed accounts that are still connected
func (m SettingsPageModel) Connections() []authmodels.Connection {
	var result []authmodels.Connection
	for _, item := range m.list.Items() {
		ci, ok := item.(models.ConnectionItem)
		if !ok || ci.Disconnected {
			continue
		}
		result = append(result, ci.Connection)
	}
	return result
}

func (m SettingsPageModel) indexOf(conn authmodels.Connection) int {
	for i, item := range m.list.Items() {
		ci, ok := item.(models.ConnectionItem)
		if ok && ci.Connection.Provider == conn.Provider && ci.Connection.ProviderUserID == conn.ProviderUserID {
			return i
		}
	}
	return -1
}

// Err is the error of the last load
func (m SettingsPageModel) Err() error {
	return m.err
}
