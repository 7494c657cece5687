package tui

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	authmodels "github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/tui/models"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeBackend struct {
	mu           sync.Mutex
	connections  []authmodels.Connection
	disconnected []string
	err          error
}

func (b *fakeBackend) Connections(context.Context) ([]authmodels.Connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]authmodels.Connection(nil), b.connections...), b.err
}

func (b *fakeBackend) Disconnect(_ context.Context, provider authmodels.Provider, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.disconnected = append(b.disconnected, provider.String()+"/"+id)
	return nil
}

var sampleConnections = []authmodels.Connection{
	{ProviderUserID: "u1", Username: "alice", Provider: authmodels.ProviderInstagram},
	{ProviderUserID: "t9", Username: "tiktok_user_t9", Provider: authmodels.ProviderTikTok},
}

func loadedSettings(t *testing.T, backend *fakeBackend) SettingsPageModel {
	t.Helper()
	m := NewSettingsPageModel(backend)
	msg := m.Init()()
	next, _ := m.Update(msg)
	return next.(SettingsPageModel)
}

func TestSettingsPage_Load(t *testing.T) {
	backend := &fakeBackend{connections: sampleConnections}
	m := loadedSettings(t, backend)

	require.NoError(t, m.Err())
	if diff := cmp.Diff(sampleConnections, m.Connections()); diff != "" {
		t.Errorf("Connections() mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsPage_LoadError(t *testing.T) {
	m := loadedSettings(t, &fakeBackend{err: errors.New("server unavailable")})
	assert.Error(t, m.Err())
	assert.Empty(t, m.Connections())
}

func TestSettingsPage_Disconnect(t *testing.T) {
	backend := &fakeBackend{connections: sampleConnections}
	m := loadedSettings(t, backend)

	delegate := newItemDelegate(newDelegateKeyMap(), backend)
	l := list.New([]list.Item{models.ConnectionItem{Connection: sampleConnections[0]}}, delegate, 0, 0)
	cmd := delegate.UpdateFunc(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, &l)
	require.NotNil(t, cmd)
	msg, ok := cmd().(disconnectedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, []string{"instagram/u1"}, backend.disconnected)

	next, _ := m.Update(msg)
	m = next.(SettingsPageModel)
	assert.Equal(t, sampleConnections[1:], m.Connections())
}

func TestSettingsPage_DisconnectAfterReload(t *testing.T) {
	backend := &fakeBackend{connections: sampleConnections}
	m := loadedSettings(t, backend)

	// the list is reloaded in a different order while the disconnect runs
	backend.connections = []authmodels.Connection{sampleConnections[1], sampleConnections[0]}
	next, _ := m.Update(m.load()())
	m = next.(SettingsPageModel)

	next, _ = m.Update(disconnectedMsg{item: models.ConnectionItem{Connection: sampleConnections[0]}})
	m = next.(SettingsPageModel)
	assert.Equal(t, []authmodels.Connection{sampleConnections[1]}, m.Connections())

	gone := authmodels.Connection{ProviderUserID: "u404", Username: "ghost", Provider: authmodels.ProviderInstagram}
	next, _ = m.Update(disconnectedMsg{item: models.ConnectionItem{Connection: gone}})
	m = next.(SettingsPageModel)
	assert.Equal(t, []authmodels.Connection{sampleConnections[1]}, m.Connections())
}

func TestSettingsPage_Export(t *testing.T) {
	m := loadedSettings(t, &fakeBackend{connections: sampleConnections})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	require.NotNil(t, cmd)
	assert.Equal(t, ExportMsg{Connections: sampleConnections}, cmd())
}

func TestApp_CallbackMovesToSettings(t *testing.T) {
	flow := newFlow(t, nil, nil)
	app := NewCallbackApp(authmodels.ProviderInstagram, flow, &fakeBackend{connections: sampleConnections})
	assert.Equal(t, pageCallback, app.page)

	next, cmd := app.Update(NavigateMsg{URL: settingsURL})
	app = next.(AppModel)
	require.NotNil(t, cmd)
	assert.Equal(t, pageSettings, app.page)
	assert.Equal(t, settingsURL, app.NavigatedTo)

	next, _ = app.Update(cmd())
	app = next.(AppModel)
	assert.Len(t, app.settingsPage.Connections(), 2)

	next, _ = app.Update(ExportMsg{Connections: sampleConnections})
	app = next.(AppModel)
	assert.Equal(t, pageExport, app.page)

	next, _ = app.Update(BackToSettingsMsg{})
	assert.Equal(t, pageSettings, next.(AppModel).page)
}

func TestExportConnectionsToFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "connections.yaml")
	require.NoError(t, ExportConnectionsToFile(sampleConnections, yamlPath))
	raw, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML struct {
		Connections []authmodels.Connection `yaml:"connections"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &fromYAML))
	assert.Equal(t, sampleConnections, fromYAML.Connections)

	jsonPath := filepath.Join(dir, "connections.JSON")
	require.NoError(t, ExportConnectionsToFile(sampleConnections, jsonPath))
	raw, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON struct {
		Connections []authmodels.Connection `json:"connections"`
	}
	require.NoError(t, json.Unmarshal(raw, &fromJSON))
	assert.Equal(t, sampleConnections, fromJSON.Connections)

	err = ExportConnectionsToFile(sampleConnections, filepath.Join(dir, "missing", "out.yaml"))
	assert.Error(t, err)
}
