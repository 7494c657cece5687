package tui

import (
	"context"

	"github.com/brizzai/social-manager/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// disconnectedMsg reports the result of a disconnect started from the list
type disconnectedMsg struct {
	item models.ConnectionItem
	err  error
}

// newItemDelegate returns a list.DefaultDelegate that disconnects the
// selected account on the remove key.
func newItemDelegate(keys *delegateKeyMap, backend Backend) list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.UpdateFunc = func(msg tea.Msg, m *list.Model) tea.Cmd {
		item, ok := m.SelectedItem().(models.ConnectionItem)
		if !ok {
			return nil
		}

		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch {
			case key.Matches(msg, keys.remove):
				if item.Disconnected {
					return m.NewStatusMessage(statusMessageStyle(item.Title() + " is already disconnected"))
				}
				return func() tea.Msg {
					err := backend.Disconnect(context.Background(), item.Connection.Provider, item.Connection.ProviderUserID)
					return disconnectedMsg{item: item, err: err}
				}
			}
		}
		return nil
	}

	help := []key.Binding{keys.remove}

	d.ShortHelpFunc = func() []key.Binding {
		return help
	}

	d.FullHelpFunc = func() [][]key.Binding {
		return [][]key.Binding{help}
	}

	return d
}

// delegateKeyMap holds key bindings for list item actions.
type delegateKeyMap struct {
	remove key.Binding
}

// ShortHelp returns additional short help entries for the delegate.
func (d delegateKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		d.remove,
	}
}

// FullHelp returns additional full help entries for the delegate.
func (d delegateKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			d.remove,
		},
	}
}

// newDelegateKeyMap creates a new delegateKeyMap with default bindings.
func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		remove: key.NewBinding(
			key.WithKeys("x", "backspace"),
			key.WithHelp("x", "Disconnect account"),
		),
	}
}
