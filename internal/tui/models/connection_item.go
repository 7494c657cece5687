package models

import (
	"fmt"

	authmodels "github.com/brizzai/social-manager/internal/auth/models"
	"github.com/charmbracelet/lipgloss"
)

// ConnectionItem wraps a connection for display in the list
// Implements list.Item
type ConnectionItem struct {
	Connection   authmodels.Connection
	Disconnected bool
}

func (i ConnectionItem) Title() string {
	return fmt.Sprintf("@%s", i.Connection.Username)
}

func (i ConnectionItem) Description() string {
	if i.Disconnected {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Render("[Disconnected]")
	}
	return fmt.Sprintf("%s · %s", i.Connection.Provider, i.Connection.ProviderUserID)
}

func (i ConnectionItem) MarkDisconnected() ConnectionItem {
	i.Disconnected = true
	return i
}

func (i ConnectionItem) FilterValue() string {
	return i.Connection.Username + " " + i.Connection.Provider.String()
}
