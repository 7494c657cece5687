package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brizzai/social-manager/internal/auth/callback"
	authmodels "github.com/brizzai/social-manager/internal/auth/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type callbackKeyMap struct {
	proceed key.Binding
	quit    key.Binding
}

func newCallbackKeyMap() *callbackKeyMap {
	return &callbackKeyMap{
		proceed: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Continue now"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c/q", "Quit"),
		),
	}
}

// outcomeMsg is sent once the flow reached a terminal status
type outcomeMsg struct {
	outcome callback.Outcome
}

// countdownMsg is one tick of the redirect countdown. Ticks of an older
// countdown carry a stale generation and are dropped.
type countdownMsg struct {
	generation int
}

// NavigateMsg is sent when the callback page moves on to the settings page
type NavigateMsg struct {
	URL string
}

// CallbackPageModel shows the progress of one callback flow
type CallbackPageModel struct {
	flow       *callback.Flow
	keys       *callbackKeyMap
	spinner    spinner.Model
	outcome    callback.Outcome
	done       bool
	remaining  int
	generation int
	navigated  bool
	width      int
	height     int
}

// NewCallbackPageModel creates the page for a flow started for provider
func NewCallbackPageModel(provider authmodels.Provider, flow *callback.Flow) CallbackPageModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#f56a96"))

	return CallbackPageModel{
		flow:    flow,
		keys:    newCallbackKeyMap(),
		spinner: s,
		outcome: callback.Outcome{Provider: provider, Status: flow.Status()},
	}
}

// Init starts the spinner and runs the flow
func (m CallbackPageModel) Init() tea.Cmd {
	flow := m.flow
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return outcomeMsg{outcome: flow.Run(context.Background())}
		},
	)
}

func countdown(generation int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownMsg{generation: generation}
	})
}

func (m CallbackPageModel) navigate() (CallbackPageModel, tea.Cmd) {
	m.navigated = true
	// invalidate pending ticks
	m.generation++
	target := m.outcome.SettingsURL
	return m, func() tea.Msg {
		return NavigateMsg{URL: target}
	}
}

// Update handles messages for the callback page
func (m CallbackPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case outcomeMsg:
		if m.done {
			return m, nil
		}
		m.done = true
		m.outcome = msg.outcome
		m.remaining = int(math.Ceil(msg.outcome.Delay.Seconds()))
		m.generation++
		if m.remaining <= 0 {
			return m.navigate()
		}
		return m, countdown(m.generation)

	case countdownMsg:
		if msg.generation != m.generation || m.navigated {
			return m, nil
		}
		m.remaining--
		if m.remaining <= 0 {
			return m.navigate()
		}
		return m, countdown(m.generation)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.proceed):
			if m.done && !m.navigated {
				return m.navigate()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the callback page
func (m CallbackPageModel) View() string {
	name := m.outcome.Provider.String()
	if name == "" {
		name = "account"
	}
	title := titleStyle.Render(fmt.Sprintf("Connecting %s", name))

	var body string
	switch m.outcome.Status {
	case callback.StatusSuccess:
		body = completeMessageStyle(m.outcome.Message)
	case callback.StatusError:
		body = errorMessageStyle(m.outcome.Message)
	default:
		body = m.spinner.View() + " Completing authentication..."
	}

	lines := []string{"", title, "", body}
	if m.done && !m.navigated {
		lines = append(lines, "",
			fmt.Sprintf("Returning to settings in %s.", pluralize(m.remaining, "second")),
			helpStyle.Render("Press enter to continue now, q to quit"),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return docStyle.Render(content)
}

// Outcome is the flow result, zero until the flow finished
func (m CallbackPageModel) Outcome() callback.Outcome {
	return m.outcome
}

// pluralize returns the count with the noun pluralized
func pluralize(count int, singular string) string {
	if count == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %ss", count, singular)
}
