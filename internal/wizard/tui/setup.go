package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/vegehub/internal/discovery"
	"github.com/muurk/vegehub/internal/hub"
)

// setupRetries is the per-request retry budget used by the wizard.
const setupRetries = 2

// applyCompleteMsg carries the outcome of a setup attempt
type applyCompleteMsg struct {
	ok   bool
	info *hub.DeviceInfo
	mac  string
	err  error
}

// setupKeyMap defines key bindings for the setup screen
type setupKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Apply key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k setupKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Apply, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k setupKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Apply, k.Back, k.Quit},
	}
}

// Input field indices
const (
	fieldServer = 0
	fieldAPIKey = 1
	fieldCount  = 2
)

// SetupModel represents the server setup screen state
type SetupModel struct {
	// Target hub
	Hub *discovery.Hub

	// Form state
	ServerInput textinput.Model
	KeyInput    textinput.Model
	Focused     int

	// Apply state
	Applying bool
	Done     bool
	Result   applyCompleteMsg

	// Back request (escape from the form)
	BackRequested bool

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    setupKeyMap
}

// NewSetupModel creates a setup screen for the given hub
func NewSetupModel(target *discovery.Hub) SetupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	serverInput := textinput.New()
	serverInput.Placeholder = "http://192.168.1.50:8123"
	serverInput.CharLimit = 128
	serverInput.Width = 40
	serverInput.Focus()

	keyInput := textinput.New()
	keyInput.Placeholder = "API key"
	keyInput.CharLimit = 128
	keyInput.Width = 40
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'

	h := help.New()

	keys := setupKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}

	return SetupModel{
		Hub:         target,
		ServerInput: serverInput,
		KeyInput:    keyInput,
		Spinner:     s,
		Help:        h,
		Keys:        keys,
	}
}

// Init initializes the setup model
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case applyCompleteMsg:
		m.Applying = false
		m.Done = true
		m.Result = msg
		return m, nil

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Applying {
			// No form input while a setup attempt is in flight
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.BackRequested = true
			return m, nil

		case "tab", "down":
			m.Focused = (m.Focused + 1) % fieldCount
			return m.syncFocus(), nil

		case "shift+tab", "up":
			m.Focused = (m.Focused + fieldCount - 1) % fieldCount
			return m.syncFocus(), nil

		case "enter":
			if m.ServerInput.Value() == "" || m.KeyInput.Value() == "" {
				// Move focus to the first empty field instead of applying
				if m.ServerInput.Value() == "" {
					m.Focused = fieldServer
				} else {
					m.Focused = fieldAPIKey
				}
				return m.syncFocus(), nil
			}
			m.Applying = true
			m.Done = false
			return m, tea.Batch(
				applySetup(m.Hub.IP, m.KeyInput.Value(), m.ServerInput.Value()),
				m.Spinner.Tick,
			)
		}
	}

	// Route remaining input to the focused field
	switch m.Focused {
	case fieldServer:
		m.ServerInput, cmd = m.ServerInput.Update(msg)
	case fieldAPIKey:
		m.KeyInput, cmd = m.KeyInput.Update(msg)
	}
	return m, cmd
}

// syncFocus moves textinput focus to the selected field
func (m SetupModel) syncFocus() SetupModel {
	if m.Focused == fieldServer {
		m.ServerInput.Focus()
		m.KeyInput.Blur()
	} else {
		m.ServerInput.Blur()
		m.KeyInput.Focus()
	}
	return m
}

// View renders the setup screen
func (m SetupModel) View() string {
	var content string
	if m.Applying {
		content = m.renderApplying()
	} else {
		content = m.renderForm()
	}

	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderForm renders the server/API key input form
func (m SetupModel) renderForm() string {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("Set up %s", m.Hub.ServiceName)))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(fmt.Sprintf("Hub at %s", m.Hub.BaseURL())))
	b.WriteString("\n\n")

	serverLabel := "  Server address: "
	keyLabel := "  API key:        "
	if m.Focused == fieldServer {
		serverLabel = FocusedInputStyle.Render("→ Server address: ")
	} else {
		keyLabel = FocusedInputStyle.Render("→ API key:        ")
	}

	b.WriteString(serverLabel)
	b.WriteString(m.ServerInput.View())
	b.WriteString("\n\n")
	b.WriteString(keyLabel)
	b.WriteString(m.KeyInput.View())
	b.WriteString("\n\n")

	b.WriteString(BlurredInputStyle.Render("  The hub will push sensor updates to this address."))
	b.WriteString("\n")

	return b.String()
}

// renderApplying renders the in-flight progress display
func (m SetupModel) renderApplying() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Configuring hub at %s...\n\n", m.Spinner.View(), m.Hub.IP))
	b.WriteString(RenderSubtitle("  Reading configuration, patching server settings, writing back"))
	b.WriteString("\n")

	return b.String()
}

// applySetup performs the full setup exchange against the hub
func applySetup(ip, apiKey, serverAddr string) tea.Cmd {
	return func() tea.Msg {
		h := hub.New(ip)
		defer h.Close()

		ok, err := h.Setup(context.Background(), apiKey, serverAddr, setupRetries)
		return applyCompleteMsg{
			ok:   ok,
			info: h.Info(),
			mac:  h.MACAddress(),
			err:  err,
		}
	}
}
