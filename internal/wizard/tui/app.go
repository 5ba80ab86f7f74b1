package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/vegehub/internal/config"
	"github.com/muurk/vegehub/internal/discovery"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenSetup     Screen = "setup"
	ScreenSuccess   Screen = "success"
	ScreenFailure   Screen = "failure"
)

// successKeyMap defines key bindings for the success screen
type successKeyMap struct {
	Another  key.Binding
	Discover key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k successKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Another, k.Discover, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k successKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Another, k.Discover, k.Quit},
	}
}

// failureKeyMap defines key bindings for the failure screen
type failureKeyMap struct {
	Retry    key.Binding
	Discover key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k failureKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Discover, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k failureKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Retry, k.Discover, k.Quit},
	}
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen Screen

	// Screen models
	DiscoveryModel DiscoveryModel
	SetupModel     SetupModel

	// Shared application state
	SelectedHub *discovery.Hub
	LastResult  applyCompleteMsg

	// UI state
	Width  int
	Height int

	// Help
	Help        help.Model
	SuccessKeys successKeyMap
	FailureKeys failureKeyMap
}

// NewAppModel creates a new application model starting at the specified screen
func NewAppModel(startScreen Screen, target *discovery.Hub) AppModel {
	h := help.New()

	successKeys := successKeyMap{
		Another: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "set up again"),
		),
		Discover: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "discover"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "enter"),
			key.WithHelp("q", "quit"),
		),
	}

	failureKeys := failureKeyMap{
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Discover: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "discover"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	model := AppModel{
		CurrentScreen: startScreen,
		SelectedHub:   target,
		Help:          h,
		SuccessKeys:   successKeys,
		FailureKeys:   failureKeys,
	}

	// Initialize the starting screen
	switch startScreen {
	case ScreenDiscovery:
		model.DiscoveryModel = NewDiscoveryModel()
	case ScreenSetup:
		model.SetupModel = NewSetupModel(target)
	}

	return model
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenSetup:
		return m.SetupModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.DiscoveryModel.Width = msg.Width
		m.DiscoveryModel.Height = msg.Height
		m.SetupModel.Width = msg.Width
		m.SetupModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		// Check if user selected a hub
		if m.DiscoveryModel.Selected {
			if selected := m.DiscoveryModel.GetSelectedHub(); selected != nil {
				m.SelectedHub = selected
				return m.transitionTo(ScreenSetup)
			}
		}

		// Check for quit (normal mode only, not during scan)
		if !m.DiscoveryModel.Scanning && !m.DiscoveryModel.ManualMode {
			if keyMsg, ok := msg.(tea.KeyMsg); ok {
				if keyMsg.String() == "q" || keyMsg.String() == "esc" {
					return m, tea.Quit
				}
			}
		}

	case ScreenSetup:
		updated, c := m.SetupModel.Update(msg)
		m.SetupModel = updated.(SetupModel)
		cmd = c

		if m.SetupModel.BackRequested {
			return m.transitionTo(ScreenDiscovery)
		}

		if m.SetupModel.Done {
			m.LastResult = m.SetupModel.Result
			if m.LastResult.err == nil && m.LastResult.ok {
				m.rememberHub()
				return m.transitionTo(ScreenSuccess)
			}
			return m.transitionTo(ScreenFailure)
		}

	case ScreenSuccess:
		return m.handleSuccessScreen(msg)

	case ScreenFailure:
		return m.handleFailureScreen(msg)
	}

	return m, cmd
}

// handleSuccessScreen handles user input on the success screen
func (m AppModel) handleSuccessScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "s":
			// Set up the same hub again
			return m.transitionTo(ScreenSetup)

		case "d":
			// Discover another hub
			return m.transitionTo(ScreenDiscovery)

		case "q", "enter", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

// handleFailureScreen handles user input on the failure screen
func (m AppModel) handleFailureScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "r":
			// Retry - back to the setup form
			return m.transitionTo(ScreenSetup)

		case "d":
			return m.transitionTo(ScreenDiscovery)

		case "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	m.CurrentScreen = screen

	var cmd tea.Cmd

	switch screen {
	case ScreenDiscovery:
		m.DiscoveryModel = NewDiscoveryModel()
		m.DiscoveryModel.Width = m.Width
		m.DiscoveryModel.Height = m.Height
		cmd = m.DiscoveryModel.Init()

	case ScreenSetup:
		if m.SelectedHub != nil {
			m.SetupModel = NewSetupModel(m.SelectedHub)
			m.SetupModel.Width = m.Width
			m.SetupModel.Height = m.Height
			cmd = m.SetupModel.Init()
		}
	}

	return m, cmd
}

// rememberHub records the configured hub in the local registry.
func (m AppModel) rememberHub() {
	if m.LastResult.mac == "" || m.SelectedHub == nil {
		return
	}
	registry, err := config.LoadRegistry()
	if err != nil {
		return
	}
	registry.UpdateHubLastSeen(m.LastResult.mac, m.SelectedHub.IP)
	if err := registry.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save hub registry: %v\n", err)
	}
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenSetup:
		return m.SetupModel.View()
	case ScreenSuccess:
		return m.renderSuccessScreen()
	case ScreenFailure:
		return m.renderFailureScreen()
	default:
		return "Unknown screen"
	}
}

// renderSuccessScreen renders the success result screen
func (m AppModel) renderSuccessScreen() string {
	var b strings.Builder

	b.WriteString(RenderTitle("✓ Hub Configured Successfully!"))
	b.WriteString("\n\n")

	if m.SelectedHub != nil {
		b.WriteString(fmt.Sprintf("  Hub:    %s (%s)\n", m.SelectedHub.ServiceName, m.SelectedHub.IP))
	}
	if m.LastResult.mac != "" {
		b.WriteString(fmt.Sprintf("  MAC:    %s\n", m.LastResult.mac))
	}
	if info := m.LastResult.info; info != nil {
		b.WriteString(fmt.Sprintf("  Firmware:  %s\n", info.Version))
		b.WriteString(fmt.Sprintf("  Sensors:   %d\n", info.NumSensors))
		b.WriteString(fmt.Sprintf("  Actuators: %d\n", info.NumActuators))
		if !info.IsAC {
			b.WriteString(fmt.Sprintf("  Battery:   %.2f V\n", info.BattV))
		}
	}
	b.WriteString("\n")

	b.WriteString("What would you like to do next?\n\n")
	b.WriteString(MenuItemStyle.Render("  s - Set up this hub again"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  d - Discover another hub"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q - Exit application"))
	b.WriteString("\n")

	helpText := m.Help.View(m.SuccessKeys)
	return RenderApplicationContainer(b.String(), helpText, m.Width, m.Height)
}

// renderFailureScreen renders the failure result screen
func (m AppModel) renderFailureScreen() string {
	var b strings.Builder

	b.WriteString(RenderTitle("✗ Hub Setup Failed"))
	b.WriteString("\n\n")

	if m.LastResult.err != nil {
		b.WriteString(RenderError(fmt.Sprintf("%v", m.LastResult.err)))
	} else {
		b.WriteString(RenderError("the hub rejected the configuration write"))
	}
	b.WriteString("\n\n")

	// Troubleshooting hints
	b.WriteString("Troubleshooting:\n")
	b.WriteString("  • Check the hub is powered on and awake\n")
	b.WriteString("  • Verify the server address is reachable from the hub's network\n")
	b.WriteString("  • Battery hubs sleep between updates - press the hub button to wake it\n\n")

	b.WriteString("What would you like to do?\n\n")
	b.WriteString(MenuItemStyle.Render("  r - Retry the setup"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  d - Discover another hub"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("  q - Exit application"))
	b.WriteString("\n")

	helpText := m.Help.View(m.FailureKeys)
	return RenderApplicationContainer(b.String(), helpText, m.Width, m.Height)
}
