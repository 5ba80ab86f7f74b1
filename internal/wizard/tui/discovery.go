package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/vegehub/internal/discovery"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	hubs []*discovery.Hub
	err  error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual IP entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Confirm, m.Cancel},
	}
}

// scanningKeyMap defines key bindings while a scan is in progress
type scanningKeyMap struct {
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{s.Quit},
	}
}

// emptyScreenKeyMap defines key bindings for empty results screen
type emptyScreenKeyMap struct {
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (e emptyScreenKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{e.Rescan, e.Manual, e.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (e emptyScreenKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{e.Rescan, e.Manual, e.Quit},
	}
}

// hubItem wraps a discovered hub for use with bubbles/list
type hubItem struct {
	hub *discovery.Hub
}

// Implement list.Item interface
func (h hubItem) FilterValue() string {
	return h.hub.ServiceName + " " + h.hub.IP + " " + h.hub.Hostname
}

// Title returns the hub name for list display
func (h hubItem) Title() string {
	if h.hub.ServiceName == h.hub.IP {
		return fmt.Sprintf("Manual: %s", h.hub.IP)
	}
	return h.hub.ServiceName
}

// Description returns hub details for list display
func (h hubItem) Description() string {
	version := "Unknown"
	if v := h.hub.GetMetadata("version"); v != "" {
		version = v
	}
	return fmt.Sprintf("%s:%d • Firmware: %s", h.hub.IP, h.hub.Port, version)
}

// hubDelegate is a custom list delegate for rendering hub cards
type hubDelegate struct {
	width int
}

func (d hubDelegate) Height() int { return 7 } // Card height including borders

func (d hubDelegate) Spacing() int { return 1 } // Spacing between cards

func (d hubDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d hubDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	hi, ok := item.(hubItem)
	if !ok {
		return
	}

	h := hi.hub
	selected := index == m.Index()

	var content strings.Builder

	// Add selection indicator to hub name
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + hi.Title()))
	} else {
		content.WriteString("  " + hi.Title())
	}
	content.WriteString("\n\n")

	content.WriteString(fmt.Sprintf("  IP:       %s:%d\n", h.IP, h.Port))
	if h.Hostname != "" {
		content.WriteString(fmt.Sprintf("  Hostname: %s\n", h.Hostname))
	}
	version := "Unknown"
	if v := h.GetMetadata("version"); v != "" {
		version = v
	}
	content.WriteString(fmt.Sprintf("  Firmware: %s", version))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	// Calculate card width (leave room for margins and borders)
	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}
	cardStyle = cardStyle.Width(cardWidth)

	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the hub discovery screen state
type DiscoveryModel struct {
	// Discovery state
	Scanning bool
	HubList  list.Model
	Selected bool
	Err      error

	// Manual IP entry state
	ManualMode bool
	IPInput    textinput.Model

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap
	EmptyKeys     emptyScreenKeyMap
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel() DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ipInput := textinput.New()
	ipInput.Placeholder = "192.168.0.100"
	ipInput.CharLimit = 15 // Max length for IPv4 address
	ipInput.Width = 30

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	delegate := hubDelegate{width: MinTerminalWidth}
	hubList := list.New([]list.Item{}, delegate, 0, 0)
	hubList.Title = "Discovered Hubs"
	hubList.SetShowStatusBar(false)
	hubList.SetFilteringEnabled(true)
	hubList.Styles.Title = TitleStyle

	h := help.New()

	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "set up"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual IP"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	scanningKeys := scanningKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}

	emptyKeys := emptyScreenKeyMap{
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual IP"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return DiscoveryModel{
		HubList:      hubList,
		IPInput:      ipInput,
		Spinner:      s,
		ProgressBar:  progressBar,
		Help:         h,
		Keys:         keys,
		ManualKeys:   manualKeys,
		ScanningKeys: scanningKeys,
		EmptyKeys:    emptyKeys,
	}
}

// Init starts scanning immediately
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanHubs,
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.HubList.SetWidth(msg.Width - 4)
		m.HubList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.hubs))
		for i, h := range msg.hubs {
			items[i] = hubItem{hub: h}
		}
		m.HubList.SetItems(items)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.HubList, cmd = m.HubList.Update(msg)
	}

	return m, cmd
}

// updateNormalMode handles keyboard input in normal hub list mode
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		if selectedItem := m.HubList.SelectedItem(); selectedItem != nil {
			m.Selected = true
			return m, nil
		}

	case "r":
		// Rescan
		m.HubList.SetItems([]list.Item{})
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanHubs,
			m.Spinner.Tick,
		)

	case "m":
		// Switch to manual IP entry mode
		m.ManualMode = true
		m.IPInput.SetValue("")
		m.IPInput.Focus()
	}

	return m, nil
}

// updateManualMode handles keyboard input in manual IP entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "esc":
		m.ManualMode = false
		m.IPInput.SetValue("")
		m.IPInput.Blur()
		return m, nil

	case "enter":
		value := m.IPInput.Value()
		if value != "" {
			manual := &discovery.Hub{
				IP:           value,
				Port:         discovery.DefaultPort,
				ServiceName:  value,
				DiscoveredAt: time.Now(),
			}
			newItem := hubItem{hub: manual}
			items := append([]list.Item{newItem}, m.HubList.Items()...)
			m.HubList.SetItems(items)
			m.HubList.Select(0)
			m.ManualMode = false
			m.IPInput.SetValue("")
			m.IPInput.Blur()
			return m, nil
		}
	}

	m.IPInput, cmd = m.IPInput.Update(msg)
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content string
	if m.ManualMode {
		content = m.renderManualEntry()
	} else if m.Scanning {
		content = m.renderScanning(width)
	} else {
		content = m.renderResults()
	}

	var helpText string
	if m.ManualMode {
		helpText = m.Help.View(m.ManualKeys)
	} else if m.Scanning {
		helpText = m.Help.View(m.ScanningKeys)
	} else if len(m.HubList.Items()) > 0 {
		helpText = m.Help.View(m.Keys)
	} else {
		helpText = m.Help.View(m.EmptyKeys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders the centered scanning progress display
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	elapsedSec := int(elapsed.Seconds())

	// Progress against the fixed scan window
	scanSec := int(discovery.DefaultScanTimeout.Seconds())
	progressPercent := (elapsedSec * 100) / scanSec
	if progressPercent > 100 {
		progressPercent = 100
	}
	progressFloat := float64(progressPercent) / 100.0

	title := fmt.Sprintf("%s SEARCHING FOR HUBS", m.Spinner.View())
	subtitle := "Scanning your network for VegeHub devices..."

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
		m.ProgressBar.ViewAs(progressFloat),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", elapsedSec)),
		"",
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderResults renders the hub list or "no hubs found" message
func (m DiscoveryModel) renderResults() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Check that your network allows multicast (mDNS)\n")
		b.WriteString("    • Use 'm' to enter the hub's IP manually\n")

	} else if len(m.HubList.Items()) == 0 {
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString("  ")
		b.WriteString(warningStyle.Render("⚠ No hubs found on your network"))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Ensure the hub is powered on and awake\n")
		b.WriteString("      (battery hubs sleep between updates - press the hub button to wake it)\n")
		b.WriteString("    • Verify you're on the same network segment as the hub\n")
		b.WriteString("    • Use 'r' to rescan or 'm' to enter an IP manually\n")
		b.WriteString("\n")

	} else {
		b.WriteString(m.HubList.View())
	}

	return b.String()
}

// renderManualEntry renders the manual IP entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter hub IP address"))
	b.WriteString("\n\n")
	b.WriteString("  IP Address: ")
	b.WriteString(m.IPInput.View())
	b.WriteString("\n\n")

	return b.String()
}

// GetSelectedHub returns the selected hub (if any)
func (m DiscoveryModel) GetSelectedHub() *discovery.Hub {
	if m.Selected {
		if selectedItem := m.HubList.SelectedItem(); selectedItem != nil {
			if item, ok := selectedItem.(hubItem); ok {
				return item.hub
			}
		}
	}
	return nil
}

// scanHubs is a command that performs hub discovery
func scanHubs() tea.Msg {
	scanner := discovery.NewScanner()
	hubs, err := scanner.ScanForHubs()
	return scanCompleteMsg{
		hubs: hubs,
		err:  err,
	}
}
