// Package tui implements the terminal user interface for the VegeHub setup wizard.
//
// This package provides an interactive, full-screen TUI for discovering VegeHub
// relay/sensor hubs on the local network and pointing them at a data server.
// Built using the Bubble Tea framework, it follows the Elm architecture with
// immutable state updates and a clean Model-Update-View pattern.
//
// # Architecture
//
// The TUI is organized into four screens coordinated by AppModel:
//   - Discovery: Scan network for hubs or enter IP manually
//   - Setup: Enter server address and API key, then apply
//   - Success/Failure: Display the outcome of the configuration write
//
// All screens use a unified container pattern (RenderApplicationContainer) for
// consistent layout with header, content area, and context-sensitive footer.
//
// # Framework Components
//
// The TUI leverages Bubble Tea framework components throughout:
//   - bubbles/spinner: Loading indicators
//   - bubbles/textinput: Server address and masked API key entry
//   - bubbles/progress: Scan progress bar
//   - bubbles/list: Hub list with card-style delegates
//   - bubbles/help: Context-aware help system
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	// Create and run the wizard
//	app := tui.NewAppModel(tui.ScreenDiscovery, nil)
//	program := tea.NewProgram(app, tea.WithAltScreen())
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Screen Flow
//
// The typical user flow through the wizard:
//
//  1. Discovery Screen:
//     - Automatically scans the network for hubs (mDNS)
//     - Displays found hubs as cards with firmware and address details
//     - Allows manual IP entry if a hub is asleep or not advertising
//     - User selects a hub to configure
//
//  2. Setup Screen:
//     - User enters the server address the hub should push updates to
//     - User enters the hub's API key (masked input)
//     - Apply reads the hub configuration, patches the server settings
//       for whichever config schema the firmware speaks, and writes it back
//
//  3. Success/Failure Screen:
//     - Shows the hub's reported firmware, channel and actuator counts
//     - On success, records the hub in the local registry
//     - Offers retry, re-discovery, or exit
package tui
