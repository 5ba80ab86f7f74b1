// Package config provides user configuration management for the VegeHub project.
//
// This package manages a YAML-based configuration file that stores user-defined
// metadata for VegeHub devices, including nicknames, sensor channel labels, and
// application preferences. The configuration follows OS-specific conventions for
// storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/vegehub/config.yaml or $HOME/.config/vegehub/config.yaml
//   - macOS: $HOME/.config/vegehub/config.yaml
//   - Windows: %LOCALAPPDATA%\vegehub\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores hub API keys. These are always prompted
// from the user when needed.
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update hub metadata
//	registry.SetHubNickname("A1B2C3D4E5F6", "Greenhouse Hub")
//	registry.SetChannelLabel("A1B2C3D4E5F6", 1, "Tomato Bed Moisture", "vh400")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
