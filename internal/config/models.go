package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for hubs and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Hubs        map[string]*Hub    `yaml:"hubs,omitempty"` // Keyed by hub MAC address (separator-free)
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Hub represents user-defined metadata for a single VegeHub device.
// This is keyed by the hub's MAC address in the Registry.
type Hub struct {
	Nickname  string                `yaml:"nickname,omitempty"`  // User-friendly name
	LastIP    string                `yaml:"last_ip,omitempty"`   // Last known IP address
	LastSeen  time.Time             `yaml:"last_seen,omitempty"` // Last discovery/connection time
	Channels  map[int]*ChannelMeta  `yaml:"channels,omitempty"`  // Sensor channel metadata (keyed by 1-based slot)
	Actuators map[int]*ActuatorMeta `yaml:"actuators,omitempty"` // Actuator metadata (keyed by 0-based slot)
}

// ChannelMeta represents user-defined metadata for a single sensor channel.
// This is purely client-side information - the hub itself only reports raw
// voltages and does not know what sensor is attached.
type ChannelMeta struct {
	Label  string `yaml:"label"`  // User-defined label (e.g., "Tomato Bed Moisture")
	Sensor string `yaml:"sensor"` // Sensor type identifier (e.g., "vh400", "therm200", "raw")
}

// ActuatorMeta represents user-defined metadata for a single actuator slot.
type ActuatorMeta struct {
	Label string `yaml:"label"` // User-defined label (e.g., "Drip Line Valve")
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool   `yaml:"auto_discover"`            // Enable automatic mDNS discovery on startup
	DiscoverTimeout int    `yaml:"discover_timeout"`         // mDNS discovery timeout in seconds
	DefaultServer   string `yaml:"default_server,omitempty"` // Default update-server address for setup
}

// SensorTypeDefinitions maps sensor type identifiers to human-readable names.
// This is used for display and validation purposes.
var SensorTypeDefinitions = map[string]string{
	"raw":      "Raw Voltage",
	"vh400":    "VH400 Soil Moisture",
	"therm200": "THERM200 Soil Temperature",
	"switch":   "Dry Contact / Switch",
	"other":    "Other",
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Hubs:    make(map[string]*Hub),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 5,
		},
	}
}

// GetHub retrieves hub metadata by MAC address.
// Returns nil if the hub doesn't exist in the registry.
func (r *Registry) GetHub(mac string) *Hub {
	return r.Hubs[mac]
}

// EnsureHub ensures a hub entry exists in the registry.
// If the hub doesn't exist, creates a new entry with default values.
// Returns the hub entry (existing or newly created).
func (r *Registry) EnsureHub(mac string) *Hub {
	if r.Hubs == nil {
		r.Hubs = make(map[string]*Hub)
	}

	if hub, exists := r.Hubs[mac]; exists {
		return hub
	}

	hub := &Hub{
		Channels: make(map[int]*ChannelMeta),
	}
	r.Hubs[mac] = hub
	return hub
}

// UpdateHubLastSeen updates the last seen timestamp and IP for a hub.
func (r *Registry) UpdateHubLastSeen(mac, ip string) {
	hub := r.EnsureHub(mac)
	hub.LastSeen = time.Now()
	hub.LastIP = ip
}

// SetChannelLabel sets or updates the sensor channel metadata for a hub.
func (r *Registry) SetChannelLabel(mac string, slot int, label, sensor string) {
	hub := r.EnsureHub(mac)

	if hub.Channels == nil {
		hub.Channels = make(map[int]*ChannelMeta)
	}

	hub.Channels[slot] = &ChannelMeta{
		Label:  label,
		Sensor: sensor,
	}
}

// SetActuatorLabel sets or updates the actuator metadata for a hub.
func (r *Registry) SetActuatorLabel(mac string, slot int, label string) {
	hub := r.EnsureHub(mac)

	if hub.Actuators == nil {
		hub.Actuators = make(map[int]*ActuatorMeta)
	}

	hub.Actuators[slot] = &ActuatorMeta{
		Label: label,
	}
}

// SetHubNickname sets a user-friendly nickname for a hub.
func (r *Registry) SetHubNickname(mac, nickname string) {
	hub := r.EnsureHub(mac)
	hub.Nickname = nickname
}
