package discovery

import (
	"fmt"
	"time"
)

// Hub represents a discovered VegeHub device on the network. It is an
// ephemeral record: the driver's device handle is constructed from it but
// never holds on to it.
type Hub struct {
	// ServiceName is the mDNS service instance name (e.g. "Vege_Hub_4B49D8")
	ServiceName string

	// Hostname is the mDNS hostname (e.g. "vegehub-4b49d8.local.")
	Hostname string

	// IP is the resolved address, IPv4 preferred (e.g. "192.168.0.100")
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the hub was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the hub
func (h *Hub) String() string {
	return fmt.Sprintf("VegeHub %s at %s:%d", h.ServiceName, h.IP, h.Port)
}

// BaseURL returns the HTTP base URL for the hub
func (h *Hub) BaseURL() string {
	if h.Port == 0 || h.Port == DefaultPort {
		return fmt.Sprintf("http://%s", h.IP)
	}
	return fmt.Sprintf("http://%s:%d", h.IP, h.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (h *Hub) GetMetadata(key string) string {
	if h.Metadata == nil {
		return ""
	}
	return h.Metadata[key]
}
