package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/vegehub/internal/logging"
)

const (
	// ServiceType is the mDNS service type VegeHub devices advertise.
	ServiceType = "_vege._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port for VegeHub devices
	DefaultPort = 80
)

// Scanner handles mDNS hub discovery.
//
// A scan is a bounded, blocking operation: it runs for the configured
// timeout and returns the complete list of hubs seen in that window. Run a
// scan to completion before starting request traffic against the hubs it
// returns; the request layer is handed finished results, it never consumes
// a scan in progress.
type Scanner struct {
	// Timeout is the maximum time to wait for hub advertisements
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForHubs discovers all VegeHub devices on the local network.
// Returns a list of discovered hubs or an error.
func (s *Scanner) ScanForHubs() ([]*Hub, error) {
	return s.ScanForHubsWithContext(context.Background())
}

// ScanForHubsWithContext discovers hubs with a custom context
func (s *Scanner) ScanForHubsWithContext(ctx context.Context) ([]*Hub, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	hubs := make([]*Hub, 0)
	done := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect entries until the browser closes the channel
	go func() {
		defer close(done)
		for entry := range entries {
			hub := s.parseServiceEntry(entry)
			if hub != nil {
				logging.LogDiscoveredHub(hub.ServiceName, hub.IP, hub.Port)
				hubs = append(hubs, hub)
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the scan window to elapse and the collector to drain
	<-ctx.Done()
	<-done

	return hubs, nil
}

// WaitForHub waits for a specific hub by service instance name.
// Returns the hub or an error if not found within timeout.
func (s *Scanner) WaitForHub(name string) (*Hub, error) {
	return s.WaitForHubWithContext(context.Background(), name)
}

// WaitForHubWithContext waits for a specific hub with a custom context
func (s *Scanner) WaitForHubWithContext(ctx context.Context, name string) (*Hub, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	hubChan := make(chan *Hub, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			hub := s.parseServiceEntry(entry)
			if hub != nil && hub.ServiceName == name {
				hubChan <- hub
				cancel() // Found the hub, cancel context
				return
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case hub := <-hubChan:
		return hub, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("hub %q not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Hub.
// Returns nil if the entry carries no usable address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Hub {
	name := entry.Instance
	if name == "" {
		name = entry.ServiceInstanceName()
	}
	if name == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Get port (default to 80 if not specified)
	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Hub{
		ServiceName:  name,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForHubs is a convenience function to scan for hubs with a custom timeout
func ScanForHubs(timeout time.Duration) ([]*Hub, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForHubs()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Hub, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForHubs()
}
