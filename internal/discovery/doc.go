// Package discovery provides mDNS-based discovery of VegeHub devices.
//
// This package implements multicast DNS (mDNS/DNS-SD) service discovery to
// locate VegeHub relay/sensor hubs on the local network. Hubs advertise
// themselves using the "_vege._tcp" service type.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for service advertisements from VegeHub devices
//  3. Resolves each advertisement to an instance name and IPv4 address
//  4. Returns the complete list of discovered hubs after the timeout period
//
// # Usage Example
//
//	// Discover hubs with a 5-second timeout
//	hubs, err := discovery.ScanForHubs(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, h := range hubs {
//	    fmt.Printf("Found: %s at %s\n", h.ServiceName, h.IP)
//	}
//
// # Sequencing
//
// A scan blocks until its timeout elapses and then returns the full result
// list. Callers must run discovery to completion first and hand the results
// to the request layer afterwards; there is no streaming interface, so a
// scan can never interleave with request traffic it feeds.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Hubs must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
