// Package hub implements the device communication core for VegeHub
// relay/sensor hubs: a retry-aware JSON-over-HTTP client, the dual-schema
// configuration model, actuator command and verification, and the HTTP
// session lifecycle.
//
// # Device Handle
//
// A Hub is a handle to one device. It is constructed from an IP address
// (typically obtained from the discovery package) and performs no I/O until
// the first operation:
//
//	h := hub.New("192.168.0.100")
//	defer h.Close()
//
//	info, err := h.FetchInfo(ctx, 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("firmware %s, %d sensors, %d actuators\n",
//	    info.Version, info.NumSensors, info.NumActuators)
//
// # Session Ownership
//
// The underlying http.Client is owned by default: created lazily on first
// use and released by Close (idempotent; the handle remains usable and will
// lazily create a fresh session afterwards). A client supplied with
// WithHTTPClient is borrowed — the handle never closes it and Close is a
// no-op. Ownership is explicit metadata on the handle, never inferred from
// whether a session happens to exist.
//
// # Retries and Errors
//
// Every operation takes a retries count: the number of additional attempts
// after the first, so 0 means exactly one attempt. Only transport-level
// faults (connection errors, non-2xx status, malformed JSON) are retried;
// exhaustion surfaces a ConnectionError. A device that answers but rejects
// the request reports it in-band, and operations return that as a negative
// result (false, nil states, ...) rather than an error. Configuration
// payloads that match neither firmware schema fail fast with a SchemaError.
//
// # Configuration Schemas
//
// Legacy firmware configures its update server through top-level "hub" and
// "api_key" fields; modern firmware through an "endpoints" array. Config
// fetches request both shapes at once and classify the answer with
// DetectSchema; Setup patches whichever variant the device speaks and
// writes the full structure back. See config.go for the classification
// rule.
//
// # Actuators
//
// SetActuator is a single wire-level command with no built-in confirmation.
// Callers that need a verified transition compose it with a delayed state
// read-back, packaged here as VerifyActuator / SetActuatorVerified:
//
//	res, err := h.SetActuatorVerified(ctx, 0, 1, 60, 2, nil)
//	if err != nil {
//	    log.Fatal(err) // could not talk to the device
//	}
//	if !res.Success {
//	    log.Printf("actuator did not switch: %s", res.Mismatch)
//	}
//
// # Concurrency and Cancellation
//
// All operations take a context.Context; a caller-level deadline is the
// supported cancellation mechanism and aborts the in-flight request without
// breaking the session for later calls. The handle provides no mutual
// exclusion between concurrent operations on the same device — overlapping
// commands resolve by the device's own last-write-wins behavior.
//
// Run discovery to completion before starting request traffic: the
// discovery package's scan is a blocking call that returns the complete
// device list, and its results are handed to this package afterwards.
package hub
