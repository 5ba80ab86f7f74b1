package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/vegehub/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout for owned sessions.
	DefaultTimeout = 10 * time.Second

	pathInfoGet        = "/api/info/get"
	pathConfigGet      = "/api/config/get"
	pathConfigSet      = "/api/config/set"
	pathActuatorStatus = "/api/actuators/status"
	pathActuatorSet    = "/api/actuators/set"
	pathUpdateSend     = "/api/update/send"
)

// Hub is a handle to one VegeHub device. It holds the device identity, the
// last fetched DeviceInfo snapshot, and the HTTP session used for requests.
//
// The session is either borrowed (supplied via WithHTTPClient, never closed
// by the handle) or owned (created lazily on first request and released by
// Close). Ownership is tracked explicitly: a borrowed session is never
// closed even if Close is called, and a closed owned session is never
// reused — the next request allocates a fresh one.
//
// A Hub is safe for concurrent use; concurrent operations on the same
// device are independent and unordered, and the device's own last-write-wins
// semantics govern overlapping actuator commands.
type Hub struct {
	ipAddress string
	uniqueID  string
	timeout   time.Duration

	mu          sync.Mutex
	macAddress  string
	info        *DeviceInfo
	session     *http.Client
	ownsSession bool
}

// Option configures a Hub at construction time.
type Option func(*Hub)

// WithHTTPClient supplies an external HTTP client. The handle borrows it:
// Close becomes a no-op and the caller remains responsible for the client's
// lifetime.
func WithHTTPClient(client *http.Client) Option {
	return func(h *Hub) {
		h.session = client
		h.ownsSession = false
	}
}

// WithMAC pre-seeds the device MAC address, skipping the need for an
// initial RetrieveMAC call.
func WithMAC(mac string) Option {
	return func(h *Hub) {
		h.macAddress = NormalizeMAC(mac)
	}
}

// WithUniqueID sets a caller-assigned identifier carried on the handle.
func WithUniqueID(id string) Option {
	return func(h *Hub) {
		h.uniqueID = id
	}
}

// WithTimeout sets the request timeout used when the handle creates its own
// session. It has no effect on a borrowed client.
func WithTimeout(d time.Duration) Option {
	return func(h *Hub) {
		h.timeout = d
	}
}

// New creates a handle for the device at the given IP address. No network
// I/O happens until the first operation.
func New(ipAddress string, opts ...Option) *Hub {
	h := &Hub{
		ipAddress: ipAddress,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// IPAddress returns the device IP address.
func (h *Hub) IPAddress() string {
	return h.ipAddress
}

// URL returns the device base URL.
func (h *Hub) URL() string {
	return "http://" + h.ipAddress
}

// MACAddress returns the device MAC address (separator-free form), or the
// empty string if it has not been retrieved or seeded.
func (h *Hub) MACAddress() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.macAddress
}

// UniqueID returns the caller-assigned identifier, if any.
func (h *Hub) UniqueID() string {
	return h.uniqueID
}

// Info returns the cached DeviceInfo snapshot, or nil if no info fetch has
// succeeded yet. The returned value is a copy.
func (h *Hub) Info() *DeviceInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.info == nil {
		return nil
	}
	snapshot := *h.info
	return &snapshot
}

// acquireSession returns the HTTP client to use for a request, lazily
// creating an owned one when the handle has none. Only one owned session
// exists at a time.
func (h *Hub) acquireSession() *http.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		h.session = &http.Client{Timeout: h.timeout}
		h.ownsSession = true
		logging.Debug("created owned device session",
			zap.String("device", h.ipAddress),
			zap.Duration("timeout", h.timeout))
	}
	return h.session
}

// Close releases the handle's owned session. It is idempotent: a second
// call does nothing, and it never touches a borrowed session. The handle
// remains usable — a later operation lazily creates a fresh owned session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ownsSession || h.session == nil {
		return
	}
	h.session.CloseIdleConnections()
	h.session = nil
	logging.Debug("closed owned device session", zap.String("device", h.ipAddress))
}

func statusCode(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

// post performs one JSON POST exchange with the device. It returns the raw
// response body (nil when the device answered with an empty body) or a
// TransportError for any connection fault, non-2xx status, or body that is
// not valid JSON. It never retries and never interprets payload semantics.
func (h *Hub) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL()+path, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.acquireSession().Do(req)
	logging.LogDeviceRequest(h.ipAddress, path, statusCode(resp), err)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Path: path, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &TransportError{Path: path, Err: errMalformedBody}
	}
	return data, nil
}

// get performs one GET exchange, discarding the response body. Used only by
// RequestUpdate, whose firmware endpoint predates the POST-only API.
func (h *Hub) get(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL()+path, nil)
	if err != nil {
		return &TransportError{Path: path, Err: err}
	}

	resp, err := h.acquireSession().Do(req)
	logging.LogDeviceRequest(h.ipAddress, path, statusCode(resp), err)
	if err != nil {
		return &TransportError{Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Path: path, StatusCode: resp.StatusCode}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
