package hub

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/muurk/vegehub/internal/logging"
)

// Public device operations. Every operation takes a retries count (extra
// attempts after the first, 0 = no retry) and routes through withRetries, so
// connection failures uniformly surface as ConnectionError. Device-reported
// rejections surface as negative results, not errors.

// FetchInfo retrieves the device identity/capability snapshot and caches it
// on the handle. A device response without a "hub" section yields (nil, nil)
// and leaves the cached snapshot unchanged.
func (h *Hub) FetchInfo(ctx context.Context, retries int) (*DeviceInfo, error) {
	var resp infoResponse
	err := h.withRetries(ctx, pathInfoGet, retries, func(ctx context.Context) error {
		resp = infoResponse{}
		body, err := h.post(ctx, pathInfoGet, map[string]any{})
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return &TransportError{Path: pathInfoGet, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.Hub == nil {
		return nil, nil
	}

	info := resp.Hub.snapshot()
	h.mu.Lock()
	h.info = info
	if resp.Wifi != nil && resp.Wifi.MACAddr != "" {
		h.macAddress = NormalizeMAC(resp.Wifi.MACAddr)
	}
	h.mu.Unlock()

	snapshot := *info
	return &snapshot, nil
}

// RetrieveMAC asks the device for its MAC address and stores it on the
// handle. It returns false (with a nil error) when the device answered but
// reported no MAC, leaving any previously known address untouched.
func (h *Hub) RetrieveMAC(ctx context.Context, retries int) (bool, error) {
	var resp infoResponse
	err := h.withRetries(ctx, pathInfoGet, retries, func(ctx context.Context) error {
		resp = infoResponse{}
		body, err := h.post(ctx, pathInfoGet, map[string]any{})
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return &TransportError{Path: pathInfoGet, Err: err}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if resp.Wifi == nil || resp.Wifi.MACAddr == "" {
		return false, nil
	}

	h.mu.Lock()
	h.macAddress = NormalizeMAC(resp.Wifi.MACAddr)
	h.mu.Unlock()
	return true, nil
}

// Config reads the device configuration and classifies its schema. The
// request names both schemas' top-level keys at once, so firmware of either
// generation answers in its native shape and the response is classified by
// DetectSchema — never by guessing from what was requested.
func (h *Hub) Config(ctx context.Context, retries int) (*Config, error) {
	request := map[string]any{
		"hub":       []any{},
		"api_key":   []any{},
		"endpoints": []any{},
	}

	var raw map[string]any
	err := h.withRetries(ctx, pathConfigGet, retries, func(ctx context.Context) error {
		raw = nil
		body, err := h.post(ctx, pathConfigGet, request)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return &TransportError{Path: pathConfigGet, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cfg := ParseConfig(raw)
	logging.Debug("device configuration read",
		zap.String("device", h.ipAddress),
		zap.String("schema", cfg.Schema.String()),
		zap.Int("endpoints", len(cfg.Endpoints)))
	return cfg, nil
}

// SetConfig writes a full configuration payload to the device. It returns
// false when the device rejected the write (non-zero in-body error).
func (h *Hub) SetConfig(ctx context.Context, payload map[string]any, retries int) (bool, error) {
	var body json.RawMessage
	err := h.withRetries(ctx, pathConfigSet, retries, func(ctx context.Context) error {
		var err error
		body, err = h.post(ctx, pathConfigSet, payload)
		return err
	})
	if err != nil {
		return false, err
	}
	return !deviceRejected(body), nil
}

// Setup points the device at a server: it reads the current configuration,
// patches the API key and server address for whichever schema the firmware
// speaks, writes the result back, and refreshes the cached DeviceInfo.
//
// Failure modes: connection exhaustion returns a ConnectionError; a
// configuration that cannot be patched (see ModifyConfig) returns a
// SchemaError with nothing written; a device-rejected write returns
// (false, nil).
func (h *Hub) Setup(ctx context.Context, apiKey, serverAddr string, retries int) (bool, error) {
	cfg, err := h.Config(ctx, retries)
	if err != nil {
		return false, err
	}

	patched, err := ModifyConfig(cfg.Raw(), apiKey, serverAddr)
	if err != nil {
		return false, err
	}

	ok, err := h.SetConfig(ctx, patched, retries)
	if err != nil {
		return false, err
	}
	if !ok {
		logging.Warn("device rejected configuration write", zap.String("device", h.ipAddress))
		return false, nil
	}

	if _, err := h.FetchInfo(ctx, retries); err != nil {
		return false, err
	}

	logging.Info("device setup complete",
		zap.String("device", h.ipAddress),
		zap.String("server", serverAddr),
		zap.String("schema", cfg.Schema.String()))
	return true, nil
}

// RequestUpdate asks the device to push a sensor update report to its
// configured server immediately.
func (h *Hub) RequestUpdate(ctx context.Context, retries int) error {
	return h.withRetries(ctx, pathUpdateSend, retries, func(ctx context.Context) error {
		return h.get(ctx, pathUpdateSend)
	})
}
