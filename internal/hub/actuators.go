package hub

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/muurk/vegehub/internal/logging"
)

// SetActuator commands one actuator slot. state is 0 or 1; duration is the
// on-time in seconds, 0 meaning indefinite. It issues exactly one wire
// command and performs no post-condition check — verification is composed by
// the caller (see VerifyActuator), since settling time is device-specific
// and does not belong in the command path. It returns false when the device
// rejected the command.
//
// There is no multi-slot variant. Callers orchestrating several slots issue
// independent SetActuator calls; the driver makes no atomicity promise
// across slots.
func (h *Hub) SetActuator(ctx context.Context, slot, state, duration, retries int) (bool, error) {
	payload := map[string]any{
		"slot":     slot,
		"state":    state,
		"duration": duration,
	}

	var body json.RawMessage
	err := h.withRetries(ctx, pathActuatorSet, retries, func(ctx context.Context) error {
		var err error
		body, err = h.post(ctx, pathActuatorSet, payload)
		return err
	})
	if err != nil {
		return false, err
	}
	if deviceRejected(body) {
		return false, nil
	}

	logging.Debug("actuator command sent",
		zap.String("device", h.ipAddress),
		zap.Int("slot", slot),
		zap.Int("state", state),
		zap.Int("duration", duration))
	return true, nil
}

// ActuatorStates reads the current state of every actuator slot, in slot
// order. A well-formed response without an "actuators" section yields
// (nil, nil).
func (h *Hub) ActuatorStates(ctx context.Context, retries int) ([]ActuatorState, error) {
	var resp actuatorStatusResponse
	err := h.withRetries(ctx, pathActuatorStatus, retries, func(ctx context.Context) error {
		resp = actuatorStatusResponse{}
		body, err := h.post(ctx, pathActuatorStatus, map[string]any{})
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return &TransportError{Path: pathActuatorStatus, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Actuators, nil
}
