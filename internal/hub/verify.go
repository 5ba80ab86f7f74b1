package hub

import (
	"context"
	"fmt"
	"time"
)

// Caller-level actuator verification. SetActuator deliberately does not
// confirm anything; this file provides the composition — command, settle
// delay, state read-back, comparison — for callers that want a verified
// transition.

// VerifyOptions configures actuator verification behavior.
type VerifyOptions struct {
	// SettleDelay is how long to wait before the first read-back, giving
	// the actuator hardware time to switch.
	// Default: 500ms
	SettleDelay time.Duration

	// MaxChecks is the number of read-back attempts before giving up.
	// Default: 3
	MaxChecks int

	// CheckDelay is the delay between read-back attempts.
	// Default: 1s
	CheckDelay time.Duration

	// Retries is the per-request retry count used for the state reads.
	// Default: 0
	Retries int
}

// DefaultVerifyOptions returns sensible defaults for verification.
func DefaultVerifyOptions() *VerifyOptions {
	return &VerifyOptions{
		SettleDelay: 500 * time.Millisecond,
		MaxChecks:   3,
		CheckDelay:  1 * time.Second,
		Retries:     0,
	}
}

// VerifyResult reports the outcome of an actuator verification.
type VerifyResult struct {
	// Success is true when the observed state matched the expected one.
	Success bool

	// Checks is the number of read-back attempts made.
	Checks int

	// Observed is the last state read for the slot, nil if the slot never
	// appeared in a status response.
	Observed *ActuatorState

	// Mismatch describes the failure when Success is false.
	Mismatch string
}

// VerifyActuator reads back the state of one slot until it matches the
// expected value or the check budget is exhausted. A mismatch is reported in
// the result, never silently accepted; the error return is reserved for
// connection failures.
func (h *Hub) VerifyActuator(ctx context.Context, slot, wantState int, opts *VerifyOptions) (*VerifyResult, error) {
	if opts == nil {
		opts = DefaultVerifyOptions()
	}

	result := &VerifyResult{}

	if err := sleepCtx(ctx, opts.SettleDelay); err != nil {
		return nil, err
	}

	for check := 0; check < opts.MaxChecks; check++ {
		if check > 0 {
			if err := sleepCtx(ctx, opts.CheckDelay); err != nil {
				return nil, err
			}
		}
		result.Checks++

		states, err := h.ActuatorStates(ctx, opts.Retries)
		if err != nil {
			return nil, err
		}

		found := false
		for i := range states {
			if states[i].Slot != slot {
				continue
			}
			found = true
			observed := states[i]
			result.Observed = &observed
			if observed.State == wantState {
				result.Success = true
				result.Mismatch = ""
				return result, nil
			}
			result.Mismatch = fmt.Sprintf("slot %d: expected state %d, got %d", slot, wantState, observed.State)
		}
		if !found {
			result.Mismatch = fmt.Sprintf("slot %d not present in status response", slot)
		}
	}

	return result, nil
}

// SetActuatorVerified commands a slot and then verifies the transition. A
// rejected command short-circuits with a failed result before any read-back.
func (h *Hub) SetActuatorVerified(ctx context.Context, slot, state, duration, retries int, opts *VerifyOptions) (*VerifyResult, error) {
	ok, err := h.SetActuator(ctx, slot, state, duration, retries)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &VerifyResult{
			Success:  false,
			Mismatch: fmt.Sprintf("slot %d: device rejected command", slot),
		}, nil
	}
	return h.VerifyActuator(ctx, slot, state, opts)
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
