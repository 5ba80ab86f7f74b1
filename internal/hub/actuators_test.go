package hub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

const mockActuatorStatusResponse = `{
	"actuators": [
		{"slot": 0, "state": 1, "last_run": 1700000000, "next_window_start": 0, "next_window_end": 0, "cur_ma": 120, "typ_ma": 110, "error": 0},
		{"slot": 1, "state": 0, "last_run": 0, "next_window_start": 0, "next_window_end": 0, "cur_ma": 0, "typ_ma": 110, "error": 0}
	]
}`

func TestSetActuator(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathActuatorSet {
			t.Errorf("request path = %s, want %s", r.URL.Path, pathActuatorSet)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotPayload); err != nil {
			t.Errorf("payload is not valid JSON: %v", err)
		}
		w.Write([]byte(`{"error":0}`))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	ok, err := h.SetActuator(context.Background(), 0, 1, 5, 0)
	if err != nil {
		t.Fatalf("SetActuator() error = %v", err)
	}
	if !ok {
		t.Error("SetActuator() = false, want true")
	}

	if got, _ := asInt(gotPayload["slot"]); got != 0 {
		t.Errorf("payload slot = %v, want 0", gotPayload["slot"])
	}
	if got, _ := asInt(gotPayload["state"]); got != 1 {
		t.Errorf("payload state = %v, want 1", gotPayload["state"])
	}
	if got, _ := asInt(gotPayload["duration"]); got != 5 {
		t.Errorf("payload duration = %v, want 5", gotPayload["duration"])
	}
}

func TestSetActuator_DeviceRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":1}`))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	ok, err := h.SetActuator(context.Background(), 0, 1, 0, 0)
	if err != nil {
		t.Fatalf("SetActuator() error = %v", err)
	}
	if ok {
		t.Error("SetActuator() = true, want false for a rejected command")
	}
}

func TestSetActuator_EmptyResponseIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	ok, err := h.SetActuator(context.Background(), 1, 0, 0, 0)
	if err != nil {
		t.Fatalf("SetActuator() error = %v", err)
	}
	if !ok {
		t.Error("SetActuator() = false, want true for an empty 200 response")
	}
}

func TestActuatorStates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathActuatorStatus {
			t.Errorf("request path = %s, want %s", r.URL.Path, pathActuatorStatus)
		}
		if r.Method != http.MethodPost {
			t.Errorf("request method = %s, want POST", r.Method)
		}
		w.Write([]byte(mockActuatorStatusResponse))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	states, err := h.ActuatorStates(context.Background(), 0)
	if err != nil {
		t.Fatalf("ActuatorStates() error = %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("len(states) = %d, want 2", len(states))
	}

	if states[0].Slot != 0 || states[0].State != 1 {
		t.Errorf("states[0] = %+v, want slot 0 state 1", states[0])
	}
	if !states[0].On() {
		t.Error("states[0].On() = false, want true")
	}
	if states[0].CurMA != 120 {
		t.Errorf("states[0].CurMA = %d, want 120", states[0].CurMA)
	}
	if states[1].On() {
		t.Error("states[1].On() = true, want false")
	}
}

func TestActuatorStates_MissingSection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":0}`))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	states, err := h.ActuatorStates(context.Background(), 0)
	if err != nil {
		t.Fatalf("ActuatorStates() error = %v", err)
	}
	if states != nil {
		t.Errorf("ActuatorStates() = %v, want nil when the actuators section is absent", states)
	}
}

// fastVerifyOptions keeps verification tests quick.
func fastVerifyOptions() *VerifyOptions {
	return &VerifyOptions{
		SettleDelay: time.Millisecond,
		MaxChecks:   3,
		CheckDelay:  time.Millisecond,
	}
}

func TestVerifyActuator_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mockActuatorStatusResponse))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	result, err := h.VerifyActuator(context.Background(), 0, 1, fastVerifyOptions())
	if err != nil {
		t.Fatalf("VerifyActuator() error = %v", err)
	}
	if !result.Success {
		t.Errorf("Success = false, mismatch: %s", result.Mismatch)
	}
	if result.Checks != 1 {
		t.Errorf("Checks = %d, want 1", result.Checks)
	}
	if result.Observed == nil || result.Observed.State != 1 {
		t.Errorf("Observed = %+v, want state 1", result.Observed)
	}
}

func TestVerifyActuator_EventualMatch(t *testing.T) {
	// First read shows the old state; second read shows the transition.
	var mu sync.Mutex
	reads := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		reads++
		n := reads
		mu.Unlock()
		if n == 1 {
			w.Write([]byte(`{"actuators":[{"slot":0,"state":0}]}`))
			return
		}
		w.Write([]byte(`{"actuators":[{"slot":0,"state":1}]}`))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	result, err := h.VerifyActuator(context.Background(), 0, 1, fastVerifyOptions())
	if err != nil {
		t.Fatalf("VerifyActuator() error = %v", err)
	}
	if !result.Success {
		t.Errorf("Success = false, mismatch: %s", result.Mismatch)
	}
	if result.Checks != 2 {
		t.Errorf("Checks = %d, want 2", result.Checks)
	}
}

func TestVerifyActuator_MismatchReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"actuators":[{"slot":0,"state":0}]}`))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	result, err := h.VerifyActuator(context.Background(), 0, 1, fastVerifyOptions())
	if err != nil {
		t.Fatalf("VerifyActuator() error = %v", err)
	}
	if result.Success {
		t.Error("Success = true, want false for a persistent mismatch")
	}
	if result.Checks != 3 {
		t.Errorf("Checks = %d, want 3 (full check budget)", result.Checks)
	}
	if result.Mismatch == "" {
		t.Error("Mismatch should describe the failure")
	}
}

func TestVerifyActuator_SlotNeverAppears(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"actuators":[{"slot":1,"state":1}]}`))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	result, err := h.VerifyActuator(context.Background(), 0, 1, fastVerifyOptions())
	if err != nil {
		t.Fatalf("VerifyActuator() error = %v", err)
	}
	if result.Success {
		t.Error("Success = true, want false for a missing slot")
	}
	if result.Observed != nil {
		t.Errorf("Observed = %+v, want nil for a slot that never appeared", result.Observed)
	}
}

func TestSetActuatorVerified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathActuatorSet:
			w.Write([]byte(`{"error":0}`))
		case pathActuatorStatus:
			w.Write([]byte(mockActuatorStatusResponse))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	result, err := h.SetActuatorVerified(context.Background(), 0, 1, 5, 0, fastVerifyOptions())
	if err != nil {
		t.Fatalf("SetActuatorVerified() error = %v", err)
	}
	if !result.Success {
		t.Errorf("Success = false, mismatch: %s", result.Mismatch)
	}
}

func TestSetActuatorVerified_RejectedCommandShortCircuits(t *testing.T) {
	statusReads := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathActuatorSet:
			w.Write([]byte(`{"error":1}`))
		case pathActuatorStatus:
			statusReads++
			w.Write([]byte(mockActuatorStatusResponse))
		}
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	result, err := h.SetActuatorVerified(context.Background(), 0, 1, 0, 0, fastVerifyOptions())
	if err != nil {
		t.Fatalf("SetActuatorVerified() error = %v", err)
	}
	if result.Success {
		t.Error("Success = true, want false for a rejected command")
	}
	if statusReads != 0 {
		t.Errorf("status reads = %d, want 0 (rejection short-circuits verification)", statusReads)
	}
}

func TestVerifyActuator_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mockActuatorStatusResponse))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastVerifyOptions()
	opts.SettleDelay = time.Second

	_, err := h.VerifyActuator(ctx, 0, 1, opts)
	if err == nil {
		t.Fatal("VerifyActuator() should fail for a cancelled context")
	}
}
