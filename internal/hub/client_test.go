package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	h := New("192.168.1.42")

	if h.IPAddress() != "192.168.1.42" {
		t.Errorf("IPAddress() = %v, want 192.168.1.42", h.IPAddress())
	}
	if h.URL() != "http://192.168.1.42" {
		t.Errorf("URL() = %v, want http://192.168.1.42", h.URL())
	}
	if h.MACAddress() != "" {
		t.Errorf("MACAddress() = %v, want empty before retrieval", h.MACAddress())
	}
	if h.Info() != nil {
		t.Error("Info() should be nil before any fetch")
	}
}

func TestNewWithOptions(t *testing.T) {
	h := New("192.168.1.42",
		WithMAC("A1:B2:C3:D4:E5:F6"),
		WithUniqueID("greenhouse-1"),
		WithTimeout(3*time.Second))

	if h.MACAddress() != "A1B2C3D4E5F6" {
		t.Errorf("MACAddress() = %v, want A1B2C3D4E5F6 (separators stripped)", h.MACAddress())
	}
	if h.UniqueID() != "greenhouse-1" {
		t.Errorf("UniqueID() = %v, want greenhouse-1", h.UniqueID())
	}
	if h.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", h.timeout)
	}
}

func TestSessionOwnership_LazyCreation(t *testing.T) {
	h := New("192.168.1.42")

	if h.session != nil {
		t.Error("session should not exist before first use")
	}

	first := h.acquireSession()
	if first == nil {
		t.Fatal("acquireSession() returned nil")
	}
	if !h.ownsSession {
		t.Error("lazily created session should be owned")
	}

	second := h.acquireSession()
	if first != second {
		t.Error("acquireSession() should reuse the existing session")
	}
}

func TestSessionOwnership_CloseIdempotent(t *testing.T) {
	h := New("192.168.1.42")

	h.acquireSession()
	h.Close()
	if h.session != nil {
		t.Error("session should be released after Close()")
	}

	// Second close is a no-op.
	h.Close()

	// A later operation gets a fresh owned session.
	fresh := h.acquireSession()
	if fresh == nil {
		t.Fatal("acquireSession() after Close() returned nil")
	}
	if !h.ownsSession {
		t.Error("recreated session should be owned")
	}
}

func TestSessionOwnership_BorrowedClientNeverClosed(t *testing.T) {
	external := &http.Client{Timeout: time.Second}
	h := New("192.168.1.42", WithHTTPClient(external))

	if h.acquireSession() != external {
		t.Error("acquireSession() should return the borrowed client")
	}

	h.Close()

	if h.session != external {
		t.Error("Close() must not release a borrowed client")
	}
	if h.ownsSession {
		t.Error("borrowed client must not be marked owned")
	}
}

// hubForServer returns a handle pointed at a httptest server.
func hubForServer(t *testing.T, server *httptest.Server) *Hub {
	t.Helper()
	return New(strings.TrimPrefix(server.URL, "http://"))
}

func TestPost_SetsJSONContentType(t *testing.T) {
	var gotContentType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	if _, err := h.post(context.Background(), pathInfoGet, map[string]any{}); err != nil {
		t.Fatalf("post() error = %v", err)
	}
	if gotMethod != "POST" {
		t.Errorf("method = %v, want POST", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %v, want application/json", gotContentType)
	}
}

func TestPost_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	body, err := h.post(context.Background(), pathInfoGet, map[string]any{})
	if err != nil {
		t.Fatalf("post() error = %v", err)
	}
	if body != nil {
		t.Errorf("post() body = %q, want nil for an empty response", body)
	}
}

func TestPost_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	_, err := h.post(context.Background(), pathConfigGet, map[string]any{})
	if err == nil {
		t.Fatal("post() should fail for a non-2xx status")
	}
	if !IsTransportError(err) {
		t.Errorf("error should be a transport error, got %T: %v", err, err)
	}
}

func TestPost_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hub":`))
	}))
	defer server.Close()

	h := hubForServer(t, server)
	defer h.Close()

	_, err := h.post(context.Background(), pathConfigGet, map[string]any{})
	if err == nil {
		t.Fatal("post() should fail for a truncated JSON body")
	}
	if !IsTransportError(err) {
		t.Errorf("error should be a transport error, got %T: %v", err, err)
	}
}

func TestPost_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := strings.TrimPrefix(server.URL, "http://")
	server.Close()

	h := New(addr, WithTimeout(500*time.Millisecond))
	defer h.Close()

	_, err := h.post(context.Background(), pathInfoGet, map[string]any{})
	if err == nil {
		t.Fatal("post() should fail when the device is unreachable")
	}
	if !IsTransportError(err) {
		t.Errorf("error should be a transport error, got %T: %v", err, err)
	}
}
