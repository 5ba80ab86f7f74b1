package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should not be empty
	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	// Should contain "vegehub"
	if !strings.Contains(configDir, "vegehub") {
		t.Errorf("GetConfigDir() = %v, should contain 'vegehub'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	// Should end with config.yaml
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	t.Logf("Config path: %s", configPath)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Hubs == nil {
		t.Error("NewRegistry().Hubs should not be nil")
	}

	if reg.Preferences == nil {
		t.Error("NewRegistry().Preferences should not be nil")
	}

	if reg.Preferences.AutoDiscover != true {
		t.Error("NewRegistry().Preferences.AutoDiscover should be true by default")
	}

	if reg.Preferences.DiscoverTimeout != 5 {
		t.Errorf("NewRegistry().Preferences.DiscoverTimeout = %v, want 5", reg.Preferences.DiscoverTimeout)
	}
}

func TestRegistryEnsureHub(t *testing.T) {
	reg := NewRegistry()

	// First call should create hub entry
	hub1 := reg.EnsureHub("A1B2C3D4E5F6")
	if hub1 == nil {
		t.Fatal("EnsureHub() returned nil")
	}

	// Second call should return same entry
	hub2 := reg.EnsureHub("A1B2C3D4E5F6")
	if hub1 != hub2 {
		t.Error("EnsureHub() should return same instance for same MAC")
	}

	// Different MAC should create new entry
	hub3 := reg.EnsureHub("FFEEDDCCBBAA")
	if hub1 == hub3 {
		t.Error("EnsureHub() should create new instance for different MAC")
	}
}

func TestRegistryUpdateHubLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateHubLastSeen("A1B2C3D4E5F6", "192.168.1.100")
	after := time.Now()

	hub := reg.GetHub("A1B2C3D4E5F6")
	if hub == nil {
		t.Fatal("Hub should exist after UpdateHubLastSeen()")
	}

	if hub.LastIP != "192.168.1.100" {
		t.Errorf("LastIP = %v, want 192.168.1.100", hub.LastIP)
	}

	if hub.LastSeen.Before(before) || hub.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", hub.LastSeen, before, after)
	}
}

func TestRegistrySetChannelLabel(t *testing.T) {
	reg := NewRegistry()

	reg.SetChannelLabel("A1B2C3D4E5F6", 1, "Tomato Bed Moisture", "vh400")

	hub := reg.GetHub("A1B2C3D4E5F6")
	if hub == nil {
		t.Fatal("Hub should exist after SetChannelLabel()")
	}

	channel := hub.Channels[1]
	if channel == nil {
		t.Fatal("Channel 1 should exist")
	}

	if channel.Label != "Tomato Bed Moisture" {
		t.Errorf("Channel.Label = %v, want 'Tomato Bed Moisture'", channel.Label)
	}

	if channel.Sensor != "vh400" {
		t.Errorf("Channel.Sensor = %v, want 'vh400'", channel.Sensor)
	}
}

func TestRegistrySetActuatorLabel(t *testing.T) {
	reg := NewRegistry()

	reg.SetActuatorLabel("A1B2C3D4E5F6", 0, "Drip Line Valve")

	hub := reg.GetHub("A1B2C3D4E5F6")
	if hub == nil {
		t.Fatal("Hub should exist after SetActuatorLabel()")
	}

	actuator := hub.Actuators[0]
	if actuator == nil {
		t.Fatal("Actuator 0 should exist")
	}

	if actuator.Label != "Drip Line Valve" {
		t.Errorf("Actuator.Label = %v, want 'Drip Line Valve'", actuator.Label)
	}
}

func TestRegistrySetHubNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetHubNickname("A1B2C3D4E5F6", "Greenhouse Hub")

	hub := reg.GetHub("A1B2C3D4E5F6")
	if hub == nil {
		t.Fatal("Hub should exist after SetHubNickname()")
	}

	if hub.Nickname != "Greenhouse Hub" {
		t.Errorf("Nickname = %v, want 'Greenhouse Hub'", hub.Nickname)
	}
}

func TestRegistryYAMLRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.SetHubNickname("A1B2C3D4E5F6", "Greenhouse Hub")
	reg.SetChannelLabel("A1B2C3D4E5F6", 1, "Tomato Bed Moisture", "vh400")
	reg.SetChannelLabel("A1B2C3D4E5F6", 2, "Soil Temperature", "therm200")
	reg.SetActuatorLabel("A1B2C3D4E5F6", 0, "Drip Line Valve")
	reg.UpdateHubLastSeen("A1B2C3D4E5F6", "192.168.1.100")

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var loaded Registry
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}

	if loaded.Version != 1 {
		t.Errorf("Version = %v, want 1", loaded.Version)
	}

	hub := loaded.GetHub("A1B2C3D4E5F6")
	if hub == nil {
		t.Fatal("Hub should survive a round trip")
	}
	if hub.Nickname != "Greenhouse Hub" {
		t.Errorf("Nickname = %v, want 'Greenhouse Hub'", hub.Nickname)
	}
	if hub.LastIP != "192.168.1.100" {
		t.Errorf("LastIP = %v, want 192.168.1.100", hub.LastIP)
	}
	if hub.Channels[1] == nil || hub.Channels[1].Sensor != "vh400" {
		t.Errorf("Channels[1] = %+v, want sensor vh400", hub.Channels[1])
	}
	if hub.Channels[2] == nil || hub.Channels[2].Sensor != "therm200" {
		t.Errorf("Channels[2] = %+v, want sensor therm200", hub.Channels[2])
	}
	if hub.Actuators[0] == nil || hub.Actuators[0].Label != "Drip Line Valve" {
		t.Errorf("Actuators[0] = %+v, want label 'Drip Line Valve'", hub.Actuators[0])
	}
}

func TestSensorTypeDefinitions(t *testing.T) {
	for _, key := range []string{"raw", "vh400", "therm200"} {
		if SensorTypeDefinitions[key] == "" {
			t.Errorf("SensorTypeDefinitions[%q] should be defined", key)
		}
	}
}
