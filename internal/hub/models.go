package hub

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DeviceInfo is an immutable snapshot of device identity and capabilities,
// produced by a full /api/info/get fetch. It is never updated field-by-field;
// a refresh replaces the whole snapshot.
type DeviceInfo struct {
	// Version is the firmware/software version string (e.g. "3.4.5").
	Version string

	// NumSensors is the number of analog sensor channels.
	NumSensors int

	// NumActuators is the number of actuator output slots.
	NumActuators int

	// IsAC reports whether the device is AC powered (false = battery).
	IsAC bool

	// BattV is the last reported battery voltage.
	BattV float64
}

// ActuatorState is the reported state of one actuator slot as returned by
// /api/actuators/status. Slots are indexed 0..N-1 where N is the actuator
// count from DeviceInfo.
type ActuatorState struct {
	Slot            int   `json:"slot"`
	State           int   `json:"state"`
	LastRun         int64 `json:"last_run"`
	NextWindowStart int64 `json:"next_window_start"`
	NextWindowEnd   int64 `json:"next_window_end"`
	CurMA           int   `json:"cur_ma"`
	TypMA           int   `json:"typ_ma"`
	Error           int   `json:"error"`
}

// On reports whether the actuator is energized.
func (a ActuatorState) On() bool {
	return a.State != 0
}

// infoResponse is the wire shape of /api/info/get.
type infoResponse struct {
	Hub  *hubInfo  `json:"hub"`
	Wifi *wifiInfo `json:"wifi"`
}

// hubInfo is the "hub" section of the info response.
type hubInfo struct {
	FirstBoot    bool    `json:"first_boot"`
	PageUpdated  bool    `json:"page_updated"`
	ErrorMessage int     `json:"error_message"`
	NumChannels  int     `json:"num_channels"`
	NumActuators int     `json:"num_actuators"`
	Version      string  `json:"version"`
	Agenda       int     `json:"agenda"`
	BattV        float64 `json:"batt_v"`
	NumVsens     int     `json:"num_vsens"`
	IsAC         int     `json:"is_ac"`
	HasSD        int     `json:"has_sd"`
	OnAP         int     `json:"on_ap"`
}

// wifiInfo is the "wifi" section of the info response.
type wifiInfo struct {
	SSID     string `json:"ssid"`
	Strength string `json:"strength"`
	Chan     string `json:"chan"`
	IP       string `json:"ip"`
	Status   string `json:"status"`
	MACAddr  string `json:"mac_addr"`
}

// snapshot converts the wire hub section into a DeviceInfo.
func (hi *hubInfo) snapshot() *DeviceInfo {
	return &DeviceInfo{
		Version:      hi.Version,
		NumSensors:   hi.NumChannels,
		NumActuators: hi.NumActuators,
		IsAC:         hi.IsAC != 0,
		BattV:        hi.BattV,
	}
}

// actuatorStatusResponse is the wire shape of /api/actuators/status.
type actuatorStatusResponse struct {
	Actuators []ActuatorState `json:"actuators"`
}

// NormalizeMAC strips separators from a MAC address as reported by the
// device ("AA:BB:CC:DD:EE:FF" becomes "AABBCCDDEEFF").
func NormalizeMAC(mac string) string {
	mac = strings.ReplaceAll(mac, ":", "")
	return strings.ReplaceAll(mac, "-", "")
}

// deviceRejected reports whether a response body carries a device-reported
// failure. Firmware is inconsistent about the "error" field: it may be a
// number (0 = ok), the string "success", or absent entirely. Absent and
// zero-valued fields count as success.
func deviceRejected(body json.RawMessage) bool {
	if len(bytes.TrimSpace(body)) == 0 {
		return false
	}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	raw := bytes.TrimSpace(envelope.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num != 0
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str != "" && str != "0" && !strings.EqualFold(str, "success")
	}
	return false
}
