package transform

import (
	"fmt"
	"strings"
)

// UpdateReport is the JSON document a hub POSTs to its configured server
// when it pushes sensor data. Slots are 1-based on the wire: sensor
// channels first, then (on battery-powered hubs) the battery voltage, then
// actuator feedback channels.
type UpdateReport struct {
	APIKey    string          `json:"api_key"`
	MAC       string          `json:"mac"`
	ErrorCode int             `json:"error_code"`
	Sensors   []SensorReading `json:"sensors"`
	SendTime  int64           `json:"send_time"`
	WiFiStr   int             `json:"wifi_str"`
}

// SensorReading is one channel's batch of samples in an update report.
type SensorReading struct {
	Slot    int      `json:"slot"`
	Samples []Sample `json:"samples"`
}

// Sample is a single timestamped voltage reading.
type Sample struct {
	Value float64 `json:"v"`
	Time  string  `json:"t"`
}

// Latest returns the most recent sample of the reading, or false when the
// hub sent an empty batch.
func (r SensorReading) Latest() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

// ToLatest flattens a report to one value per channel, keyed by
// "{mac}_{slot}" with a lowercase MAC. Channels with no samples are
// omitted; a report without a MAC yields an empty map.
func (r *UpdateReport) ToLatest() map[string]float64 {
	out := map[string]float64{}
	if r.MAC == "" {
		return out
	}
	mac := strings.ToLower(r.MAC)
	for _, reading := range r.Sensors {
		sample, ok := reading.Latest()
		if !ok {
			continue
		}
		out[fmt.Sprintf("%s_%d", mac, reading.Slot)] = sample.Value
	}
	return out
}

// ToHASensors maps a report's 1-based wire slots onto named channels the
// way a Home Assistant integration consumes them: slots 1..numSensors
// become "analog_0".."analog_{numSensors-1}", the next slot becomes
// "battery" on battery-powered hubs (isAC false), and the following
// numActuators slots become "actuator_0".. Channels beyond that layout,
// channels with no samples, and reports without a MAC are dropped.
func (r *UpdateReport) ToHASensors(numSensors, numActuators int, isAC bool) map[string]float64 {
	out := map[string]float64{}
	if r.MAC == "" {
		return out
	}

	batterySlots := 0
	if !isAC {
		batterySlots = 1
	}

	for _, reading := range r.Sensors {
		sample, ok := reading.Latest()
		if !ok {
			continue
		}
		slot := reading.Slot
		switch {
		case slot >= 1 && slot <= numSensors:
			out[fmt.Sprintf("analog_%d", slot-1)] = sample.Value
		case batterySlots == 1 && slot == numSensors+1:
			out["battery"] = sample.Value
		default:
			idx := slot - numSensors - batterySlots - 1
			if idx >= 0 && idx < numActuators {
				out[fmt.Sprintf("actuator_%d", idx)] = sample.Value
			}
		}
	}
	return out
}
