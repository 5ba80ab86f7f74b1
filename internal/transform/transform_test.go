package transform

import (
	"math"
	"testing"
)

const tolerance = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestVH400(t *testing.T) {
	tests := []struct {
		name    string
		voltage float64
		want    float64
	}{
		{"zero volts", 0.0, 0.0},
		{"noise floor", 0.01, 0.0},
		{"first segment", 0.5, 4.545},
		{"first knee", 1.1, 10.0},
		{"second segment", 1.2, 12.5},
		{"second knee", 1.3, 15.0},
		{"third segment", 1.5, 24.615},
		{"third knee", 1.82, 40.0},
		{"fourth segment", 2.0, 44.737},
		{"fourth knee", 2.2, 50.0},
		{"fifth segment", 2.5, 68.75},
		{"saturation", 3.0, 100.0},
		{"beyond curve", 3.5, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VH400(tt.voltage)
			if !almostEqual(got, tt.want) {
				t.Errorf("VH400(%v) = %v, want %v", tt.voltage, got, tt.want)
			}
		})
	}
}

func TestVH400_Monotonic(t *testing.T) {
	prev := VH400(0.0)
	for v := 0.02; v <= 3.2; v += 0.01 {
		cur := VH400(v)
		if cur < prev {
			t.Fatalf("VH400 not monotonic: VH400(%v) = %v < %v", v, cur, prev)
		}
		prev = cur
	}
}

func TestTherm200(t *testing.T) {
	tests := []struct {
		voltage float64
		want    float64
	}{
		{0.0, -40.0},
		{1.0, 1.67},
		{2.0, 43.34},
		{3.0, 85.01},
	}

	for _, tt := range tests {
		got := Therm200(tt.voltage)
		if !almostEqual(got, tt.want) {
			t.Errorf("Therm200(%v) = %v, want %v", tt.voltage, got, tt.want)
		}
	}
}

func sampleReport() *UpdateReport {
	return &UpdateReport{
		APIKey:    "k",
		MAC:       "A1B2C3D4E5F6",
		ErrorCode: 0,
		Sensors: []SensorReading{
			{Slot: 1, Samples: []Sample{
				{Value: 1.5, Time: "2026-08-24T10:00:00Z"},
				{Value: 1.6, Time: "2026-08-24T10:05:00Z"},
			}},
			{Slot: 2, Samples: []Sample{
				{Value: 2.0, Time: "2026-08-24T10:05:00Z"},
			}},
			{Slot: 3, Samples: []Sample{
				{Value: 9.1, Time: "2026-08-24T10:05:00Z"},
			}},
			{Slot: 4, Samples: []Sample{
				{Value: 1.0, Time: "2026-08-24T10:05:00Z"},
			}},
			{Slot: 5, Samples: []Sample{
				{Value: 0.0, Time: "2026-08-24T10:05:00Z"},
			}},
		},
	}
}

func TestSensorReadingLatest(t *testing.T) {
	reading := SensorReading{Slot: 1, Samples: []Sample{
		{Value: 1.0, Time: "2026-08-24T10:00:00Z"},
		{Value: 2.0, Time: "2026-08-24T10:05:00Z"},
	}}

	sample, ok := reading.Latest()
	if !ok {
		t.Fatal("Latest() ok = false, want true")
	}
	if sample.Value != 2.0 {
		t.Errorf("Latest().Value = %v, want 2.0", sample.Value)
	}

	empty := SensorReading{Slot: 1}
	if _, ok := empty.Latest(); ok {
		t.Error("Latest() ok = true for an empty batch, want false")
	}
}

func TestToLatest(t *testing.T) {
	report := sampleReport()

	got := report.ToLatest()

	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got["a1b2c3d4e5f6_1"] != 1.6 {
		t.Errorf("slot 1 = %v, want 1.6 (most recent sample)", got["a1b2c3d4e5f6_1"])
	}
	if got["a1b2c3d4e5f6_2"] != 2.0 {
		t.Errorf("slot 2 = %v, want 2.0", got["a1b2c3d4e5f6_2"])
	}
}

func TestToLatest_EmptyMAC(t *testing.T) {
	report := sampleReport()
	report.MAC = ""

	got := report.ToLatest()
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 for a report without a MAC", len(got))
	}
}

func TestToLatest_EmptySamplesOmitted(t *testing.T) {
	report := &UpdateReport{
		MAC: "A1B2C3D4E5F6",
		Sensors: []SensorReading{
			{Slot: 1},
			{Slot: 2, Samples: []Sample{{Value: 1.0, Time: "2026-08-24T10:00:00Z"}}},
		},
	}

	got := report.ToLatest()
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if _, present := got["a1b2c3d4e5f6_1"]; present {
		t.Error("channel with no samples should be omitted")
	}
}

func TestToHASensors_BatteryHub(t *testing.T) {
	// 2 sensors + battery + 2 actuators: slots 1-2 are analog channels,
	// slot 3 is the battery, slots 4-5 are actuator feedback.
	report := sampleReport()

	got := report.ToHASensors(2, 2, false)

	want := map[string]float64{
		"analog_0":   1.6,
		"analog_1":   2.0,
		"battery":    9.1,
		"actuator_0": 1.0,
		"actuator_1": 0.0,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for key, val := range want {
		if got[key] != val {
			t.Errorf("%s = %v, want %v", key, got[key], val)
		}
	}
}

func TestToHASensors_ACHub(t *testing.T) {
	// AC powered: no battery slot, actuators start right after the sensors.
	report := sampleReport()

	got := report.ToHASensors(2, 2, true)

	want := map[string]float64{
		"analog_0":   1.6,
		"analog_1":   2.0,
		"actuator_0": 9.1,
		"actuator_1": 1.0,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for key, val := range want {
		if got[key] != val {
			t.Errorf("%s = %v, want %v", key, got[key], val)
		}
	}
}

func TestToHASensors_OutOfRangeSlotsDropped(t *testing.T) {
	report := &UpdateReport{
		MAC: "A1B2C3D4E5F6",
		Sensors: []SensorReading{
			{Slot: 1, Samples: []Sample{{Value: 1.0, Time: "2026-08-24T10:00:00Z"}}},
			{Slot: 9, Samples: []Sample{{Value: 5.0, Time: "2026-08-24T10:00:00Z"}}},
		},
	}

	got := report.ToHASensors(1, 1, true)
	if len(got) != 1 {
		t.Fatalf("got %v, want only analog_0", got)
	}
	if got["analog_0"] != 1.0 {
		t.Errorf("analog_0 = %v, want 1.0", got["analog_0"])
	}
}

func TestToHASensors_EmptyMAC(t *testing.T) {
	report := sampleReport()
	report.MAC = ""

	got := report.ToHASensors(2, 2, false)
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 for a report without a MAC", len(got))
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		voltage float64
		want    float64
	}{
		{"vh400 curve", KindVH400, 1.5, 24.615},
		{"therm200 curve", KindTherm200, 2.0, 43.34},
		{"raw passthrough", KindRaw, 1.5, 1.5},
		{"unknown kind passthrough", "switch", 2.7, 2.7},
		{"empty kind passthrough", "", 0.9, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.kind, tt.voltage)
			if !almostEqual(got, tt.want) {
				t.Errorf("Apply(%q, %v) = %v, want %v", tt.kind, tt.voltage, got, tt.want)
			}
		})
	}
}

func TestUnit(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{KindVH400, "% VWC"},
		{KindTherm200, "°C"},
		{KindRaw, "V"},
		{"switch", "V"},
		{"", "V"},
	}

	for _, tt := range tests {
		if got := Unit(tt.kind); got != tt.want {
			t.Errorf("Unit(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
