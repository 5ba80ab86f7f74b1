// Package transform converts raw VegeHub sensor voltages and update reports
// into usable values.
//
// VegeHub devices report every channel as a raw voltage. The curves here
// turn those voltages into physical quantities for the two Vegetronix
// sensors most commonly attached to a hub: the VH400 soil moisture probe
// (piecewise-linear percent VWC curve) and the THERM200 soil thermometer
// (linear °C curve). UpdateReport models the JSON document a hub pushes to
// its configured server and provides the flattening used to feed those
// samples into a downstream system.
package transform

// VH400 converts a VH400 soil moisture probe voltage to volumetric water
// content in percent. The curve is piecewise linear per the sensor's
// published calibration; readings at or below the noise floor clamp to 0
// and readings past the curve's end clamp to 100.
func VH400(voltage float64) float64 {
	switch {
	case voltage <= 0.01:
		return 0.0
	case voltage <= 1.1:
		return voltage * (10.0 / 1.1)
	case voltage <= 1.3:
		return 10.0 + (voltage-1.1)*(5.0/0.2)
	case voltage <= 1.82:
		return 15.0 + (voltage-1.3)*(25.0/0.52)
	case voltage <= 2.2:
		return 40.0 + (voltage-1.82)*(10.0/0.38)
	case voltage < 3.0:
		return 50.0 + (voltage-2.2)*(50.0/0.8)
	default:
		return 100.0
	}
}

// Therm200 converts a THERM200 soil thermometer voltage to degrees Celsius.
func Therm200(voltage float64) float64 {
	return 41.67*voltage - 40.0
}

// Sensor kind identifiers, matching the registry's channel metadata.
const (
	KindRaw      = "raw"
	KindVH400    = "vh400"
	KindTherm200 = "therm200"
)

// Apply converts a raw channel voltage using the named curve. Unknown kinds
// (and KindRaw) return the voltage unchanged.
func Apply(kind string, voltage float64) float64 {
	switch kind {
	case KindVH400:
		return VH400(voltage)
	case KindTherm200:
		return Therm200(voltage)
	default:
		return voltage
	}
}

// Unit returns the display unit for values produced by Apply.
func Unit(kind string) string {
	switch kind {
	case KindVH400:
		return "% VWC"
	case KindTherm200:
		return "°C"
	default:
		return "V"
	}
}
