package domain

import "math"

// ADC and rescaling constants for the three analog inputs.
const (
	ADCFullScale = 4095.0

	WindMax         = 50.0
	DuffMoistureMax = 80.0
	DroughtMax      = 500.0
)

// SensorSample is one sampler reading. Fields are ordered as they are read.
type SensorSample struct {
	Temperature  float64 `json:"temperature_c"`
	Humidity     float64 `json:"humidity_pct"`
	Wind         float64 `json:"wind"`
	DuffMoisture float64 `json:"duff_moisture"`
	Drought      float64 `json:"drought"`
}

// Rescale maps a raw 12-bit ADC count linearly onto [0, maxValue].
// Counts above full scale are not clamped.
func Rescale(raw uint16, maxValue float64) float64 {
	return float64(raw) / ADCFullScale * maxValue
}

// HasNaN reports whether any field of the sample is NaN, which happens when
// a driver read fails.
func (s SensorSample) HasNaN() bool {
	return math.IsNaN(s.Temperature) || math.IsNaN(s.Humidity) ||
		math.IsNaN(s.Wind) || math.IsNaN(s.DuffMoisture) || math.IsNaN(s.Drought)
}
