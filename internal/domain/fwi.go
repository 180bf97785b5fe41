package domain

import (
	"math"
	"time"
)

// FireIndices holds every value derived from one SensorSample.
// Only FWI leaves the calculator; the rest are kept for logging and telemetry.
type FireIndices struct {
	MoistureContent float64 `json:"moisture_content"`
	FFMC            float64 `json:"ffmc"`
	ISI             float64 `json:"isi"`
	BUI             float64 `json:"bui"`
	FWI             float64 `json:"fwi"`
}

// ComputeIndices evaluates the fire weather index chain for a sample.
func ComputeIndices(s SensorSample) FireIndices {
	m := 147.2 * (101 - s.Humidity) / (59.5 + s.Temperature)
	ffmc := 59.5 * (250 - m) / (147.2 + m)
	isi := 0.208 * s.Wind * math.Exp(0.05039*ffmc)
	bui := (0.8 * s.DuffMoisture * s.Drought) / (s.DuffMoisture + 0.4*s.Drought)
	fwi := math.Exp(bui/50) * isi

	return FireIndices{
		MoistureContent: m,
		FFMC:            ffmc,
		ISI:             isi,
		BUI:             bui,
		FWI:             fwi,
	}
}

// Reading is a computed sample exported as telemetry.
type Reading struct {
	NodeID     string       `json:"node_id"`
	Sequence   uint64       `json:"sequence"`
	Sample     SensorSample `json:"sample"`
	Indices    FireIndices  `json:"indices"`
	Band       RiskBand     `json:"band"`
	ComputedAt time.Time    `json:"computed_at"`
}
