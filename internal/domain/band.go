package domain

import (
	"encoding/json"
	"fmt"
)

// RiskBand is one of four mutually exclusive fire-risk classes.
type RiskBand int

const (
	BandNormal RiskBand = iota
	BandModerate
	BandCritical
	BandDangerous
)

// Band thresholds. Each value is the inclusive lower bound of the next band.
const (
	ModerateThreshold  = 5.0
	CriticalThreshold  = 15.0
	DangerousThreshold = 30.0
)

// Bands lists every band in ascending severity.
var Bands = [...]RiskBand{BandNormal, BandModerate, BandCritical, BandDangerous}

// ClassifyFWI maps a fire weather index onto its band.
func ClassifyFWI(fwi float64) RiskBand {
	switch {
	case fwi >= DangerousThreshold:
		return BandDangerous
	case fwi >= CriticalThreshold:
		return BandCritical
	case fwi >= ModerateThreshold:
		return BandModerate
	default:
		return BandNormal
	}
}

func (b RiskBand) String() string {
	switch b {
	case BandNormal:
		return "normal"
	case BandModerate:
		return "moderate"
	case BandCritical:
		return "critical"
	case BandDangerous:
		return "dangerous"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

// MarshalJSON encodes the band by name.
func (b RiskBand) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}
