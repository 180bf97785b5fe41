package domain

import "math"

// AlertMessage is the one-byte payload sent to the receiver on motion.
type AlertMessage uint8

// EncodeAlert truncates fwi toward zero and wraps it modulo 256.
// NaN and ±Inf have no integer part and encode as 0.
func EncodeAlert(fwi float64) AlertMessage {
	if math.IsNaN(fwi) || math.IsInf(fwi, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(fwi), 256)
	if m < 0 {
		m += 256
	}
	return AlertMessage(m)
}

// Bytes returns the wire form of the alert.
func (a AlertMessage) Bytes() []byte {
	return []byte{byte(a)}
}
