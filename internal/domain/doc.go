// Package domain models fire-weather sensing data for the sensor and receiver nodes.
//
// # Inputs
//
// Each sample carries five readings taken once per sampler period:
//
//	Temperature   °C, from the temperature/humidity sensor driver
//	Humidity      % relative humidity, from the same driver
//	Wind          0–50, rescaled from a 12-bit analog input
//	DuffMoisture  0–80, rescaled from a 12-bit analog input (duff moisture code proxy)
//	Drought       0–500, rescaled from a 12-bit analog input (drought code proxy)
//
// Analog inputs are read as raw counts in [0, 4095] and scaled linearly with
// raw/4095*max. No calibration or range validation is applied; a failed driver
// read is carried as NaN.
//
// # Fire Weather Index
//
// The index is a simplified form of the Canadian Forest Fire Weather Index
// System, evaluated in float64 with no clamping:
//
//	m    = 147.2 * (101 - H) / (59.5 + T)        fine fuel moisture content
//	FFMC = 59.5 * (250 - m) / (147.2 + m)        fine fuel moisture code
//	ISI  = 0.208 * W * exp(0.05039 * FFMC)       initial spread index
//	BUI  = (0.8 * DMC * DC) / (DMC + 0.4 * DC)   buildup index
//	FWI  = exp(BUI / 50) * ISI                   fire weather index
//
// Division by zero (T = -59.5, or DMC + 0.4*DC = 0) yields ±Inf or NaN, which
// propagates to every consumer unchanged.
//
// # Risk Bands
//
// FWI maps onto four half-open bands. Boundary values belong to the higher band:
//
//	FWI < 5         Normal
//	5  <= FWI < 15  Moderate
//	15 <= FWI < 30  Critical
//	FWI >= 30       Dangerous
//
// NaN fails every >= comparison and therefore classifies as Normal.
//
// # Alert Encoding
//
// A motion alert carries one byte: FWI truncated toward zero and wrapped
// modulo 256 (300.7 -> 44). Values are not saturated. NaN and ±Inf encode as 0.
//
// # Receiver Clock
//
// The receiver keeps a software hh:mm:ss counter advanced by a 1 Hz tick.
// Seconds and minutes roll over at 60; hours never wrap. The counter is reset
// to zero every time an alert is displayed.
package domain
