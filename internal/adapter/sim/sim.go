// Package sim provides fixed-value inputs and in-memory GPIO for running a
// sensor node without hardware.
package sim

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/couchcryptid/firesense/internal/config"
	"github.com/couchcryptid/firesense/internal/pipeline"
)

// EnvSensor reports a fixed temperature and humidity.
type EnvSensor struct {
	temperature atomic.Uint64
	humidity    atomic.Uint64
}

// NewEnvSensor returns a sensor reporting temperature (°C) and humidity (%).
func NewEnvSensor(temperature, humidity float64) *EnvSensor {
	s := &EnvSensor{}
	s.Set(temperature, humidity)
	return s
}

// Set changes the reported values.
func (s *EnvSensor) Set(temperature, humidity float64) {
	s.temperature.Store(math.Float64bits(temperature))
	s.humidity.Store(math.Float64bits(humidity))
}

func (s *EnvSensor) Sense() (temperature, humidity float64, err error) {
	return math.Float64frombits(s.temperature.Load()), math.Float64frombits(s.humidity.Load()), nil
}

// AnalogInput reports a fixed raw ADC count.
type AnalogInput struct {
	raw atomic.Uint32
}

func NewAnalogInput(raw uint16) *AnalogInput {
	a := &AnalogInput{}
	a.Set(raw)
	return a
}

func (a *AnalogInput) Set(raw uint16) { a.raw.Store(uint32(raw)) }

func (a *AnalogInput) ReadRaw() (uint16, error) { return uint16(a.raw.Load()), nil }

// Inputs builds simulated inputs from the SIM_* settings.
func Inputs(cfg *config.Config) pipeline.Inputs {
	return pipeline.Inputs{
		Env:          NewEnvSensor(cfg.SimTemperature, cfg.SimHumidity),
		Wind:         NewAnalogInput(cfg.SimWindRaw),
		DuffMoisture: NewAnalogInput(cfg.SimDMCRaw),
		Drought:      NewAnalogInput(cfg.SimDCRaw),
	}
}

// Outputs returns four in-memory LED pins named after the configured lines.
func Outputs(cfg *config.Config) ([4]gpio.PinOut, [4]*gpiotest.Pin) {
	names := [4]string{cfg.PinNormal, cfg.PinModerate, cfg.PinCritical, cfg.PinDangerous}
	var outs [4]gpio.PinOut
	var pins [4]*gpiotest.Pin
	for i, name := range names {
		pins[i] = &gpiotest.Pin{N: name, Num: i}
		outs[i] = pins[i]
	}
	return outs, pins
}

// MotionPin returns an idle-high motion input whose edges come from Pulse.
func MotionPin(name string) *gpiotest.Pin {
	return &gpiotest.Pin{N: name, L: gpio.High, EdgesChan: make(chan gpio.Level, 1)}
}

// Pulse injects a falling edge on pin every interval until ctx is done.
// An edge is dropped if the previous one has not been consumed.
func Pulse(ctx context.Context, pin *gpiotest.Pin, clock clockwork.Clock, every time.Duration) error {
	ticker := clock.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			select {
			case pin.EdgesChan <- gpio.Low:
			default:
			}
		}
	}
}
