package hardware

import (
	"math"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"

	"github.com/couchcryptid/firesense/internal/domain"
)

type envSenser interface {
	Sense(e *physic.Env) error
}

// envSensor adapts a BME280 to pipeline.EnvSensor.
type envSensor struct {
	dev envSenser
}

func (s *envSensor) Sense() (temperature, humidity float64, err error) {
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return 0, 0, err
	}
	return env.Temperature.Celsius(), float64(env.Humidity) / float64(physic.PercentRH), nil
}

type analogReader interface {
	Read() (analog.Sample, error)
}

// adcInput converts an ADC voltage into the 12-bit count the FWI inputs
// are rescaled from.
type adcInput struct {
	pin  analogReader
	vref float64
}

func (a *adcInput) ReadRaw() (uint16, error) {
	s, err := a.pin.Read()
	if err != nil {
		return 0, err
	}
	return voltsToCounts(float64(s.V)/float64(physic.Volt), a.vref), nil
}

func voltsToCounts(v, vref float64) uint16 {
	counts := math.Round(v / vref * domain.ADCFullScale)
	switch {
	case counts <= 0:
		return 0
	case counts >= domain.ADCFullScale:
		return uint16(domain.ADCFullScale)
	}
	return uint16(counts)
}
