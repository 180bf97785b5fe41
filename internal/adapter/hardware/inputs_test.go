package hardware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

type fakeBME struct {
	env physic.Env
	err error
}

func (f *fakeBME) Sense(e *physic.Env) error {
	if f.err != nil {
		return f.err
	}
	*e = f.env
	return nil
}

type fakeADC struct {
	v   physic.ElectricPotential
	err error
}

func (f *fakeADC) Read() (analog.Sample, error) {
	if f.err != nil {
		return analog.Sample{}, f.err
	}
	return analog.Sample{V: f.v}, nil
}

func TestEnvSensor_Sense(t *testing.T) {
	dev := &fakeBME{env: physic.Env{
		Temperature: physic.ZeroCelsius + 25*physic.Kelvin,
		Humidity:    50 * physic.PercentRH,
	}}
	s := &envSensor{dev: dev}

	temp, hum, err := s.Sense()
	require.NoError(t, err)
	assert.InDelta(t, 25.0, temp, 1e-6)
	assert.InDelta(t, 50.0, hum, 1e-9)
}

func TestEnvSensor_SenseError(t *testing.T) {
	s := &envSensor{dev: &fakeBME{err: errors.New("i2c: nack")}}
	_, _, err := s.Sense()
	assert.EqualError(t, err, "i2c: nack")
}

func TestADCInput_ReadRaw(t *testing.T) {
	tests := []struct {
		name     string
		v        physic.ElectricPotential
		expected uint16
	}{
		{"zero", 0, 0},
		{"negative clamps to zero", -100 * physic.MilliVolt, 0},
		{"one fifth", 660 * physic.MilliVolt, 819},
		{"full scale", 3300 * physic.MilliVolt, 4095},
		{"over reference clamps", 4 * physic.Volt, 4095},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &adcInput{pin: &fakeADC{v: tt.v}, vref: 3.3}
			raw, err := in.ReadRaw()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, raw)
		})
	}
}

func TestADCInput_ReadError(t *testing.T) {
	in := &adcInput{pin: &fakeADC{err: errors.New("conversion timeout")}, vref: 3.3}
	_, err := in.ReadRaw()
	assert.EqualError(t, err, "conversion timeout")
}
