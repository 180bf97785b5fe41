// Package hardware binds the sensor node to a Linux single-board computer:
// a BME280 over I2C for temperature and humidity, an ADS1015 ADC for the
// three analog inputs, and GPIO lines for the motion sensor and LEDs.
package hardware

import (
	"errors"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"github.com/couchcryptid/firesense/internal/config"
	"github.com/couchcryptid/firesense/internal/pipeline"
)

// ADS1015 single-ended channels for the analog inputs.
const (
	windChannel         = ads1x15.Channel0
	duffMoistureChannel = ads1x15.Channel1
	droughtChannel      = ads1x15.Channel2

	adcRate = 1600 * physic.Hertz
)

// Board owns the opened buses and devices.
type Board struct {
	bus     i2c.BusCloser
	env     *bmxx80.Dev
	adc     *ads1x15.Dev
	inputs  pipeline.Inputs
	outputs [4]gpio.PinOut
	motion  gpio.PinIn
	logger  *slog.Logger
}

// Open initializes the host drivers and every device the sensor node uses.
func Open(cfg *config.Config, logger *slog.Logger) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	b := &Board{bus: bus, logger: logger}

	b.env, err = bmxx80.NewI2C(bus, cfg.BME280Address, &bmxx80.DefaultOpts)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open bme280 at %#x: %w", cfg.BME280Address, err)
	}

	b.adc, err = ads1x15.NewADS1015(bus, &ads1x15.DefaultOpts)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open ads1015: %w", err)
	}
	vref := physic.ElectricPotential(cfg.ADCReference * float64(physic.Volt))
	channels := []struct {
		name string
		ch   ads1x15.Channel
		dest *pipeline.AnalogInput
	}{
		{"wind", windChannel, &b.inputs.Wind},
		{"duff_moisture", duffMoistureChannel, &b.inputs.DuffMoisture},
		{"drought", droughtChannel, &b.inputs.Drought},
	}
	for _, c := range channels {
		pin, err := b.adc.PinForChannel(c.ch, vref, adcRate, ads1x15.BestQuality)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open adc channel for %s: %w", c.name, err)
		}
		*c.dest = &adcInput{pin: pin, vref: cfg.ADCReference}
	}
	b.inputs.Env = &envSensor{dev: b.env}

	names := [4]string{cfg.PinNormal, cfg.PinModerate, cfg.PinCritical, cfg.PinDangerous}
	for i, name := range names {
		p, err := lookupPin(name)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.outputs[i] = p
	}
	if b.motion, err = lookupPin(cfg.PinMotion); err != nil {
		b.Close()
		return nil, err
	}

	logger.Info("hardware opened",
		"bus", bus.String(),
		"bme280", fmt.Sprintf("%#x", cfg.BME280Address),
		"motion_pin", cfg.PinMotion,
	)
	return b, nil
}

func lookupPin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return p, nil
}

// Inputs returns the environment sensor and analog inputs.
func (b *Board) Inputs() pipeline.Inputs { return b.inputs }

// Outputs returns the LED pins in band order.
func (b *Board) Outputs() [4]gpio.PinOut { return b.outputs }

// Motion returns the motion sensor input.
func (b *Board) Motion() gpio.PinIn { return b.motion }

// Close turns the LEDs off and releases the devices and the bus.
func (b *Board) Close() error {
	var errs []error
	for _, p := range b.outputs {
		if p != nil {
			errs = append(errs, p.Out(gpio.Low))
		}
	}
	if b.adc != nil {
		errs = append(errs, b.adc.Halt())
	}
	if b.env != nil {
		errs = append(errs, b.env.Halt())
	}
	if b.bus != nil {
		errs = append(errs, b.bus.Close())
	}
	return errors.Join(errs...)
}
