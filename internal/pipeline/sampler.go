package pipeline

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
)

// EnvSensor reads air temperature (°C) and relative humidity (%).
type EnvSensor interface {
	Sense() (temperature, humidity float64, err error)
}

// AnalogInput reads a raw 12-bit count in [0, 4095].
type AnalogInput interface {
	ReadRaw() (uint16, error)
}

// Inputs groups the drivers read on every sample.
type Inputs struct {
	Env          EnvSensor
	Wind         AnalogInput
	DuffMoisture AnalogInput
	Drought      AnalogInput
}

// Sampler reads all inputs once per period and pushes the sample onto the
// sample channel, blocking while the channel is full.
type Sampler struct {
	inputs  Inputs
	out     chan<- domain.SensorSample
	clock   clockwork.Clock
	period  time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSampler creates a Sampler writing to out.
func NewSampler(inputs Inputs, out chan<- domain.SensorSample, clock clockwork.Clock, period time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Sampler {
	return &Sampler{
		inputs:  inputs,
		out:     out,
		clock:   clock,
		period:  period,
		logger:  logger,
		metrics: metrics,
	}
}

// Sample takes one reading. A failed read leaves NaN in the affected fields.
func (s *Sampler) Sample() domain.SensorSample {
	temp, hum, err := s.inputs.Env.Sense()
	if err != nil {
		s.readFailed("env", err)
		temp, hum = math.NaN(), math.NaN()
	}
	return domain.SensorSample{
		Temperature:  temp,
		Humidity:     hum,
		Wind:         s.readAnalog("wind", s.inputs.Wind, domain.WindMax),
		DuffMoisture: s.readAnalog("duff_moisture", s.inputs.DuffMoisture, domain.DuffMoistureMax),
		Drought:      s.readAnalog("drought", s.inputs.Drought, domain.DroughtMax),
	}
}

func (s *Sampler) readAnalog(name string, in AnalogInput, maxValue float64) float64 {
	raw, err := in.ReadRaw()
	if err != nil {
		s.readFailed(name, err)
		return math.NaN()
	}
	return domain.Rescale(raw, maxValue)
}

func (s *Sampler) readFailed(input string, err error) {
	s.logger.Warn("sensor read failed", "input", input, "error", err)
	s.metrics.SampleReadErrors.WithLabelValues(input).Inc()
}

// Run samples until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.period)
	defer ticker.Stop()

	for {
		sample := s.Sample()
		s.logger.Debug("sample",
			"temperature", sample.Temperature,
			"humidity", sample.Humidity,
			"wind", sample.Wind,
			"duff_moisture", sample.DuffMoisture,
			"drought", sample.Drought,
		)

		select {
		case s.out <- sample:
		case <-ctx.Done():
			return nil
		}
		s.metrics.SamplesProduced.Inc()
		s.metrics.SampleQueueDepth.Set(float64(len(s.out)))

		if !waitTick(ctx, ticker) {
			return nil
		}
	}
}

// waitTick blocks until the next tick and reports false if ctx ended first.
func waitTick(ctx context.Context, ticker clockwork.Ticker) bool {
	select {
	case <-ctx.Done():
		return false
	case <-ticker.Chan():
		return true
	}
}
