package main

import (
	"errors"
	"fmt"

	"gobot.io/x/gobot/v2/drivers/i2c"
	"gobot.io/x/gobot/v2/platforms/raspi"
)

var ErrHardwareUnavailable = errors.New("adc hardware unavailable")

// AnalogReader is the single capability the sampler needs from the hardware:
// one single-ended conversion of a channel, reported in millivolts.
type AnalogReader interface {
	ReadSingleEnded(channel int) (float64, error)
}

// gainCodeForMillivolts maps the configured full-scale range to the PGA
// setting the ADS1x15 driver expects.
var gainCodeForMillivolts = map[int]int{
	6144: 0,
	4096: 1,
	2048: 2,
	1024: 3,
	512:  4,
	256:  5,
}

var ads1015SampleRates = []int{128, 250, 490, 920, 1600, 2400, 3300}
var ads1115SampleRates = []int{8, 16, 32, 64, 128, 250, 475, 860}

func validSampleRate(variant string, sps int) bool {
	rates := ads1115SampleRates
	if variant == VariantADS1015 {
		rates = ads1015SampleRates
	}
	for _, rate := range rates {
		if rate == sps {
			return true
		}
	}
	return false
}

type ADS1x15Reader struct {
	driver   *i2c.ADS1x15Driver
	gain     int
	dataRate int
}

func NewADS1x15Reader(adaptor *raspi.Adaptor, config *Config) (*ADS1x15Reader, error) {
	gain, ok := gainCodeForMillivolts[config.ADC.GainMillivolts]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported full-scale gain %d mV", ErrInvalidConfig, config.ADC.GainMillivolts)
	}

	opts := []func(i2c.Config){
		i2c.WithBus(config.I2C.Bus),
		i2c.WithAddress(config.I2C.Address),
		i2c.WithADS1x15Gain(gain),
		i2c.WithADS1x15DataRate(config.ADC.SampleRate),
	}

	var driver *i2c.ADS1x15Driver
	switch config.ADC.Variant {
	case VariantADS1015:
		driver = i2c.NewADS1015Driver(adaptor, opts...)
	case VariantADS1115:
		driver = i2c.NewADS1115Driver(adaptor, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown ADC variant %q", ErrInvalidConfig, config.ADC.Variant)
	}

	if err := driver.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s driver: %v", ErrHardwareUnavailable, config.ADC.Variant, err)
	}

	return &ADS1x15Reader{
		driver:   driver,
		gain:     gain,
		dataRate: config.ADC.SampleRate,
	}, nil
}

// ReadSingleEnded performs one conversion of the channel against ground.
// The driver reports volts; callers get millivolts.
func (r *ADS1x15Reader) ReadSingleEnded(channel int) (float64, error) {
	volts, err := r.driver.Read(channel, r.gain, r.dataRate)
	if err != nil {
		return 0, fmt.Errorf("%w: read channel %d: %v", ErrHardwareUnavailable, channel, err)
	}
	return volts * 1000.0, nil
}

func (r *ADS1x15Reader) Close() error {
	return r.driver.Halt()
}
