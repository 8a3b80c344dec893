package main

import (
	"fmt"
	"io"
)

// Sampler turns one raw ADC reading into a physical voltage.
type Sampler struct {
	adc     AnalogReader
	channel int

	r1 float64
	r2 float64

	calibrate   bool
	calExpected float64
	calMeasured float64
}

func NewSampler(adc AnalogReader, config *Config) *Sampler {
	return &Sampler{
		adc:         adc,
		channel:     config.ADC.Channel,
		r1:          config.Divider.R1,
		r2:          config.Divider.R2,
		calibrate:   config.Calibration.Enabled,
		calExpected: config.Calibration.Expected,
		calMeasured: config.Calibration.Measured,
	}
}

// SampleVoltage performs exactly one single-ended read and undoes the
// divider attenuation: volts = raw_mV * 0.001 * (R1+R2) / R2.
func (s *Sampler) SampleVoltage() (float64, error) {
	rawMV, err := s.adc.ReadSingleEnded(s.channel)
	if err != nil {
		return 0, err
	}

	volts := rawMV * 0.001
	volts = volts * (s.r1 + s.r2) / s.r2

	if s.calibrate {
		// Hardware-specific trim: multiply by the expected value,
		// divide by the uncalibrated result.
		volts = volts * s.calExpected / s.calMeasured
	}

	return volts, nil
}

// SampleAndEmit writes the voltage as a single line with three fractional
// digits. Nothing is written when the read fails.
func (s *Sampler) SampleAndEmit(w io.Writer) error {
	volts, err := s.SampleVoltage()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%.3f\n", volts)
	return err
}
