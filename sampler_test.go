package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader simulates the ADC for tests.
type fakeReader struct {
	millivolts  float64
	err         error
	lastChannel int
	reads       int
}

func (f *fakeReader) ReadSingleEnded(channel int) (float64, error) {
	f.lastChannel = channel
	f.reads++
	if f.err != nil {
		return 0, f.err
	}
	return f.millivolts, nil
}

func testConfig() *Config {
	config := &Config{}
	config.ADC.Variant = VariantADS1115
	config.ADC.GainMillivolts = 2048
	config.ADC.SampleRate = 64
	config.ADC.Channel = 0
	config.I2C.Bus = 1
	config.I2C.Address = 0x48
	config.Divider.R1 = 1000000
	config.Divider.R2 = 100000
	return config
}

func TestSampleVoltage(t *testing.T) {
	tests := []struct {
		name string
		mv   float64
		r1   float64
		r2   float64
		want float64
	}{
		{
			name: "1000 mV through 1M/100k divider",
			mv:   1000.0,
			r1:   1000000,
			r2:   100000,
			want: 11.0,
		},
		{
			name: "444.5 mV through 1M/100k divider",
			mv:   444.5,
			r1:   1000000,
			r2:   100000,
			want: 4.8895,
		},
		{
			name: "equal resistors double the reading",
			mv:   1650.0,
			r1:   20000,
			r2:   20000,
			want: 3.3,
		},
		{
			name: "zero reading",
			mv:   0.0,
			r1:   1000000,
			r2:   100000,
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			config.Divider.R1 = tt.r1
			config.Divider.R2 = tt.r2

			sampler := NewSampler(&fakeReader{millivolts: tt.mv}, config)
			got, err := sampler.SampleVoltage()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSampleVoltageDividerIdentity(t *testing.T) {
	// With R2 overwhelming R1 there is no attenuation to undo, so the
	// result is just the raw reading converted to volts.
	config := testConfig()
	config.Divider.R1 = 1
	config.Divider.R2 = 1e12

	sampler := NewSampler(&fakeReader{millivolts: 1234.0}, config)
	got, err := sampler.SampleVoltage()
	require.NoError(t, err)
	assert.InDelta(t, 1.234, got, 1e-6)
}

func TestSampleVoltageCalibration(t *testing.T) {
	config := testConfig()
	config.Calibration.Enabled = true
	config.Calibration.Expected = 4.98
	config.Calibration.Measured = 4.889

	sampler := NewSampler(&fakeReader{millivolts: 1000.0}, config)
	got, err := sampler.SampleVoltage()
	require.NoError(t, err)
	assert.InDelta(t, 11.0*4.98/4.889, got, 1e-9)

	config.Calibration.Enabled = false
	sampler = NewSampler(&fakeReader{millivolts: 1000.0}, config)
	got, err = sampler.SampleVoltage()
	require.NoError(t, err)
	assert.InDelta(t, 11.0, got, 1e-9)
}

func TestSampleVoltageReadsConfiguredChannelOnce(t *testing.T) {
	config := testConfig()
	config.ADC.Channel = 2

	fake := &fakeReader{millivolts: 500.0}
	_, err := NewSampler(fake, config).SampleVoltage()
	require.NoError(t, err)
	assert.Equal(t, 2, fake.lastChannel)
	assert.Equal(t, 1, fake.reads)
}

func TestSampleVoltageHardwareError(t *testing.T) {
	fake := &fakeReader{err: fmt.Errorf("%w: i2c bus not responding", ErrHardwareUnavailable)}
	got, err := NewSampler(fake, testConfig()).SampleVoltage()
	require.ErrorIs(t, err, ErrHardwareUnavailable)
	assert.Zero(t, got)
}

func TestSampleAndEmit(t *testing.T) {
	var buf bytes.Buffer
	sampler := NewSampler(&fakeReader{millivolts: 1000.0}, testConfig())

	require.NoError(t, sampler.SampleAndEmit(&buf))
	assert.Equal(t, "11.000\n", buf.String())
}

func TestSampleAndEmitFormatting(t *testing.T) {
	tests := []struct {
		name string
		mv   float64
		want string
	}{
		{name: "three digits padded", mv: 1000.0, want: "11.000\n"},
		{name: "sub-volt reading", mv: 100.0, want: "1.100\n"},
		{name: "half volt steps", mv: 500.0, want: "5.500\n"},
		{name: "zero", mv: 0.0, want: "0.000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sampler := NewSampler(&fakeReader{millivolts: tt.mv}, testConfig())
			require.NoError(t, sampler.SampleAndEmit(&buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSampleAndEmitWritesNothingOnFailure(t *testing.T) {
	var buf bytes.Buffer
	fake := &fakeReader{err: fmt.Errorf("%w: no ack from device", ErrHardwareUnavailable)}

	err := NewSampler(fake, testConfig()).SampleAndEmit(&buf)
	require.ErrorIs(t, err, ErrHardwareUnavailable)
	assert.Zero(t, buf.Len())
}
