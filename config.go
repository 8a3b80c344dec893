package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

const (
	VariantADS1015 = "ads1015" // 12-bit
	VariantADS1115 = "ads1115" // 16-bit
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	ADC struct {
		Variant        string
		GainMillivolts int
		SampleRate     int
		Channel        int
	}
	I2C struct {
		Bus     int
		Address int
	}
	Divider struct {
		R1 float64
		R2 float64
	}
	Calibration struct {
		Enabled  bool
		Expected float64
		Measured float64
	}
	LogLocation string
}

func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetDefault("adc.variant", VariantADS1115)
	// Full scale 2048 mV. Can't use 4096 with a 3.3V supply.
	v.SetDefault("adc.gainMillivolts", 2048)
	// Lower rates average over a longer window and reduce noise.
	v.SetDefault("adc.sampleRate", 64)
	v.SetDefault("adc.channel", 0)

	v.SetDefault("i2c.bus", 1)
	v.SetDefault("i2c.address", 0x48)

	v.SetDefault("divider.r1", 1000000.0)
	v.SetDefault("divider.r2", 100000.0)

	v.SetDefault("calibration.enabled", false)
	v.SetDefault("calibration.expected", 0.0)
	v.SetDefault("calibration.measured", 0.0)

	v.SetDefault("logLocation", "/var/log/battvolt/")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"/etc/battvolt/", "."}
	}
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found; defaults cover everything.
	}

	config := &Config{}

	config.ADC.Variant = v.GetString("adc.variant")
	config.ADC.GainMillivolts = v.GetInt("adc.gainMillivolts")
	config.ADC.SampleRate = v.GetInt("adc.sampleRate")
	config.ADC.Channel = v.GetInt("adc.channel")

	config.I2C.Bus = v.GetInt("i2c.bus")
	config.I2C.Address = v.GetInt("i2c.address")

	config.Divider.R1 = v.GetFloat64("divider.r1")
	config.Divider.R2 = v.GetFloat64("divider.r2")

	config.Calibration.Enabled = v.GetBool("calibration.enabled")
	config.Calibration.Expected = v.GetFloat64("calibration.expected")
	config.Calibration.Measured = v.GetFloat64("calibration.measured")

	config.LogLocation = v.GetString("logLocation")

	return config, nil
}

// Validate rejects out-of-range settings before any bus transaction happens.
func (c *Config) Validate() error {
	if c.ADC.Variant != VariantADS1015 && c.ADC.Variant != VariantADS1115 {
		return fmt.Errorf("%w: unknown ADC variant %q", ErrInvalidConfig, c.ADC.Variant)
	}
	if _, ok := gainCodeForMillivolts[c.ADC.GainMillivolts]; !ok {
		return fmt.Errorf("%w: unsupported full-scale gain %d mV", ErrInvalidConfig, c.ADC.GainMillivolts)
	}
	if !validSampleRate(c.ADC.Variant, c.ADC.SampleRate) {
		return fmt.Errorf("%w: sample rate %d not supported by %s", ErrInvalidConfig, c.ADC.SampleRate, c.ADC.Variant)
	}
	if c.ADC.Channel < 0 || c.ADC.Channel > 3 {
		return fmt.Errorf("%w: channel %d out of range 0-3", ErrInvalidConfig, c.ADC.Channel)
	}
	if c.Divider.R1 <= 0 || c.Divider.R2 <= 0 {
		return fmt.Errorf("%w: divider resistances must be positive (r1=%v r2=%v)", ErrInvalidConfig, c.Divider.R1, c.Divider.R2)
	}
	if c.Calibration.Enabled && (c.Calibration.Expected <= 0 || c.Calibration.Measured <= 0) {
		return fmt.Errorf("%w: calibration enabled but expected/measured not set", ErrInvalidConfig)
	}
	return nil
}
