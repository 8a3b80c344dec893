package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"gobot.io/x/gobot/v2/platforms/raspi"
)

func main() {
	os.Exit(run(os.Stdout))
}

func run(out io.Writer) int {
	config, err := LoadConfig()
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("battvolt: %v", err)
		return 2
	}

	logFile := setupLogging(config.LogLocation)
	if logFile != nil {
		defer logFile.Close()
	}

	if err := config.Validate(); err != nil {
		log.Printf("battvolt: %v", err)
		return 2
	}

	if err := sampleAndEmit(config, out); err != nil {
		log.Printf("battvolt: %v", err)
		if errors.Is(err, ErrHardwareUnavailable) {
			return 1
		}
		return 2
	}
	return 0
}

// setupLogging sends log output to stderr and a rotating file. Stdout stays
// reserved for the measurement itself.
func setupLogging(location string) *lumberjack.Logger {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if err := os.MkdirAll(location, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return nil
	}
	logger := &lumberjack.Logger{
		Filename:   location + "battvolt.log",
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, logger))
	return logger
}

func sampleAndEmit(config *Config, out io.Writer) error {
	adaptor := raspi.NewAdaptor()
	if err := adaptor.Connect(); err != nil {
		return fmt.Errorf("%w: connect raspi adaptor: %v", ErrHardwareUnavailable, err)
	}
	defer adaptor.Finalize()

	reader, err := NewADS1x15Reader(adaptor, config)
	if err != nil {
		return err
	}
	defer reader.Close()

	return NewSampler(reader, config).SampleAndEmit(out)
}
