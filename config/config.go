package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/logging"
	"lautenbacher.net/fcleds/strip"
)

const CONFILE = "config.yml"

type Config struct {
	Strip      StripConfig      `yaml:"Strip"`
	Loop       LoopConfig       `yaml:"Loop"`
	Hardware   HardwareConfig   `yaml:"Hardware"`
	Simulation SimulationConfig `yaml:"Simulation"`
	Preview    PreviewConfig    `yaml:"Preview"`
	Logging    LoggingConfig    `yaml:"Logging"`
}

// StripConfig is the LED layout and palette in their textual encoding.
// Empty lists select the defaults.
type StripConfig struct {
	Leds      []string `yaml:"Leds,omitempty" json:"Leds"`
	Colors    []string `yaml:"Colors,omitempty" json:"Colors"`
	Animation bool     `yaml:"Animation" json:"Animation"`
}

type LoopConfig struct {
	Interval          time.Duration `yaml:"Interval"`
	AnimationInterval time.Duration `yaml:"AnimationInterval"`
	IndicatorInterval time.Duration `yaml:"IndicatorInterval"`
	WarningInterval   time.Duration `yaml:"WarningInterval"`
}

type HardwareConfig struct {
	LEDType string `yaml:"LEDType"`
	// SPIBackend is "rpio" or "periph".
	SPIBackend       string    `yaml:"SPIBackend"`
	SPIDevice        string    `yaml:"SPIDevice"`
	SPIFrequency     int       `yaml:"SPIFrequency"`
	APA102Brightness int       `yaml:"APA102Brightness"`
	ColorCorrection  []float64 `yaml:"ColorCorrection,flow"`
}

type SimulationConfig struct {
	Steps []StepConfig `yaml:"Steps"`
}

// StepConfig is one state of the scripted flight used on the hardware
// platform.
type StepConfig struct {
	Duration   time.Duration `yaml:"Duration"`
	Armed      bool          `yaml:"Armed"`
	OkToArm    bool          `yaml:"OkToArm"`
	Modes      []string      `yaml:"Modes,flow,omitempty"`
	Roll       int           `yaml:"Roll"`
	Pitch      int           `yaml:"Pitch"`
	Throttle   int           `yaml:"Throttle"`
	LowBattery bool          `yaml:"LowBattery"`
	Failsafe   bool          `yaml:"Failsafe"`
}

type PreviewConfig struct {
	Enabled bool   `yaml:"Enabled"`
	Listen  string `yaml:"Listen"`
	History int    `yaml:"History"`
}

type LoggingConfig struct {
	TUI LogConfig `yaml:"TUI"`
	HW  LogConfig `yaml:"HW"`
}

type LogConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

// Options converts to the logging package options.
func (c LogConfig) Options(buffer bool) logging.Options {
	return logging.Options{Buffer: buffer, Level: c.Level, Format: c.Format, File: c.File}
}

var ledTypes = []string{"WS2801", "APA102", "WS2812"}

// ReadConfig decodes and validates cfile.
func ReadConfig(cfile string) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	conf := &Config{}
	if err := yaml.NewDecoder(f).Decode(conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return conf, nil
}

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.Strip.validate()...)

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"Loop.Interval", c.Loop.Interval},
		{"Loop.AnimationInterval", c.Loop.AnimationInterval},
		{"Loop.IndicatorInterval", c.Loop.IndicatorInterval},
		{"Loop.WarningInterval", c.Loop.WarningInterval},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", d.name, d.value))
		}
	}

	hw := c.Hardware
	known := false
	for _, t := range ledTypes {
		known = known || strings.EqualFold(t, hw.LEDType)
	}
	if !known {
		errs = append(errs, fmt.Errorf("Hardware.LEDType %q must be one of %s", hw.LEDType, strings.Join(ledTypes, ", ")))
	}
	switch strings.ToLower(hw.SPIBackend) {
	case "", "rpio":
		if strings.EqualFold(hw.LEDType, "WS2812") {
			errs = append(errs, errors.New("Hardware.LEDType WS2812 requires the periph SPI backend"))
		}
	case "periph":
	default:
		errs = append(errs, fmt.Errorf("Hardware.SPIBackend %q must be rpio or periph", hw.SPIBackend))
	}
	if hw.SPIFrequency <= 0 {
		errs = append(errs, fmt.Errorf("Hardware.SPIFrequency must be positive, got %d", hw.SPIFrequency))
	}
	if hw.APA102Brightness < 0 || hw.APA102Brightness > 31 {
		errs = append(errs, fmt.Errorf("Hardware.APA102Brightness must be between 0 and 31, got %d", hw.APA102Brightness))
	}
	if len(hw.ColorCorrection) != 3 {
		errs = append(errs, fmt.Errorf("Hardware.ColorCorrection needs 3 factors, got %d", len(hw.ColorCorrection)))
	}
	for i, f := range hw.ColorCorrection {
		if f < 0 {
			errs = append(errs, fmt.Errorf("Hardware.ColorCorrection[%d] must not be negative, got %v", i, f))
		}
	}

	for i, s := range c.Simulation.Steps {
		if s.Duration <= 0 {
			errs = append(errs, fmt.Errorf("Simulation.Steps[%d].Duration must be positive, got %v", i, s.Duration))
		}
		if _, err := flight.ParseModes(s.Modes); err != nil {
			errs = append(errs, fmt.Errorf("Simulation.Steps[%d]: %w", i, err))
		}
	}

	if c.Preview.Enabled && c.Preview.Listen == "" {
		errs = append(errs, errors.New("Preview.Listen must be set when the preview is enabled"))
	}
	if c.Preview.History < 0 {
		errs = append(errs, fmt.Errorf("Preview.History must not be negative, got %d", c.Preview.History))
	}

	if _, err := logging.ParseLevel(c.Logging.TUI.Level); err != nil {
		errs = append(errs, fmt.Errorf("Logging.TUI: %w", err))
	}
	if _, err := logging.ParseLevel(c.Logging.HW.Level); err != nil {
		errs = append(errs, fmt.Errorf("Logging.HW: %w", err))
	}

	return errors.Join(errs...)
}

// validate decodes the descriptors into scratch tables.
func (c StripConfig) validate() []error {
	var errs []error
	if len(c.Leds) > strip.MaxLed {
		errs = append(errs, fmt.Errorf("Strip.Leds has %d entries, at most %d are supported", len(c.Leds), strip.MaxLed))
	}
	if len(c.Colors) > color.PaletteSize {
		errs = append(errs, fmt.Errorf("Strip.Colors has %d entries, at most %d are supported", len(c.Colors), color.PaletteSize))
	}
	if len(errs) > 0 {
		return errs
	}
	if _, err := c.Layout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// Layout decodes the LED descriptors into a new table.
func (c StripConfig) Layout() (*strip.State, error) {
	s := strip.NewDefaultState()
	if err := c.ApplyLayout(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyLayout replaces the content of s with the descriptors, or with the
// default layout when there are none. s is left untouched on error.
func (c StripConfig) ApplyLayout(s *strip.State) error {
	if len(c.Leds) == 0 {
		s.LoadDefaults()
		return nil
	}
	if len(c.Leds) > strip.MaxLed {
		return fmt.Errorf("Strip.Leds has %d entries, at most %d are supported", len(c.Leds), strip.MaxLed)
	}
	scratch := strip.NewState()
	for i, text := range c.Leds {
		if err := scratch.ParseLedConfig(i, text); err != nil {
			return fmt.Errorf("Strip.Leds[%d] %q: %w", i, text, err)
		}
	}
	*s = *scratch
	return nil
}

// Palette decodes the color descriptors on top of the default palette.
func (c StripConfig) Palette() (*color.Palette, error) {
	p := color.DefaultPalette()
	for i, text := range c.Colors {
		if err := p.ParseColor(i, text); err != nil {
			return nil, fmt.Errorf("Strip.Colors[%d] %q: %w", i, text, err)
		}
	}
	return p, nil
}

// FlightSteps converts the simulation script.
func (c SimulationConfig) FlightSteps() ([]flight.Step, error) {
	steps := make([]flight.Step, 0, len(c.Steps))
	for i, s := range c.Steps {
		modes, err := flight.ParseModes(s.Modes)
		if err != nil {
			return nil, fmt.Errorf("Simulation.Steps[%d]: %w", i, err)
		}
		steps = append(steps, flight.Step{
			Duration: s.Duration,
			State: flight.State{
				Armed:           s.Armed,
				OkToArm:         s.OkToArm,
				Modes:           modes,
				Roll:            s.Roll,
				Pitch:           s.Pitch,
				Throttle:        s.Throttle,
				LowBattery:      s.LowBattery,
				FailsafeElapsed: s.Failsafe,
			},
		})
	}
	return steps, nil
}
