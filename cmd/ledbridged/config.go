// Copyright 2026 The Strandwire Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/strandwire/ledbridge"
	"github.com/strandwire/ledbridge/internal/frame"
)

// Config is the daemon configuration.
type Config struct {
	Geometry  GeometryConfig  `toml:"geometry"`
	Capture   CaptureConfig   `toml:"capture"`
	Output    OutputConfig    `toml:"output"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Runtime   RuntimeConfig   `toml:"runtime"`
}

// GeometryConfig sizes the pixel arena and the working window inside it.
type GeometryConfig struct {
	// MaxStrips and MaxLedsPerStrip fix the arena capacity. Changing them
	// requires a restart; everything below is runtime-adjustable.
	MaxStrips       int `toml:"max_strips"`
	MaxLedsPerStrip int `toml:"max_leds_per_strip"`
	// Strips and LedsPerStrip are the geometry active at startup, until the
	// master reconfigures.
	Strips       int `toml:"strips"`
	LedsPerStrip int `toml:"leds_per_strip"`
	// Brightness is the startup global brightness (0 means the default).
	Brightness int `toml:"brightness"`
}

// CaptureConfig selects and tunes the transaction capture source.
type CaptureConfig struct {
	// Mode is "uart" or "gpio".
	Mode string `toml:"mode"`
	// BufferSize bounds the largest accepted transaction. Zero sizes it to
	// a full set-all frame for the arena capacity.
	BufferSize int `toml:"buffer_size"`

	// Device and BaudRate configure uart mode.
	Device   string `toml:"device"`
	BaudRate int    `toml:"baud_rate"`

	// SelectPin, ClockPin and DataPin configure gpio mode.
	SelectPin string `toml:"select_pin"`
	ClockPin  string `toml:"clock_pin"`
	DataPin   string `toml:"data_pin"`
}

// OutputConfig selects the strip driver.
type OutputConfig struct {
	// Driver is "nrzled", "apa102", "term" or "none".
	Driver string `toml:"driver"`
	// SPIPort names the SPI port for the hardware drivers. Empty picks the
	// first one registered.
	SPIPort string `toml:"spi_port"`
}

// TelemetryConfig configures the stats feed.
type TelemetryConfig struct {
	// Listen is the websocket listen address. Empty disables the feed; the
	// stats log line is emitted either way.
	Listen string `toml:"listen"`
	// StatsInterval is how often a snapshot is emitted.
	StatsInterval TOMLDuration `toml:"stats_interval"`
}

// RuntimeConfig holds host-level knobs.
type RuntimeConfig struct {
	// LockMemory pins the process in RAM so page faults never stall a
	// transaction window.
	LockMemory bool `toml:"lock_memory"`
	// StatusPin names the GPIO pin toggled by keepalive commands.
	StatusPin string `toml:"status_pin"`
}

// DefaultConfig returns a development-friendly configuration: uart capture
// and terminal output.
func DefaultConfig() *Config {
	return &Config{
		Geometry: GeometryConfig{
			MaxStrips:       ledbridge.DefaultMaxStrips,
			MaxLedsPerStrip: ledbridge.DefaultMaxLedsPerStrip,
			Strips:          ledbridge.DefaultMaxStrips,
			LedsPerStrip:    ledbridge.DefaultMaxLedsPerStrip,
			Brightness:      ledbridge.DefaultBrightness,
		},
		Capture: CaptureConfig{
			Mode:     "uart",
			Device:   "/dev/ttyAMA0",
			BaudRate: 2000000,
		},
		Output: OutputConfig{
			Driver: "term",
		},
		Telemetry: TelemetryConfig{
			StatsInterval: TOMLDuration(5 * time.Second),
		},
	}
}

// ParseConfig reads a TOML configuration, applied on top of the defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency and fills derived defaults.
func (c *Config) Validate() error {
	g := &c.Geometry
	if g.MaxStrips < 1 || g.MaxLedsPerStrip < 1 {
		return fmt.Errorf("invalid arena capacity %dx%d", g.MaxStrips, g.MaxLedsPerStrip)
	}
	if g.Strips < 1 || g.Strips > g.MaxStrips {
		return fmt.Errorf("strips must be in [1,%d], got %d", g.MaxStrips, g.Strips)
	}
	if g.LedsPerStrip < 1 || g.LedsPerStrip > g.MaxLedsPerStrip {
		return fmt.Errorf("leds_per_strip must be in [1,%d], got %d", g.MaxLedsPerStrip, g.LedsPerStrip)
	}
	if g.Brightness < 0 || g.Brightness > 255 {
		return fmt.Errorf("brightness must be in [0,255], got %d", g.Brightness)
	}
	if g.Brightness == 0 {
		g.Brightness = ledbridge.DefaultBrightness
	}

	switch c.Capture.Mode {
	case "uart":
		if c.Capture.Device == "" {
			return fmt.Errorf("uart capture needs a device")
		}
		if c.Capture.BaudRate <= 0 {
			return fmt.Errorf("invalid baud rate %d", c.Capture.BaudRate)
		}
	case "gpio":
		if c.Capture.SelectPin == "" || c.Capture.ClockPin == "" || c.Capture.DataPin == "" {
			return fmt.Errorf("gpio capture needs select_pin, clock_pin and data_pin")
		}
	default:
		return fmt.Errorf("unknown capture mode %q", c.Capture.Mode)
	}
	if c.Capture.BufferSize == 0 {
		// Big enough for a whole-arena set-all.
		c.Capture.BufferSize = frame.SetAllExpected(g.MaxStrips * g.MaxLedsPerStrip)
	}
	if c.Capture.BufferSize < frame.MinSetPixelLen {
		return fmt.Errorf("buffer_size %d is too small", c.Capture.BufferSize)
	}

	switch c.Output.Driver {
	case "nrzled", "apa102", "term", "none":
	default:
		return fmt.Errorf("unknown output driver %q", c.Output.Driver)
	}

	if c.Telemetry.StatsInterval <= 0 {
		c.Telemetry.StatsInterval = TOMLDuration(5 * time.Second)
	}
	return nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
