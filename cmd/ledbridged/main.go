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

// Command ledbridged runs the LED bridge daemon: it captures command
// transactions from a bus master, applies them to the pixel engine, and
// drives a strip output.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/strandwire/ledbridge"
	capgpio "github.com/strandwire/ledbridge/capture/gpio"
	capuart "github.com/strandwire/ledbridge/capture/uart"
	"github.com/strandwire/ledbridge/internal/rt"
	"github.com/strandwire/ledbridge/output/apa102"
	"github.com/strandwire/ledbridge/output/nrzled"
	"github.com/strandwire/ledbridge/output/term"
	"github.com/strandwire/ledbridge/report"
)

var (
	configPath = "ledbridged.toml"
	debug      = false
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "configuration file")
	pflag.BoolVarP(&debug, "debug", "d", debug, "verbose protocol logging")
}

func main() {
	pflag.Parse()

	if debug {
		ledbridge.SetDebugEnabled(true)
	}

	cfg, err := readConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() (*Config, error) {
	f, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) && !pflag.CommandLine.Changed("config") {
			// No config file at the default location: run on defaults.
			cfg := DefaultConfig()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := ParseConfig(f)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg *Config) error {
	if cfg.Runtime.LockMemory {
		if err := rt.LockMemory(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to lock memory: %v\n", err)
		}
	}

	needsGPIO := cfg.Capture.Mode == "gpio" || cfg.Runtime.StatusPin != ""
	if needsGPIO {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("failed to initialize host: %w", err)
		}
	}

	out, err := newOutput(cfg)
	if err != nil {
		return err
	}

	opts := []ledbridge.Option{
		ledbridge.WithCapacity(cfg.Geometry.MaxStrips, cfg.Geometry.MaxLedsPerStrip),
		ledbridge.WithBrightness(uint8(cfg.Geometry.Brightness)),
	}
	if out != nil {
		defer out.Close()
		opts = append(opts, ledbridge.WithOutput(out))
	}
	if cfg.Runtime.StatusPin != "" {
		toggle, terr := statusToggle(cfg.Runtime.StatusPin)
		if terr != nil {
			return terr
		}
		opts = append(opts, ledbridge.WithStatusIndicator(toggle))
	}

	eng, err := ledbridge.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	if err := eng.Configure(ledbridge.Config{
		Strips:       cfg.Geometry.Strips,
		LedsPerStrip: cfg.Geometry.LedsPerStrip,
	}); err != nil {
		return err
	}
	// Blank whatever the last power cycle left on the strips.
	if err := eng.Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: startup blank failed: %v\n", err)
	}

	src, runCapture, err := newSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	rep := report.Reporter(report.NewLog(os.Stdout))
	var ws *report.WS
	if cfg.Telemetry.Listen != "" {
		ws = report.NewWS()
		defer ws.Close()
		rep = report.Multi(rep, ws)
	}

	bridge := ledbridge.NewBridge(eng, src, &ledbridge.BridgeConfig{
		OnStats:       rep.Report,
		StatsInterval: time.Duration(cfg.Telemetry.StatsInterval),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bridge.Run(ctx) })
	if runCapture != nil {
		g.Go(func() error { return runCapture(ctx) })
	}
	if ws != nil {
		mux := http.NewServeMux()
		mux.Handle("/stats", ws)
		srv := &http.Server{
			Addr:              cfg.Telemetry.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if serr := srv.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				return fmt.Errorf("telemetry server failed: %w", serr)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return nil
		})
	}

	return g.Wait()
}

func newOutput(cfg *Config) (ledbridge.Output, error) {
	numPixels := cfg.Geometry.MaxStrips * cfg.Geometry.MaxLedsPerStrip
	switch cfg.Output.Driver {
	case "nrzled":
		out, err := nrzled.New(cfg.Output.SPIPort, numPixels, nrzled.DefaultFreq)
		if err != nil {
			return nil, fmt.Errorf("failed to open nrzled output: %w", err)
		}
		return out, nil
	case "apa102":
		out, err := apa102.New(cfg.Output.SPIPort, numPixels)
		if err != nil {
			return nil, fmt.Errorf("failed to open apa102 output: %w", err)
		}
		return out, nil
	case "term":
		return term.New(numPixels), nil
	default: // "none"
		return nil, nil
	}
}

func newSource(cfg *Config) (ledbridge.Source, func(context.Context) error, error) {
	switch cfg.Capture.Mode {
	case "gpio":
		sel := gpioreg.ByName(cfg.Capture.SelectPin)
		if sel == nil {
			return nil, nil, fmt.Errorf("no GPIO pin named %q", cfg.Capture.SelectPin)
		}
		sck := gpioreg.ByName(cfg.Capture.ClockPin)
		if sck == nil {
			return nil, nil, fmt.Errorf("no GPIO pin named %q", cfg.Capture.ClockPin)
		}
		mosi := gpioreg.ByName(cfg.Capture.DataPin)
		if mosi == nil {
			return nil, nil, fmt.Errorf("no GPIO pin named %q", cfg.Capture.DataPin)
		}
		rx, err := capgpio.NewBitbangReceiver(sck, mosi)
		if err != nil {
			return nil, nil, err
		}
		src, err := capgpio.New(sel, rx, cfg.Capture.BufferSize)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Run, nil
	default: // "uart"
		src, err := capuart.New(cfg.Capture.Device, cfg.Capture.BaudRate, cfg.Capture.BufferSize)
		if err != nil {
			return nil, nil, err
		}
		return src, nil, nil
	}
}

// statusToggle returns a closure flipping the named pin, wired to the
// keepalive status indicator.
func statusToggle(pinName string) (func(), error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", pinName)
	}
	level := gpio.Low
	return func() {
		level = !level
		if err := pin.Out(level); err != nil {
			ledbridge.Debugf("status pin write failed: %v", err)
		}
	}, nil
}
