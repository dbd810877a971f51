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

// Package nrzled drives WS2812-class strips over a SPI port. The chips
// have no brightness register, so the global brightness is applied in
// software before the pixels hit the wire.
package nrzled

import (
	"fmt"

	"github.com/strandwire/ledbridge/output"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	nrzdev "periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// DefaultFreq is the NRZ symbol rate for 800kHz strips: each NRZ bit is
// stretched over three SPI bits.
const DefaultFreq = 2500 * physic.KiloHertz

// Driver writes frames to a WS2812-class strip.
type Driver struct {
	port   spi.PortCloser
	dev    *nrzdev.Dev
	scaled []byte
}

// New initializes the host, opens the named SPI port ("" picks the first
// one) and binds it to a strip of numPixels RGB pixels.
func New(portName string, numPixels int, freq physic.Frequency) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize host: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", portName, err)
	}
	dev, err := nrzdev.NewSPI(port, &nrzdev.Opts{
		NumPixels: numPixels,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to bind strip: %w", err)
	}
	return &Driver{
		port:   port,
		dev:    dev,
		scaled: make([]byte, numPixels*3),
	}, nil
}

// Show scales the frame by brightness and pushes it to the strip.
func (d *Driver) Show(pixels []byte, brightness uint8) error {
	if len(pixels) > len(d.scaled) {
		return fmt.Errorf("frame of %d bytes exceeds strip capacity of %d", len(pixels), len(d.scaled))
	}
	output.Scale(d.scaled[:len(pixels)], pixels, brightness)
	if _, err := d.dev.Write(d.scaled[:len(pixels)]); err != nil {
		return fmt.Errorf("strip write failed: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the SPI port.
func (d *Driver) Close() error {
	if err := d.dev.Halt(); err != nil {
		_ = d.port.Close()
		return fmt.Errorf("failed to halt strip: %w", err)
	}
	if err := d.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port: %w", err)
	}
	return nil
}
