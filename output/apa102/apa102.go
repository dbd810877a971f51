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

// Package apa102 drives APA-102 (DotStar) strips over a SPI port. Unlike
// the NRZ chips these carry a per-frame global brightness field, so the
// brightness is handed to the device instead of scaled in software.
package apa102

import (
	"fmt"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	apadev "periph.io/x/devices/v3/apa102"
	"periph.io/x/host/v3"
)

// Driver writes frames to an APA-102 strip.
type Driver struct {
	port spi.PortCloser
	dev  *apadev.Dev
}

// New initializes the host, opens the named SPI port ("" picks the first
// one) and binds it to a strip of numPixels RGB pixels.
func New(portName string, numPixels int) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize host: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", portName, err)
	}
	opts := apadev.DefaultOpts
	opts.NumPixels = numPixels
	dev, err := apadev.New(port, &opts)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to bind strip: %w", err)
	}
	return &Driver{port: port, dev: dev}, nil
}

// Show pushes the frame to the strip with the given global brightness.
func (d *Driver) Show(pixels []byte, brightness uint8) error {
	d.dev.Intensity = brightness
	if _, err := d.dev.Write(pixels); err != nil {
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
