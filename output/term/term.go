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

// Package term renders frames as ANSI color blocks on the terminal. It is
// the no-hardware fallback for development and for smoke-testing a master
// without a strip attached.
package term

import (
	"fmt"

	"github.com/strandwire/ledbridge/output"
	"periph.io/x/extra/devices/screen"
)

// Driver paints frames on stdout.
type Driver struct {
	dev    *screen.Dev
	scaled []byte
}

// New creates a terminal strip of numPixels RGB pixels.
func New(numPixels int) *Driver {
	return &Driver{
		dev:    screen.New(numPixels),
		scaled: make([]byte, numPixels*3),
	}
}

// Show scales the frame by brightness and paints it.
func (d *Driver) Show(pixels []byte, brightness uint8) error {
	if len(pixels) > len(d.scaled) {
		return fmt.Errorf("frame of %d bytes exceeds strip capacity of %d", len(pixels), len(d.scaled))
	}
	output.Scale(d.scaled[:len(pixels)], pixels, brightness)
	if _, err := d.dev.Write(d.scaled[:len(pixels)]); err != nil {
		return fmt.Errorf("terminal write failed: %w", err)
	}
	return nil
}

// Close halts the terminal strip.
func (d *Driver) Close() error {
	return d.dev.Halt()
}
