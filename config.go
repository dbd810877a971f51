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

package ledbridge

// Default physical capacity, matching the largest board this bridge has
// shipped on. The capacity is fixed at engine construction; the active
// configuration below it is runtime-mutable over the wire.
const (
	DefaultMaxStrips       = 8
	DefaultMaxLedsPerStrip = 500

	// DefaultBrightness is the global brightness applied until a master
	// sends set-brightness.
	DefaultBrightness = 50
)

// Config is the active strip geometry. It is the only runtime-mutable state
// besides the pixels themselves, and changes only through a validated
// reconfigure command.
type Config struct {
	// Strips is the number of active strips, in [1, MaxStrips].
	Strips int `json:"strips"`
	// LedsPerStrip is the configured length of each active strip, in
	// [1, MaxLedsPerStrip]. Every strip shares one length.
	LedsPerStrip int `json:"leds_per_strip"`
}

// TotalLeds returns the size of the logical pixel space this configuration
// addresses.
func (c Config) TotalLeds() int {
	return c.Strips * c.LedsPerStrip
}

// validate checks the configuration against a fixed capacity. The capacity
// bound also guarantees the strips*length product can never exceed the
// physical buffer.
func (c Config) validate(maxStrips, maxLedsPerStrip int) error {
	if c.Strips < 1 || c.Strips > maxStrips {
		return ErrStripCountRange
	}
	if c.LedsPerStrip < 1 || c.LedsPerStrip > maxLedsPerStrip {
		return ErrStripLengthRange
	}
	return nil
}
