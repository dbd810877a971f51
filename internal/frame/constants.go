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

// Package frame holds the wire-level constants and pure helpers for the
// LED bridge command protocol. Byte 0 of every transaction is the opcode;
// all multi-byte fields are big-endian.
package frame

// Opcodes - the closed set of commands a master may send
const (
	OpSetPixel      = 0x01 // pixel_hi, pixel_lo, r, g, b
	OpSetBrightness = 0x02 // brightness
	OpRender        = 0x03 // (no payload)
	OpClear         = 0x04 // (no payload)
	OpSetRange      = 0x05 // start_hi, start_lo, count, count*(r,g,b)
	OpSetAll        = 0x06 // total_leds*(r,g,b)
	OpConfigure     = 0x07 // strip_count, len_hi, len_lo, [debug_flag]
	OpKeepalive     = 0xFF // (no payload)
)

// Minimum transaction lengths per opcode, opcode byte included.
// Variable-length commands (set-range, set-all) have a second, payload-derived
// length check on top of these.
const (
	MinSetPixelLen      = 6
	MinSetBrightnessLen = 2
	MinSetRangeLen      = 4
	MinConfigureLen     = 4
)

// BytesPerPixel is the wire size of one color triple (r, g, b).
const BytesPerPixel = 3
