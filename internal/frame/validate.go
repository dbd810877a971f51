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

package frame

// PayloadAllZero reports whether every byte after the opcode is zero.
// Computed as the bitwise OR of the payload, matching the anomaly check the
// decoder runs on every transaction longer than one byte. An all-zero payload
// is a diagnostic signal, not an error: some commands legitimately carry one.
func PayloadAllZero(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	var or byte
	for _, b := range data[1:] {
		or |= b
	}
	return or == 0
}

// ReadUint16 reads a big-endian 16-bit field starting at off.
// Callers must have length-checked the frame first.
func ReadUint16(data []byte, off int) uint16 {
	return uint16(data[off])<<8 | uint16(data[off+1])
}

// SetRangeExpected returns the total transaction length a set-range command
// with the given pixel count implies: opcode + start + count + count triples.
func SetRangeExpected(count int) int {
	return MinSetRangeLen + count*BytesPerPixel
}

// SetAllExpected returns the total transaction length a set-all command
// implies for the given addressable LED count.
func SetAllExpected(totalLeds int) int {
	return 1 + totalLeds*BytesPerPixel
}
