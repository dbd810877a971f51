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

// Output is the strip-output primitive: it turns the pixel buffer into
// light. Implementations live under output/ and are treated as opaque and
// blocking for a bounded, hardware-determined duration.
type Output interface {
	// Show latches the full fixed-size arena (3 bytes per physical slot,
	// r g b) onto the strips. Brightness is a global scalar the driver
	// applies however its hardware supports; the engine stores and
	// forwards it without touching pixel data.
	Show(pixels []byte, brightness uint8) error

	// Close releases the underlying device.
	Close() error
}
