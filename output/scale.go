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

// Package output holds helpers shared by the pixel output drivers.
package output

// Scale copies src into dst with every channel scaled by level/256 (the
// 8.8 fixed-point scale8 used by strip controllers: level 255 is identity,
// level 0 is black). dst must be at least len(src) long.
func Scale(dst, src []byte, level uint8) {
	m := uint16(level) + 1
	for i, v := range src {
		dst[i] = byte(uint16(v) * m >> 8)
	}
}
