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

// PixelBuffer is the pixel store: a fixed-capacity arena sized for the
// maximum geometry, with the active configuration selecting a logical
// window inside it. Each strip owns a fixed maxLedsPerStrip-slot region
// regardless of its configured length, so reconfiguration never moves or
// reallocates anything. Slots outside the logical window always hold the
// idle (all-zero) color.
//
// Addressing: logical index i lives on strip i/ledsPerStrip at offset
// i%ledsPerStrip, and that strip's region starts at strip*maxLedsPerStrip.
type PixelBuffer struct {
	pix             []byte // 3 bytes per physical slot, r g b
	maxStrips       int
	maxLedsPerStrip int
	cfg             Config
}

// NewPixelBuffer allocates an arena for the given physical capacity and
// configures the full capacity as active.
func NewPixelBuffer(maxStrips, maxLedsPerStrip int) *PixelBuffer {
	return &PixelBuffer{
		pix:             make([]byte, maxStrips*maxLedsPerStrip*3),
		maxStrips:       maxStrips,
		maxLedsPerStrip: maxLedsPerStrip,
		cfg: Config{
			Strips:       maxStrips,
			LedsPerStrip: maxLedsPerStrip,
		},
	}
}

// Config returns the active geometry.
func (p *PixelBuffer) Config() Config {
	return p.cfg
}

// TotalLeds returns the size of the current logical pixel space.
func (p *PixelBuffer) TotalLeds() int {
	return p.cfg.TotalLeds()
}

// Capacity returns the number of physical slots in the arena.
func (p *PixelBuffer) Capacity() int {
	return p.maxStrips * p.maxLedsPerStrip
}

// Pixels exposes the full fixed-size arena as raw RGB bytes for the output
// driver. The slice aliases the buffer; callers must not retain it across
// mutations.
func (p *PixelBuffer) Pixels() []byte {
	return p.pix
}

// physicalSlot maps a logical pixel index to its slot in the arena under
// the current configuration. Callers bounds-check against TotalLeds first;
// if a caller slips through anyway the result is clamped to the last slot
// of the last active strip rather than running off the arena.
func (p *PixelBuffer) physicalSlot(logical int) int {
	strip := logical / p.cfg.LedsPerStrip
	offset := logical % p.cfg.LedsPerStrip
	if strip >= p.cfg.Strips {
		strip = p.cfg.Strips - 1
		offset = p.cfg.LedsPerStrip - 1
	}
	return strip*p.maxLedsPerStrip + offset
}

// SetPixel writes one logical pixel. Out-of-range indices are a silent
// no-op and return false; a master working from a stale configuration is
// expected, not an error.
func (p *PixelBuffer) SetPixel(logical int, r, g, b byte) bool {
	if logical < 0 || logical >= p.cfg.TotalLeds() {
		return false
	}
	i := p.physicalSlot(logical) * 3
	p.pix[i] = r
	p.pix[i+1] = g
	p.pix[i+2] = b
	return true
}

// At reads back one logical pixel. ok is false outside the logical window.
func (p *PixelBuffer) At(logical int) (r, g, b byte, ok bool) {
	if logical < 0 || logical >= p.cfg.TotalLeds() {
		return 0, 0, 0, false
	}
	i := p.physicalSlot(logical) * 3
	return p.pix[i], p.pix[i+1], p.pix[i+2], true
}

// Slot reads back one physical slot regardless of configuration.
func (p *PixelBuffer) Slot(physical int) (r, g, b byte) {
	i := physical * 3
	return p.pix[i], p.pix[i+1], p.pix[i+2]
}

// BlankAll sets every physical slot to the idle color.
func (p *PixelBuffer) BlankAll() {
	clear(p.pix)
}

// blankOutsideWindow zeroes every slot the current configuration no longer
// addresses: the unused tail of each active strip and the whole region of
// each inactive strip. Called after reconfiguration and set-all so stale
// pixel data never stays latched on deactivated hardware.
func (p *PixelBuffer) blankOutsideWindow() {
	for strip := 0; strip < p.cfg.Strips; strip++ {
		base := strip * p.maxLedsPerStrip * 3
		clear(p.pix[base+p.cfg.LedsPerStrip*3 : base+p.maxLedsPerStrip*3])
	}
	clear(p.pix[p.cfg.Strips*p.maxLedsPerStrip*3:])
}

// SetConfig validates and applies a new geometry, then blanks everything
// that fell outside the new logical window. On validation failure nothing
// is mutated.
func (p *PixelBuffer) SetConfig(cfg Config) error {
	if err := cfg.validate(p.maxStrips, p.maxLedsPerStrip); err != nil {
		return err
	}
	p.cfg = cfg
	p.blankOutsideWindow()
	return nil
}
