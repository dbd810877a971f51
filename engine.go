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

// Package ledbridge implements the peripheral side of a compact binary LED
// command protocol. A bus master pushes variable-length transactions at the
// bridge; the engine frames nothing itself - capture sources under capture/
// delimit transactions - but decodes, validates, and applies every command,
// mapping a runtime-configurable logical pixel space onto a fixed-capacity
// per-strip buffer and handing completed frames to an output driver.
package ledbridge

import (
	"fmt"
	"time"

	"github.com/strandwire/ledbridge/internal/frame"
)

// Engine decodes command transactions and owns all bridge state: the pixel
// arena, the active geometry, global brightness, and diagnostic counters.
//
// Thread Safety: Engine is NOT thread-safe. Process must be called from a
// single goroutine - the bridge loop. Counters are atomics, so Stats may be
// read concurrently by a reporter.
type Engine struct {
	buf               *PixelBuffer
	out               Output
	statusToggle      func()
	counters          Counters
	brightness        uint8
	zeroPayloadExempt [256]bool
}

// Option is a functional option for NewEngine.
type Option func(*Engine) error

// WithOutput sets the strip-output driver. Without one, renders are
// accounted but go nowhere, which is useful for dry runs and tests.
func WithOutput(out Output) Option {
	return func(e *Engine) error {
		e.out = out
		return nil
	}
}

// WithCapacity fixes the physical arena geometry. It replaces the default
// capacity and must be applied before any command is processed.
func WithCapacity(maxStrips, maxLedsPerStrip int) Option {
	return func(e *Engine) error {
		if maxStrips < 1 || maxLedsPerStrip < 1 {
			return fmt.Errorf("invalid capacity %dx%d", maxStrips, maxLedsPerStrip)
		}
		e.buf = NewPixelBuffer(maxStrips, maxLedsPerStrip)
		return nil
	}
}

// WithBrightness sets the initial global brightness.
func WithBrightness(b uint8) Option {
	return func(e *Engine) error {
		e.brightness = b
		return nil
	}
}

// WithStatusIndicator registers the callback toggled by keepalive commands,
// typically wired to a status LED.
func WithStatusIndicator(toggle func()) Option {
	return func(e *Engine) error {
		e.statusToggle = toggle
		return nil
	}
}

// WithZeroPayloadExempt excludes opcodes from the zero-payload anomaly
// counter. By default no opcode is exempt, so commands that legitimately
// carry an all-zero payload (a clear-to-black set-all, for instance) still
// tick the counter; exempt them here if that noise matters to you.
func WithZeroPayloadExempt(opcodes ...byte) Option {
	return func(e *Engine) error {
		for _, op := range opcodes {
			e.zeroPayloadExempt[op] = true
		}
		return nil
	}
}

// NewEngine creates an engine with the default capacity and brightness.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		buf:        NewPixelBuffer(DefaultMaxStrips, DefaultMaxLedsPerStrip),
		brightness: DefaultBrightness,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Buffer exposes the pixel store, mainly for tests and preview tooling.
func (e *Engine) Buffer() *PixelBuffer {
	return e.buf
}

// Config returns the active strip geometry.
func (e *Engine) Config() Config {
	return e.buf.Config()
}

// Brightness returns the stored global brightness scalar.
func (e *Engine) Brightness() uint8 {
	return e.brightness
}

// Stats returns a snapshot of the diagnostic counters. Safe to call from
// any goroutine.
func (e *Engine) Stats() Snapshot {
	return e.counters.Snapshot()
}

// Process decodes and applies one transaction. A zero-length transaction is
// a no-op. Malformed frames return a *CommandError and mutate nothing;
// out-of-range addressing is silently dropped or clamped. No returned error
// is fatal - the protocol is stateless per transaction and recovery is
// simply the master's next frame.
func (e *Engine) Process(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	e.counters.transactions.Add(1)

	opcode := data[0]
	if !e.zeroPayloadExempt[opcode] && frame.PayloadAllZero(data) {
		e.counters.zeroPayload.Add(1)
		Debugf("cmd 0x%02X length %d has zero payload", opcode, len(data))
	}

	switch opcode {
	case frame.OpKeepalive:
		if e.statusToggle != nil {
			e.statusToggle()
		}
		return nil
	case frame.OpSetPixel:
		return e.setPixel(data)
	case frame.OpSetBrightness:
		return e.setBrightness(data)
	case frame.OpRender:
		return e.render()
	case frame.OpClear:
		return e.clear()
	case frame.OpSetRange:
		return e.setRange(data)
	case frame.OpSetAll:
		return e.setAll(data)
	case frame.OpConfigure:
		return e.configure(data)
	default:
		e.counters.unknownOpcodes.Add(1)
		Debugf("unknown command 0x%02X (%d bytes), dropped", opcode, len(data))
		return &CommandError{Op: "decode", Opcode: opcode, Err: ErrUnknownOpcode}
	}
}

// Clear blanks the whole arena and renders. It is the programmatic
// equivalent of the wire clear command, used by daemons at startup so the
// strips never show whatever the last power cycle left behind.
func (e *Engine) Clear() error {
	return e.clear()
}

// Configure applies a new geometry exactly as a validated reconfigure
// command would, including the blank-and-render of abandoned slots.
func (e *Engine) Configure(cfg Config) error {
	if err := e.buf.SetConfig(cfg); err != nil {
		return fmt.Errorf("configure %dx%d: %w", cfg.Strips, cfg.LedsPerStrip, err)
	}
	return e.render()
}

func (e *Engine) setPixel(data []byte) error {
	if len(data) < frame.MinSetPixelLen {
		return e.reject(newTooShortError("set-pixel", frame.OpSetPixel, frame.MinSetPixelLen, len(data)))
	}
	idx := int(frame.ReadUint16(data, 1))
	// Stale master config: drop silently.
	e.buf.SetPixel(idx, data[3], data[4], data[5])
	return nil
}

func (e *Engine) setBrightness(data []byte) error {
	if len(data) < frame.MinSetBrightnessLen {
		return e.reject(newTooShortError("set-brightness", frame.OpSetBrightness, frame.MinSetBrightnessLen, len(data)))
	}
	e.brightness = data[1]
	Debugf("brightness -> %d", e.brightness)
	return nil
}

// render hands the arena to the output driver and records how long the
// driver held it. The frame counter only moves on success.
func (e *Engine) render() error {
	if e.out == nil {
		e.counters.frames.Add(1)
		return nil
	}
	start := time.Now()
	err := e.out.Show(e.buf.Pixels(), e.brightness)
	e.counters.lastRenderNs.Store(time.Since(start).Nanoseconds())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	e.counters.frames.Add(1)
	return nil
}

func (e *Engine) clear() error {
	e.buf.BlankAll()
	return e.render()
}

func (e *Engine) setRange(data []byte) error {
	if len(data) < frame.MinSetRangeLen {
		return e.reject(newTooShortError("set-range", frame.OpSetRange, frame.MinSetRangeLen, len(data)))
	}
	start := int(frame.ReadUint16(data, 1))
	count := int(data[3])

	// Length is checked against the count the master claimed, before any
	// clamping, so a truncated payload is always rejected outright.
	if expected := frame.SetRangeExpected(count); len(data) < expected {
		return e.reject(newTruncatedError("set-range", frame.OpSetRange, expected, len(data)))
	}

	total := e.buf.TotalLeds()
	if start >= total {
		return nil
	}
	if start+count > total {
		count = total - start
	}
	for i := 0; i < count; i++ {
		base := frame.MinSetRangeLen + i*frame.BytesPerPixel
		e.buf.SetPixel(start+i, data[base], data[base+1], data[base+2])
	}
	return nil
}

func (e *Engine) setAll(data []byte) error {
	total := e.buf.TotalLeds()
	if expected := frame.SetAllExpected(total); len(data) < expected {
		Debugf("set-all expected %d bytes, got %d", expected, len(data))
		return e.reject(newTruncatedError("set-all", frame.OpSetAll, expected, len(data)))
	}
	for i := 0; i < total; i++ {
		base := 1 + i*frame.BytesPerPixel
		e.buf.SetPixel(i, data[base], data[base+1], data[base+2])
	}
	e.buf.blankOutsideWindow()
	return e.render()
}

func (e *Engine) configure(data []byte) error {
	if len(data) < frame.MinConfigureLen {
		return e.reject(newTooShortError("reconfigure", frame.OpConfigure, frame.MinConfigureLen, len(data)))
	}
	cfg := Config{
		Strips:       int(data[1]),
		LedsPerStrip: int(frame.ReadUint16(data, 2)),
	}
	if err := e.buf.SetConfig(cfg); err != nil {
		return e.reject(newRangeError("reconfigure", frame.OpConfigure, err))
	}
	if len(data) >= 5 {
		SetDebugEnabled(data[4] != 0)
	}
	Debugf("config -> strips=%d length=%d total=%d", cfg.Strips, cfg.LedsPerStrip, cfg.TotalLeds())
	return e.render()
}

// reject accounts a dropped command and passes its error through.
func (e *Engine) reject(err *CommandError) error {
	e.counters.malformed.Add(1)
	Debugf("%v", err)
	return err
}
