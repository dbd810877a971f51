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

// Package uart implements a gap-framed serial capture source. Serial wires
// carry no select line, so transaction boundaries are inferred from timing:
// one master burst, ended by an inter-byte gap, is one transaction. The
// master must leave a gap longer than the configured one between commands,
// which the protocol's fire-and-forget pacing gives naturally.
package uart

import (
	"context"
	"fmt"
	"time"

	"github.com/strandwire/ledbridge"
	"go.bug.st/serial"
)

const (
	// DefaultIdleTimeout bounds how long Next waits for a burst to begin.
	DefaultIdleTimeout = 100 * time.Millisecond
	// DefaultGap is the inter-byte silence that ends a transaction.
	DefaultGap = 2 * time.Millisecond
)

// Source captures transactions from a serial port.
type Source struct {
	port        serial.Port
	buf         []byte
	idleTimeout time.Duration
	gap         time.Duration
	closed      bool
}

// New opens a serial device and returns a capture source. bufSize bounds
// the largest accepted transaction.
func New(device string, baudRate, bufSize int) (*Source, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}
	return NewFromPort(port, bufSize), nil
}

// NewFromPort wraps an already-open port. Mainly for tests and for callers
// with unusual mode requirements.
func NewFromPort(port serial.Port, bufSize int) *Source {
	return &Source{
		port:        port,
		buf:         make([]byte, bufSize),
		idleTimeout: DefaultIdleTimeout,
		gap:         DefaultGap,
	}
}

// SetTimings overrides the idle timeout and inter-byte gap.
func (s *Source) SetTimings(idleTimeout, gap time.Duration) {
	s.idleTimeout = idleTimeout
	s.gap = gap
}

// Next waits up to the idle timeout for a burst, then accumulates bytes
// until the line goes quiet for the gap interval or the buffer fills. The
// returned slice aliases the capture buffer and is reused by the following
// call.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, ledbridge.ErrSourceClosed
	}

	if err := s.port.SetReadTimeout(s.idleTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	n, err := s.port.Read(s.buf)
	if err != nil {
		return nil, fmt.Errorf("serial read failed: %w", err)
	}
	if n == 0 {
		// go.bug.st/serial reports a timeout as a zero-byte read.
		return nil, ledbridge.ErrNoTransaction
	}

	total := n
	if err := s.port.SetReadTimeout(s.gap); err != nil {
		return nil, fmt.Errorf("failed to set gap timeout: %w", err)
	}
	for total < len(s.buf) {
		n, err = s.port.Read(s.buf[total:])
		if err != nil {
			return nil, fmt.Errorf("serial read failed: %w", err)
		}
		if n == 0 {
			break
		}
		total += n
	}
	return s.buf[:total], nil
}

// Close closes the underlying port.
func (s *Source) Close() error {
	s.closed = true
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}
