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

// Package gpio implements the edge-triggered capture mode: the master's
// select line delimits transactions. A falling edge arms the receiver and
// discards any stale partial capture; the rising edge stops it and
// publishes the byte count. The edge watcher plays the role the chip-select
// interrupt handler plays on bare metal: it never blocks on the consumer
// and hands frames across via a lock-free double buffer, so a transaction
// arriving before the previous frame is drained becomes a counted overrun
// drop instead of a torn read.
package gpio

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/strandwire/ledbridge"
	"github.com/strandwire/ledbridge/internal/handoff"
	"periph.io/x/conn/v3/gpio"
)

// edgeTimeout bounds each wait on the select line so the watcher can
// notice context cancellation.
const edgeTimeout = 100 * time.Millisecond

// Receiver is the byte-capture half of the transaction: something that
// shifts bits off the wire into a buffer between Arm and Stop. Hardware
// peripherals with DMA and the software BitbangReceiver both fit.
type Receiver interface {
	// Arm starts receiving into buf. It must return promptly; reception
	// continues in the background until Stop.
	Arm(buf []byte) error
	// Stop ends reception deterministically and reports how many bytes
	// landed in the armed buffer.
	Stop() (int, error)
}

// Source captures transactions delimited by a select line.
type Source struct {
	pin      gpio.PinIn
	rx       Receiver
	x        *handoff.Exchange
	overruns atomic.Uint64
	closed   atomic.Bool
}

// New configures the select pin for both-edge interrupts and returns a
// source. Run must be started on its own goroutine before Next yields
// anything. The select line is active-low, matching SPI chip-select.
func New(pin gpio.PinIn, rx Receiver, bufSize int) (*Source, error) {
	if err := pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("failed to configure select pin %s: %w", pin, err)
	}
	return &Source{
		pin: pin,
		rx:  rx,
		x:   handoff.New(bufSize),
	}, nil
}

// Run is the edge watcher, the analogue of the chip-select interrupt
// handler. It owns the producer side of the handoff: arm on assert, stop
// and publish on release. It returns when the context is canceled.
func (s *Source) Run(ctx context.Context) error {
	armed := false
	defer func() {
		if armed {
			_, _ = s.rx.Stop()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.pin.WaitForEdge(edgeTimeout) {
			continue
		}
		if s.pin.Read() == gpio.Low {
			// Select asserted: transaction start. A stale armed capture
			// means we missed a release edge; discard the partial data.
			if armed {
				_, _ = s.rx.Stop()
			}
			if err := s.rx.Arm(s.x.WriteBuffer()); err != nil {
				return fmt.Errorf("failed to arm receiver: %w", err)
			}
			armed = true
			continue
		}
		// Select released: transaction end.
		if !armed {
			continue
		}
		n, err := s.rx.Stop()
		armed = false
		if err != nil {
			return fmt.Errorf("failed to stop receiver: %w", err)
		}
		if n == 0 {
			continue
		}
		if !s.x.Publish(n) {
			s.overruns.Add(1)
			ledbridge.Debugf("transaction dropped: previous frame not drained (%d bytes lost)", n)
		}
	}
}

// Next returns the next published transaction, waiting up to the edge
// timeout for one to arrive. The returned slice is valid until the
// following Next call.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	if s.closed.Load() {
		return nil, ledbridge.ErrSourceClosed
	}
	if data, ok := s.x.Take(); ok {
		return data, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.x.Ready():
		if data, ok := s.x.Take(); ok {
			return data, nil
		}
		return nil, ledbridge.ErrNoTransaction
	case <-time.After(edgeTimeout):
		return nil, ledbridge.ErrNoTransaction
	}
}

// Overruns reports how many completed transactions were dropped because
// the previous frame had not been consumed.
func (s *Source) Overruns() uint64 {
	return s.overruns.Load()
}

// Close halts the select pin. The Run goroutine should be stopped via its
// context first.
func (s *Source) Close() error {
	s.closed.Store(true)
	if err := s.pin.Halt(); err != nil {
		return fmt.Errorf("failed to halt select pin: %w", err)
	}
	return nil
}
