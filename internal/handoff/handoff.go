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

// Package handoff implements a lock-free single-producer single-consumer
// exchange of captured transaction frames between an edge-capture goroutine
// and the main processing loop.
//
// Two fixed buffers alternate between the producer and the consumer. The
// producer fills its current buffer, then publishes it; the byte count is
// stored before the ready state is released, so the consumer can never
// observe a published frame whose count or contents are still in flight.
// A publish is refused while the consumer still holds the other buffer,
// which turns the classic re-arm tearing race into an explicit, countable
// overrun drop.
package handoff

import "sync/atomic"

// Buffer states. Each buffer moves writable -> ready -> reading -> writable.
const (
	stateWritable int32 = iota
	stateReady
	stateReading
)

// Exchange is a two-buffer handoff. The zero value is not usable; call New.
//
// Exactly one goroutine may call WriteBuffer/Publish and exactly one may
// call Take. Neither side ever blocks the other.
type Exchange struct {
	notify chan struct{}
	bufs   [2][]byte
	n      [2]int
	state  [2]atomic.Int32
	write  int
	hold   int
}

// New creates an Exchange whose capture buffers are size bytes each.
func New(size int) *Exchange {
	x := &Exchange{
		notify: make(chan struct{}, 1),
		write:  0,
		hold:   -1,
	}
	x.bufs[0] = make([]byte, size)
	x.bufs[1] = make([]byte, size)
	return x
}

// WriteBuffer returns the buffer the producer may currently fill. The same
// buffer is returned until Publish succeeds.
func (x *Exchange) WriteBuffer() []byte {
	return x.bufs[x.write]
}

// Publish marks the current write buffer as holding n captured bytes and
// hands it to the consumer. It returns false, leaving the write buffer
// reusable, if the consumer has not yet drained the previously published
// frame; the caller should count this as an overrun and drop the capture.
func (x *Exchange) Publish(n int) bool {
	other := x.write ^ 1
	if x.state[other].Load() != stateWritable {
		return false
	}
	// Count first, ready flag last. The atomic store orders the byte count
	// and buffer contents before the consumer can observe stateReady.
	x.n[x.write] = n
	x.state[x.write].Store(stateReady)
	x.write = other

	select {
	case x.notify <- struct{}{}:
	default:
	}
	return true
}

// Take returns the next published frame, or ok=false if none is pending.
// The returned slice is valid until the following Take call, which releases
// the buffer back to the producer.
func (x *Exchange) Take() (data []byte, ok bool) {
	if x.hold >= 0 {
		x.state[x.hold].Store(stateWritable)
		x.hold = -1
	}
	for i := range x.state {
		if x.state[i].CompareAndSwap(stateReady, stateReading) {
			x.hold = i
			return x.bufs[i][:x.n[i]], true
		}
	}
	return nil, false
}

// Ready returns a channel that receives a token after each successful
// publish. It carries at most one pending token; consumers should drain it
// and then call Take until it reports no frame.
func (x *Exchange) Ready() <-chan struct{} {
	return x.notify
}
