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

package gpio

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// sampleTimeout bounds each clock-edge wait so the sampling goroutine can
// notice Stop between bits.
const sampleTimeout = time.Millisecond

// BitbangReceiver samples the data line on clock rising edges (SPI mode 0,
// MSB first). It is a software fallback for hosts without a hardware
// SPI-peripheral driver; its ceiling is the platform's edge-delivery
// latency, so it suits low clock rates only.
type BitbangReceiver struct {
	sck  gpio.PinIn
	mosi gpio.PinIn
	stop chan struct{}
	done chan int
}

// NewBitbangReceiver configures the clock pin for rising-edge interrupts
// and the data pin for plain reads.
func NewBitbangReceiver(sck, mosi gpio.PinIn) (*BitbangReceiver, error) {
	if err := sck.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("failed to configure clock pin %s: %w", sck, err)
	}
	if err := mosi.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure data pin %s: %w", mosi, err)
	}
	return &BitbangReceiver{sck: sck, mosi: mosi}, nil
}

// Arm starts sampling into buf on a background goroutine. Bytes beyond
// len(buf) are discarded; the transaction is still well formed up to the
// truncation point.
func (r *BitbangReceiver) Arm(buf []byte) error {
	if r.stop != nil {
		return errors.New("receiver already armed")
	}
	r.stop = make(chan struct{})
	r.done = make(chan int, 1)
	go r.sample(buf, r.stop, r.done)
	return nil
}

// Stop ends sampling and returns the number of whole bytes captured. A
// partial byte in flight is dropped, matching what a hardware shift
// register does on deassert.
func (r *BitbangReceiver) Stop() (int, error) {
	if r.stop == nil {
		return 0, errors.New("receiver not armed")
	}
	close(r.stop)
	n := <-r.done
	r.stop = nil
	r.done = nil
	return n, nil
}

func (r *BitbangReceiver) sample(buf []byte, stop <-chan struct{}, done chan<- int) {
	var (
		n    int
		cur  byte
		bits int
	)
	for {
		select {
		case <-stop:
			done <- n
			return
		default:
		}
		if !r.sck.WaitForEdge(sampleTimeout) {
			continue
		}
		cur <<= 1
		if r.mosi.Read() == gpio.High {
			cur |= 1
		}
		bits++
		if bits == 8 {
			if n < len(buf) {
				buf[n] = cur
				n++
			}
			bits = 0
			cur = 0
		}
	}
}
