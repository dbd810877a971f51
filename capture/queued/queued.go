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

// Package queued implements the driver-queued capture mode: the peripheral
// driver itself delimits transactions, handing back a buffer and an
// actual-length value per exchange. Platforms whose SPI-peripheral driver
// queues whole transactions (the ESP-IDF spi_slave style) plug in here.
package queued

import (
	"context"
	"errors"
	"fmt"

	"github.com/strandwire/ledbridge"
)

// Exchanger is the peripheral exchange primitive. One call is one
// master-controlled transaction window: it fills buf with whatever the
// master clocked in and returns the byte count. Implementations wait a
// bounded interval and return ledbridge.ErrExchangeTimeout when the master
// stayed quiet.
type Exchanger interface {
	Exchange(buf []byte) (int, error)
}

// Source adapts an Exchanger to the ledbridge.Source contract.
type Source struct {
	ex     Exchanger
	buf    []byte
	closed bool
}

// New creates a driver-queued source with a capture buffer of bufSize
// bytes. bufSize bounds the largest transaction the bridge accepts and
// should cover a full set-all frame for the configured capacity.
func New(ex Exchanger, bufSize int) *Source {
	return &Source{
		ex:  ex,
		buf: make([]byte, bufSize),
	}
}

// Next runs one exchange. A timeout or an empty exchange is a no-op cycle,
// reported as ledbridge.ErrNoTransaction. The returned slice aliases the
// capture buffer and is reused by the following Next call.
func (s *Source) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, ledbridge.ErrSourceClosed
	}

	n, err := s.ex.Exchange(s.buf)
	if err != nil {
		if errors.Is(err, ledbridge.ErrExchangeTimeout) {
			return nil, ledbridge.ErrNoTransaction
		}
		return nil, fmt.Errorf("exchange failed: %w", err)
	}
	if n == 0 {
		return nil, ledbridge.ErrNoTransaction
	}
	return s.buf[:n], nil
}

// Close releases the source and, if the exchanger is closeable, the
// underlying driver.
func (s *Source) Close() error {
	s.closed = true
	if c, ok := s.ex.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close exchanger: %w", err)
		}
	}
	return nil
}
