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

package queued

import (
	"context"
	"errors"
	"testing"

	"github.com/strandwire/ledbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedExchanger struct {
	results []scriptedResult
	closed  bool
}

type scriptedResult struct {
	err  error
	data []byte
}

func (s *scriptedExchanger) Exchange(buf []byte) (int, error) {
	if len(s.results) == 0 {
		return 0, ledbridge.ErrExchangeTimeout
	}
	r := s.results[0]
	s.results = s.results[1:]
	if r.err != nil {
		return 0, r.err
	}
	return copy(buf, r.data), nil
}

func (s *scriptedExchanger) Close() error {
	s.closed = true
	return nil
}

func TestNextDeliversTransaction(t *testing.T) {
	t.Parallel()
	ex := &scriptedExchanger{results: []scriptedResult{
		{data: []byte{0x01, 0x00, 0x05, 10, 20, 30}},
	}}
	src := New(ex, 64)

	data, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00, 0x05, 10, 20, 30}, data)
}

func TestNextTimeoutIsNoTransaction(t *testing.T) {
	t.Parallel()
	src := New(&scriptedExchanger{}, 64)

	_, err := src.Next(context.Background())
	require.ErrorIs(t, err, ledbridge.ErrNoTransaction)
}

func TestNextZeroLengthIsNoTransaction(t *testing.T) {
	t.Parallel()
	ex := &scriptedExchanger{results: []scriptedResult{
		{data: []byte{}},
	}}
	src := New(ex, 64)

	_, err := src.Next(context.Background())
	require.ErrorIs(t, err, ledbridge.ErrNoTransaction)
}

func TestNextWrapsDriverError(t *testing.T) {
	t.Parallel()
	driverErr := errors.New("bus fault")
	ex := &scriptedExchanger{results: []scriptedResult{{err: driverErr}}}
	src := New(ex, 64)

	_, err := src.Next(context.Background())
	require.ErrorIs(t, err, driverErr)
}

func TestNextAfterClose(t *testing.T) {
	t.Parallel()
	ex := &scriptedExchanger{}
	src := New(ex, 64)
	require.NoError(t, src.Close())
	assert.True(t, ex.closed)

	_, err := src.Next(context.Background())
	require.ErrorIs(t, err, ledbridge.ErrSourceClosed)
}

func TestNextCanceledContext(t *testing.T) {
	t.Parallel()
	src := New(&scriptedExchanger{}, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBufferReusedBetweenCalls(t *testing.T) {
	t.Parallel()
	ex := &scriptedExchanger{results: []scriptedResult{
		{data: []byte{0xFF}},
		{data: []byte{0x03}},
	}}
	src := New(ex, 8)

	first, err := src.Next(context.Background())
	require.NoError(t, err)
	second, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &first[0], &second[0], "source should recycle its capture buffer")
	assert.Equal(t, byte(0x03), second[0])
}
