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

import (
	"context"
	"time"

	"github.com/strandwire/ledbridge/internal/syncutil"
)

// MockOutput provides a mock implementation of Output for testing.
type MockOutput struct {
	err        error
	last       []byte
	mu         syncutil.Mutex
	shows      int
	brightness uint8
	closed     bool
}

// NewMockOutput creates a new mock output driver.
func NewMockOutput() *MockOutput {
	return &MockOutput{}
}

// Show implements Output, recording the frame and brightness it was handed.
func (m *MockOutput) Show(pixels []byte, brightness uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.shows++
	m.brightness = brightness
	m.last = append(m.last[:0], pixels...)
	return nil
}

// Close implements Output.
func (m *MockOutput) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// SetError makes subsequent Show calls fail with err.
func (m *MockOutput) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// ShowCount returns how many frames were latched.
func (m *MockOutput) ShowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shows
}

// LastFrame returns a copy of the most recently latched frame.
func (m *MockOutput) LastFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.last))
	copy(out, m.last)
	return out
}

// LastBrightness returns the brightness passed with the last frame.
func (m *MockOutput) LastBrightness() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness
}

// MockSource provides a mock implementation of Source for testing: it
// replays queued transactions in order, then reports ErrNoTransaction.
type MockSource struct {
	frames   [][]byte
	mu       syncutil.Mutex
	overruns uint64
	closed   bool
}

// NewMockSource creates a mock source preloaded with the given frames.
func NewMockSource(frames ...[]byte) *MockSource {
	return &MockSource{frames: frames}
}

// Queue appends a transaction to replay.
func (m *MockSource) Queue(data []byte) {
	m.mu.Lock()
	m.frames = append(m.frames, data)
	m.mu.Unlock()
}

// Next implements Source. Like a real source it blocks briefly when idle
// instead of spinning the caller.
func (m *MockSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrSourceClosed
	}
	if len(m.frames) == 0 {
		m.mu.Unlock()
		time.Sleep(time.Millisecond)
		m.mu.Lock()
		return nil, ErrNoTransaction
	}
	data := m.frames[0]
	m.frames = m.frames[1:]
	return data, nil
}

// Close implements Source.
func (m *MockSource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// SetOverruns sets the value reported through OverrunCounter.
func (m *MockSource) SetOverruns(n uint64) {
	m.mu.Lock()
	m.overruns = n
	m.mu.Unlock()
}

// Overruns implements OverrunCounter.
func (m *MockSource) Overruns() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overruns
}
