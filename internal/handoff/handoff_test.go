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

package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishTakeRoundTrip(t *testing.T) {
	t.Parallel()
	x := New(16)

	buf := x.WriteBuffer()
	copy(buf, []byte{0x01, 0x02, 0x03})
	require.True(t, x.Publish(3))

	data, ok := x.Take()
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, data)

	// Nothing further pending.
	_, ok = x.Take()
	assert.False(t, ok)
}

func TestTakeEmpty(t *testing.T) {
	t.Parallel()
	x := New(8)
	data, ok := x.Take()
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestPublishRefusedUntilDrained(t *testing.T) {
	t.Parallel()
	x := New(8)

	copy(x.WriteBuffer(), []byte{0xAA})
	require.True(t, x.Publish(1))

	// A second publish while the first frame is still pending is refused,
	// never torn: the pending frame stays intact, the new capture is dropped.
	copy(x.WriteBuffer(), []byte{0xBB})
	assert.False(t, x.Publish(1))

	first, ok := x.Take()
	require.True(t, ok)
	assert.Equal(t, byte(0xAA), first[0])

	// The consumer still holds the frame, so the producer is still gated.
	copy(x.WriteBuffer(), []byte{0xCC})
	assert.False(t, x.Publish(1))

	// The next Take releases it and the producer may publish again.
	_, ok = x.Take()
	assert.False(t, ok)
	copy(x.WriteBuffer(), []byte{0xDD})
	require.True(t, x.Publish(1))

	next, ok := x.Take()
	require.True(t, ok)
	assert.Equal(t, byte(0xDD), next[0])
}

func TestWriteBufferStableAfterRefusedPublish(t *testing.T) {
	t.Parallel()
	x := New(8)

	require.True(t, x.Publish(1))

	before := x.WriteBuffer()
	require.False(t, x.Publish(1))
	after := x.WriteBuffer()
	assert.Equal(t, &before[0], &after[0], "refused publish must not rotate buffers")
}

func TestFrameHeldAcrossProducerWrites(t *testing.T) {
	t.Parallel()
	x := New(4)

	copy(x.WriteBuffer(), []byte{1, 2, 3, 4})
	require.True(t, x.Publish(4))

	data, ok := x.Take()
	require.True(t, ok)

	// Producer scribbles over its own (other) buffer; the held frame must
	// be untouched because the producer never owns a buffer in reading state.
	wb := x.WriteBuffer()
	for i := range wb {
		wb[i] = 0xEE
	}
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestConcurrentProducerConsumer(t *testing.T) {
	t.Parallel()
	const frames = 1000
	x := New(2)

	done := make(chan struct{})
	received := 0
	var lost int

	go func() {
		defer close(done)
		for i := 0; i < frames; i++ {
			x.WriteBuffer()[0] = byte(i)
			if !x.Publish(1) {
				lost++
			}
		}
	}()

	for {
		select {
		case <-x.Ready():
			for {
				data, ok := x.Take()
				if !ok {
					break
				}
				require.Len(t, data, 1)
				received++
			}
		case <-done:
			for {
				data, ok := x.Take()
				if !ok {
					assert.Equal(t, frames, received+lost)
					return
				}
				require.Len(t, data, 1)
				received++
			}
		}
	}
}
