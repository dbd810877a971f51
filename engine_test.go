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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine builds an engine on a small 2x5 arena with a 2x3 active
// window, the worked example used throughout these tests.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *MockOutput) {
	t.Helper()
	out := NewMockOutput()
	opts = append([]Option{
		WithCapacity(2, 5),
		WithOutput(out),
	}, opts...)
	eng, err := NewEngine(opts...)
	require.NoError(t, err)
	require.NoError(t, eng.Configure(Config{Strips: 2, LedsPerStrip: 3}))
	return eng, out
}

func TestProcessEmptyTransaction(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)
	require.NoError(t, eng.Process(nil))
	require.NoError(t, eng.Process([]byte{}))
	assert.Zero(t, eng.Stats().Transactions)
}

func TestSetPixel(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)

	require.NoError(t, eng.Process([]byte{0x01, 0x00, 0x04, 10, 20, 30}))
	require.NoError(t, eng.Process([]byte{0x03}))

	// Logical 4 is strip 1 offset 1, physical slot 6 in the 2x5 arena.
	frame := out.LastFrame()
	assert.Equal(t, []byte{10, 20, 30}, frame[6*3:6*3+3])
	assert.Equal(t, uint64(2), eng.Stats().Transactions)
}

func TestSetPixelTooShort(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	shows := out.ShowCount()

	err := eng.Process([]byte{0x01, 0x00, 0x04, 10, 20})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	require.ErrorIs(t, err, ErrFrameTooShort)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 6, cmdErr.Expected)
	assert.Equal(t, 5, cmdErr.Actual)

	assert.Equal(t, uint64(1), eng.Stats().Malformed)
	assert.Equal(t, shows, out.ShowCount(), "rejected command must not render")
}

func TestSetPixelStaleIndexDropsSilently(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)

	// Index 6 is one past the 2x3 window: a master on a stale config.
	require.NoError(t, eng.Process([]byte{0x01, 0x00, 0x06, 10, 20, 30}))
	assert.Zero(t, eng.Stats().Malformed)

	for s := 0; s < eng.Buffer().Capacity(); s++ {
		r, g, b := eng.Buffer().Slot(s)
		assert.Zero(t, r+g+b, "slot %d mutated", s)
	}
}

func TestSetBrightness(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	assert.Equal(t, uint8(DefaultBrightness), eng.Brightness())

	require.NoError(t, eng.Process([]byte{0x02, 200}))
	assert.Equal(t, uint8(200), eng.Brightness())

	require.NoError(t, eng.Process([]byte{0x03}))
	assert.Equal(t, uint8(200), out.LastBrightness())
}

func TestSetBrightnessTooShort(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)

	err := eng.Process([]byte{0x02})
	require.ErrorIs(t, err, ErrFrameTooShort)
	assert.Equal(t, uint8(DefaultBrightness), eng.Brightness())
}

func TestRenderFailureKeepsFrameCount(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	frames := eng.Stats().Frames

	out.SetError(errors.New("strip unplugged"))
	err := eng.Process([]byte{0x03})
	require.ErrorIs(t, err, ErrRenderFailed)
	assert.Equal(t, frames, eng.Stats().Frames, "failed render must not count")

	out.SetError(nil)
	require.NoError(t, eng.Process([]byte{0x03}))
	assert.Equal(t, frames+1, eng.Stats().Frames)
}

func TestRenderRecordsDuration(t *testing.T) {
	t.Parallel()
	eng, err := NewEngine(WithCapacity(1, 4), WithOutput(&slowOutput{delay: 2 * time.Millisecond}))
	require.NoError(t, err)

	require.NoError(t, eng.Process([]byte{0x03}))
	assert.GreaterOrEqual(t, eng.Stats().LastRenderDuration, 2*time.Millisecond)
}

type slowOutput struct {
	delay time.Duration
}

func (s *slowOutput) Show(_ []byte, _ uint8) error {
	time.Sleep(s.delay)
	return nil
}

func (s *slowOutput) Close() error { return nil }

func TestClear(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	require.NoError(t, eng.Process([]byte{0x01, 0x00, 0x00, 9, 9, 9}))
	shows := out.ShowCount()

	require.NoError(t, eng.Process([]byte{0x04}))

	assert.Equal(t, shows+1, out.ShowCount(), "clear renders")
	for _, b := range out.LastFrame() {
		require.Zero(t, b)
	}
}

func TestSetRange(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)

	// Two pixels starting at logical 1.
	require.NoError(t, eng.Process([]byte{
		0x05, 0x00, 0x01, 2,
		1, 2, 3,
		4, 5, 6,
	}))

	r, g, b, ok := eng.Buffer().At(1)
	require.True(t, ok)
	assert.Equal(t, [3]byte{1, 2, 3}, [3]byte{r, g, b})
	r, g, b, ok = eng.Buffer().At(2)
	require.True(t, ok)
	assert.Equal(t, [3]byte{4, 5, 6}, [3]byte{r, g, b})
	r, g, b, ok = eng.Buffer().At(0)
	require.True(t, ok)
	assert.Zero(t, r+g+b)
}

func TestSetRangeClampsAtWindowEnd(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)

	// Starts inside the window but claims 3 pixels where only 2 fit. The
	// payload carries all 3, so the length check passes and the write is
	// clamped.
	require.NoError(t, eng.Process([]byte{
		0x05, 0x00, 0x04, 3,
		1, 1, 1,
		2, 2, 2,
		3, 3, 3,
	}))

	r, g, b, ok := eng.Buffer().At(5)
	require.True(t, ok)
	assert.Equal(t, [3]byte{2, 2, 2}, [3]byte{r, g, b})
	assert.Zero(t, eng.Stats().Malformed)
}

func TestSetRangeStartBeyondWindow(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)

	require.NoError(t, eng.Process([]byte{0x05, 0x00, 0x06, 1, 7, 7, 7}))
	assert.Zero(t, eng.Stats().Malformed)
	for s := 0; s < eng.Buffer().Capacity(); s++ {
		r, g, b := eng.Buffer().Slot(s)
		assert.Zero(t, r+g+b)
	}
}

func TestSetRangeTruncatedPayload(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)

	// Claims 2 pixels, carries 1. Rejected against the raw claimed count,
	// even though clamping could have made the payload sufficient.
	err := eng.Process([]byte{0x05, 0x00, 0x05, 2, 1, 2, 3})
	require.ErrorIs(t, err, ErrPayloadTruncated)
	assert.Equal(t, uint64(1), eng.Stats().Malformed)

	for s := 0; s < eng.Buffer().Capacity(); s++ {
		r, g, b := eng.Buffer().Slot(s)
		assert.Zero(t, r+g+b, "rejected command must not mutate")
	}
}

func TestSetAll(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	shows := out.ShowCount()

	data := []byte{0x06}
	for i := 0; i < 6; i++ {
		data = append(data, byte(i+1), 0, 0)
	}
	require.NoError(t, eng.Process(data))

	assert.Equal(t, shows+1, out.ShowCount(), "set-all renders")
	for i := 0; i < 6; i++ {
		r, _, _, ok := eng.Buffer().At(i)
		require.True(t, ok)
		assert.Equal(t, byte(i+1), r)
	}
	// Slots 3 and 4 sit in the strip-0 tail, outside the window: idle.
	for _, s := range []int{3, 4, 8, 9} {
		r, g, b := eng.Buffer().Slot(s)
		assert.Zero(t, r+g+b, "slot %d should be idle", s)
	}
}

func TestSetAllOneByteShort(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	shows := out.ShowCount()

	data := make([]byte, 1+6*3-1)
	data[0] = 0x06
	for i := range data[1:] {
		data[1+i] = 0xEE
	}
	err := eng.Process(data)
	require.ErrorIs(t, err, ErrPayloadTruncated)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 19, cmdErr.Expected)
	assert.Equal(t, 18, cmdErr.Actual)

	assert.Equal(t, uint64(1), eng.Stats().Malformed)
	assert.Equal(t, shows, out.ShowCount(), "rejected set-all must not render")
	for s := 0; s < eng.Buffer().Capacity(); s++ {
		r, g, b := eng.Buffer().Slot(s)
		assert.Zero(t, r+g+b)
	}
}

func TestReconfigure(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	for i := 0; i < 6; i++ {
		require.True(t, eng.Buffer().SetPixel(i, 5, 5, 5))
	}
	shows := out.ShowCount()

	require.NoError(t, eng.Process([]byte{0x07, 1, 0x00, 0x02}))

	assert.Equal(t, Config{Strips: 1, LedsPerStrip: 2}, eng.Config())
	assert.Equal(t, shows+1, out.ShowCount(), "reconfigure renders")
	for s := 2; s < eng.Buffer().Capacity(); s++ {
		r, g, b := eng.Buffer().Slot(s)
		assert.Zero(t, r+g+b, "slot %d should be idle after shrink", s)
	}
}

func TestReconfigureRejected(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	shows := out.ShowCount()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", []byte{0x07, 1, 0}, ErrFrameTooShort},
		{"zero strips", []byte{0x07, 0, 0x00, 0x02}, ErrStripCountRange},
		{"too many strips", []byte{0x07, 3, 0x00, 0x02}, ErrStripCountRange},
		{"zero length", []byte{0x07, 1, 0x00, 0x00}, ErrStripLengthRange},
		{"length above capacity", []byte{0x07, 1, 0x00, 0x06}, ErrStripLengthRange},
	}
	for _, tt := range tests {
		err := eng.Process(tt.data)
		require.ErrorIs(t, err, tt.want, tt.name)
		assert.True(t, IsMalformed(err), tt.name)
	}

	assert.Equal(t, Config{Strips: 2, LedsPerStrip: 3}, eng.Config(), "rejected reconfigure keeps geometry")
	assert.Equal(t, shows, out.ShowCount())
	assert.Equal(t, uint64(len(tests)), eng.Stats().Malformed)
}

func TestReconfigureDebugFlag(t *testing.T) {
	eng, _ := newTestEngine(t)
	t.Cleanup(func() { SetDebugEnabled(false) })

	require.NoError(t, eng.Process([]byte{0x07, 2, 0x00, 0x03, 1}))
	assert.True(t, debugEnabled)

	require.NoError(t, eng.Process([]byte{0x07, 2, 0x00, 0x03, 0}))
	assert.False(t, debugEnabled)
}

func TestKeepaliveTogglesStatus(t *testing.T) {
	t.Parallel()
	toggles := 0
	eng, _ := newTestEngine(t, WithStatusIndicator(func() { toggles++ }))

	require.NoError(t, eng.Process([]byte{0xFF}))
	require.NoError(t, eng.Process([]byte{0xFF}))
	assert.Equal(t, 2, toggles)
	assert.Equal(t, uint64(2), eng.Stats().Transactions)
	assert.Zero(t, eng.Stats().ZeroPayload, "single-byte keepalive has no payload to judge")
}

func TestZeroPayloadCounter(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)

	require.NoError(t, eng.Process([]byte{0x01, 0x00, 0x00, 0, 0, 0}))
	assert.Equal(t, uint64(1), eng.Stats().ZeroPayload)

	require.NoError(t, eng.Process([]byte{0x01, 0x00, 0x00, 0, 0, 1}))
	assert.Equal(t, uint64(1), eng.Stats().ZeroPayload, "one live bit clears the anomaly")
}

func TestZeroPayloadExemption(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t, WithZeroPayloadExempt(0x06))

	data := make([]byte, 1+6*3)
	data[0] = 0x06
	require.NoError(t, eng.Process(data))
	assert.Zero(t, eng.Stats().ZeroPayload)

	// Non-exempt opcodes still count.
	require.NoError(t, eng.Process([]byte{0x02, 0}))
	assert.Equal(t, uint64(1), eng.Stats().ZeroPayload)
}

func TestUnknownOpcode(t *testing.T) {
	t.Parallel()
	eng, out := newTestEngine(t)
	shows := out.ShowCount()

	err := eng.Process([]byte{0x42, 1, 2, 3})
	require.Error(t, err)
	assert.True(t, IsUnknownOpcode(err))
	assert.False(t, IsMalformed(err))

	assert.Equal(t, uint64(1), eng.Stats().UnknownOpcodes)
	assert.Zero(t, eng.Stats().Malformed)
	assert.Equal(t, shows, out.ShowCount())
}

func TestEngineWithoutOutput(t *testing.T) {
	t.Parallel()
	eng, err := NewEngine(WithCapacity(1, 4))
	require.NoError(t, err)

	require.NoError(t, eng.Process([]byte{0x01, 0x00, 0x00, 1, 2, 3}))
	require.NoError(t, eng.Process([]byte{0x03}))
	assert.Equal(t, uint64(1), eng.Stats().Frames, "renders are accounted even with no driver")
}

func TestWithCapacityInvalid(t *testing.T) {
	t.Parallel()
	_, err := NewEngine(WithCapacity(0, 10))
	require.Error(t, err)
}
