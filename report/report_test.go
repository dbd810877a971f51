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

package report

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/strandwire/ledbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReport(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := NewLog(&buf)

	r.Report(ledbridge.Snapshot{
		Transactions:       10,
		Frames:             4,
		Malformed:          1,
		ZeroPayload:        2,
		UnknownOpcodes:     3,
		Overruns:           5,
		LastRenderDuration: 1500 * time.Microsecond,
		Config:             ledbridge.Config{Strips: 2, LedsPerStrip: 60},
	})

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "stats: "), "line %q", line)
	assert.Contains(t, line, "transactions=10")
	assert.Contains(t, line, "frames=4")
	assert.Contains(t, line, "malformed=1")
	assert.Contains(t, line, "zero_payload=2")
	assert.Contains(t, line, "unknown=3")
	assert.Contains(t, line, "overruns=5")
	assert.Contains(t, line, "last_render=1.5ms")
	assert.Contains(t, line, "config=2x60")
}

type countingReporter struct {
	calls int
	last  ledbridge.Snapshot
}

func (c *countingReporter) Report(s ledbridge.Snapshot) {
	c.calls++
	c.last = s
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()
	a := &countingReporter{}
	b := &countingReporter{}

	Multi(a, b).Report(ledbridge.Snapshot{Frames: 7})

	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, uint64(7), b.last.Frames)
}

func TestWSBroadcast(t *testing.T) {
	t.Parallel()
	pub := NewWS()
	defer pub.Close()
	srv := httptest.NewServer(pub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return pub.ClientCount() == 1 }, time.Second, time.Millisecond)

	pub.Report(ledbridge.Snapshot{Transactions: 42, Frames: 9})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got ledbridge.Snapshot
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, uint64(42), got.Transactions)
	assert.Equal(t, uint64(9), got.Frames)
}

func TestWSDropsDeadClient(t *testing.T) {
	t.Parallel()
	pub := NewWS()
	defer pub.Close()
	srv := httptest.NewServer(pub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return pub.ClientCount() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return pub.ClientCount() == 0 }, time.Second, time.Millisecond)

	// Broadcasting with nobody connected is a no-op.
	pub.Report(ledbridge.Snapshot{})
}
