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
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/strandwire/ledbridge"
	"github.com/strandwire/ledbridge/internal/syncutil"
)

// writeDeadline bounds each broadcast write so one stalled dashboard
// cannot back up the processing loop.
const writeDeadline = 200 * time.Millisecond

// WS broadcasts snapshots as JSON text messages to connected websocket
// clients. Register it as an http.Handler; every connected client gets
// every snapshot.
type WS struct {
	upgrader websocket.Upgrader

	mu      syncutil.Mutex
	clients map[*websocket.Conn]bool
	closed  bool
}

// NewWS returns a websocket snapshot publisher.
func NewWS() *WS {
	return &WS{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: map[*websocket.Conn]bool{},
	}
}

// ServeHTTP upgrades the request and registers the client. Clients are
// write-only; inbound messages are drained and discarded until the peer
// disconnects.
func (p *WS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = conn.Close()
		return
	}
	p.clients[conn] = true
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.clients, conn)
			p.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Report broadcasts the snapshot to all connected clients. A client that
// misses its write deadline is dropped.
func (p *WS) Report(s ledbridge.Snapshot) {
	b, err := json.Marshal(s)
	if err != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for conn := range p.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			delete(p.clients, conn)
			_ = conn.Close()
		}
	}
}

// ClientCount reports how many clients are connected.
func (p *WS) ClientCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// Close disconnects all clients and refuses new ones.
func (p *WS) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for conn := range p.clients {
		_ = conn.Close()
		delete(p.clients, conn)
	}
	return nil
}
