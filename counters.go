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
	"sync/atomic"
	"time"
)

// Counters are the bridge's diagnostic tallies. All fields are monotonic
// and tolerate wraparound; they exist for observability, never for control
// flow. Increments happen on the engine's processing goroutine, reads may
// come from a reporter goroutine at any time.
type Counters struct {
	transactions   atomic.Uint64
	frames         atomic.Uint64
	malformed      atomic.Uint64
	zeroPayload    atomic.Uint64
	unknownOpcodes atomic.Uint64
	lastRenderNs   atomic.Int64
}

// Snapshot is a point-in-time copy of the diagnostic counters, suitable for
// a stats log line or telemetry emission.
type Snapshot struct {
	// Transactions is the number of non-empty transactions processed.
	Transactions uint64 `json:"transactions"`
	// Frames is the number of successful renders pushed to the output driver.
	Frames uint64 `json:"frames"`
	// Malformed counts rejected commands: short frames, truncated payloads,
	// and reconfigure field violations.
	Malformed uint64 `json:"malformed"`
	// ZeroPayload counts transactions whose payload bytes OR to zero.
	ZeroPayload uint64 `json:"zero_payload"`
	// UnknownOpcodes counts dropped unrecognized commands.
	UnknownOpcodes uint64 `json:"unknown_opcodes"`
	// Overruns counts transactions dropped because the previous frame was
	// still unconsumed when capture completed. Filled in by the bridge loop
	// when the source reports them; always zero straight from the engine.
	Overruns uint64 `json:"overruns"`
	// LastRenderDuration is how long the most recent output handoff took.
	// This is the dominant latency in the system.
	LastRenderDuration time.Duration `json:"last_render_duration"`
	// Config is the geometry active when the snapshot was taken. Filled in
	// by the bridge loop; zero straight from the engine counters.
	Config Config `json:"config"`
}

// Snapshot returns a consistent-enough copy for diagnostics. Individual
// loads are atomic; cross-field skew of a few in-flight increments is
// accepted behavior.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Transactions:       c.transactions.Load(),
		Frames:             c.frames.Load(),
		Malformed:          c.malformed.Load(),
		ZeroPayload:        c.zeroPayload.Load(),
		UnknownOpcodes:     c.unknownOpcodes.Load(),
		LastRenderDuration: time.Duration(c.lastRenderNs.Load()),
	}
}
