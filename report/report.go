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

// Package report emits periodic diagnostic snapshots: a plain stats line
// for a log, a websocket feed for dashboards, or both.
package report

import (
	"fmt"
	"io"

	"github.com/strandwire/ledbridge"
)

// Reporter consumes diagnostic snapshots. Implementations must not block
// for long: Report is called from the bridge's processing loop.
type Reporter interface {
	Report(s ledbridge.Snapshot)
}

// Log writes one stats line per snapshot.
type Log struct {
	w io.Writer
}

// NewLog returns a reporter writing to w.
func NewLog(w io.Writer) *Log {
	return &Log{w: w}
}

// Report writes the snapshot as a single line.
func (l *Log) Report(s ledbridge.Snapshot) {
	fmt.Fprintf(l.w, "stats: transactions=%d frames=%d malformed=%d zero_payload=%d unknown=%d overruns=%d last_render=%s config=%dx%d\n",
		s.Transactions, s.Frames, s.Malformed, s.ZeroPayload, s.UnknownOpcodes, s.Overruns, s.LastRenderDuration,
		s.Config.Strips, s.Config.LedsPerStrip)
}

type multi []Reporter

func (m multi) Report(s ledbridge.Snapshot) {
	for _, r := range m {
		r.Report(s)
	}
}

// Multi fans each snapshot out to every given reporter in order.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}
