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

import "context"

// Source delivers one completed transaction's bytes at a time. How a
// transaction is delimited is the source's business: a driver-queued
// exchange, a select-line edge capture, or a gap-framed serial burst all
// implement the same contract. Implementations live under capture/.
type Source interface {
	// Next returns the next completed transaction. It blocks at most a
	// source-defined bounded interval and returns ErrNoTransaction when
	// the master sent nothing in that window; the caller just polls again.
	// The returned slice is only valid until the following Next call.
	Next(ctx context.Context) ([]byte, error)

	// Close releases the source. Next returns ErrSourceClosed afterwards.
	Close() error
}

// OverrunCounter is implemented by sources that can drop transactions when
// a new capture completes before the previous frame was drained. The bridge
// folds these into its diagnostic snapshots.
type OverrunCounter interface {
	Overruns() uint64
}
