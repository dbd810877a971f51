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

//go:build linux

// Package rt holds small runtime tuning helpers for the latency-sensitive
// capture path.
package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// LockMemory pins current and future pages into RAM so the edge-capture
// path cannot stall on a page fault mid-transaction. Requires CAP_IPC_LOCK
// or a generous RLIMIT_MEMLOCK.
func LockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall failed: %w", err)
	}
	return nil
}
