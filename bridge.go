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
	"errors"
	"fmt"
	"time"
)

// BridgeConfig tunes the processing loop.
type BridgeConfig struct {
	// OnStats, if set, receives a diagnostic snapshot every StatsInterval.
	OnStats func(Snapshot)
	// StatsInterval defaults to 5 seconds.
	StatsInterval time.Duration
}

// DefaultBridgeConfig returns the default loop configuration.
func DefaultBridgeConfig() *BridgeConfig {
	return &BridgeConfig{
		StatsInterval: 5 * time.Second,
	}
}

// Bridge is the main processing loop: it pulls completed transactions from
// a Source and feeds them to the Engine, strictly in completion order, one
// at a time. Protocol-level failures never stop the loop; only a closed
// source or a canceled context does.
type Bridge struct {
	engine *Engine
	src    Source
	config *BridgeConfig
}

// NewBridge wires an engine to a capture source.
func NewBridge(engine *Engine, src Source, config *BridgeConfig) *Bridge {
	if config == nil {
		config = DefaultBridgeConfig()
	}
	if config.StatsInterval <= 0 {
		config.StatsInterval = 5 * time.Second
	}
	return &Bridge{
		engine: engine,
		src:    src,
		config: config,
	}
}

// Engine returns the bridge's engine.
func (b *Bridge) Engine() *Engine {
	return b.engine
}

// Stats returns the engine snapshot with source overruns and the active
// geometry folded in.
func (b *Bridge) Stats() Snapshot {
	s := b.engine.Stats()
	if oc, ok := b.src.(OverrunCounter); ok {
		s.Overruns = oc.Overruns()
	}
	s.Config = b.engine.Config()
	return s
}

// Run processes transactions until the context is canceled or the source
// closes. A timeout from the source is simply "no transaction this cycle"
// and the loop iterates again.
func (b *Bridge) Run(ctx context.Context) error {
	var statsC <-chan time.Time
	if b.config.OnStats != nil {
		ticker := time.NewTicker(b.config.StatsInterval)
		defer ticker.Stop()
		statsC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-statsC:
			b.config.OnStats(b.Stats())
		default:
		}

		data, err := b.src.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoTransaction):
			continue
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return ctx.Err()
		case errors.Is(err, ErrSourceClosed):
			return fmt.Errorf("capture source closed: %w", err)
		default:
			return fmt.Errorf("capture failed: %w", err)
		}

		if perr := b.engine.Process(data); perr != nil {
			// Malformed or unknown commands are dropped; the master owns
			// recovery. A failed render is also non-fatal: the next
			// render-class command retries the output driver.
			Debugf("transaction dropped: %v", perr)
		}
	}
}
