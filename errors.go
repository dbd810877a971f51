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
	"fmt"
)

// Error categories for command decoding and capture sources
var (
	// Capture errors - a timeout is "no transaction this cycle", not a failure
	ErrNoTransaction   = errors.New("no transaction this cycle")
	ErrExchangeTimeout = errors.New("peripheral exchange timed out")
	ErrSourceClosed    = errors.New("capture source is closed")

	// Malformed frame errors - non-fatal, command dropped, no mutation
	ErrFrameTooShort    = errors.New("frame shorter than command minimum")
	ErrPayloadTruncated = errors.New("payload shorter than header implies")
	ErrUnknownOpcode    = errors.New("unknown opcode")

	// Reconfiguration errors - rejected without mutating state
	ErrStripCountRange  = errors.New("strip count out of range")
	ErrStripLengthRange = errors.New("strip length out of range")

	// Render errors - the output driver failed to latch the frame
	ErrRenderFailed = errors.New("render failed")
)

// CommandError wraps a rejected command with enough context to debug the
// master side: which command, what the frame looked like, and what the
// decoder expected of it.
type CommandError struct {
	Err      error  // Underlying sentinel
	Op       string // Command mnemonic
	Opcode   byte   // Wire opcode
	Expected int    // Expected transaction length, 0 if not length-related
	Actual   int    // Actual transaction length
}

func (e *CommandError) Error() string {
	if e.Expected > 0 {
		return fmt.Sprintf("%s (0x%02X): expected %d bytes, got %d: %v",
			e.Op, e.Opcode, e.Expected, e.Actual, e.Err)
	}
	return fmt.Sprintf("%s (0x%02X): %v", e.Op, e.Opcode, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsMalformed returns true if the error describes a frame the decoder
// rejected: too short, payload-truncated, or failing field validation.
// Malformed frames are never fatal; the master simply sends the next one.
func IsMalformed(err error) bool {
	switch {
	case errors.Is(err, ErrFrameTooShort),
		errors.Is(err, ErrPayloadTruncated),
		errors.Is(err, ErrStripCountRange),
		errors.Is(err, ErrStripLengthRange):
		return true
	default:
		return false
	}
}

// IsUnknownOpcode returns true if the error is an unrecognized-command drop.
func IsUnknownOpcode(err error) bool {
	return errors.Is(err, ErrUnknownOpcode)
}

// Error constructors for consistent error creation

// newTooShortError creates a minimum-length violation for a command.
func newTooShortError(op string, opcode byte, expected, actual int) *CommandError {
	return &CommandError{
		Op:       op,
		Opcode:   opcode,
		Expected: expected,
		Actual:   actual,
		Err:      ErrFrameTooShort,
	}
}

// newTruncatedError creates a payload-shorter-than-header-implies violation.
func newTruncatedError(op string, opcode byte, expected, actual int) *CommandError {
	return &CommandError{
		Op:       op,
		Opcode:   opcode,
		Expected: expected,
		Actual:   actual,
		Err:      ErrPayloadTruncated,
	}
}

// newRangeError creates a reconfigure field validation failure.
func newRangeError(op string, opcode byte, err error) *CommandError {
	return &CommandError{
		Op:     op,
		Opcode: opcode,
		Err:    err,
	}
}
