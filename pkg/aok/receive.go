// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

// ReceiveBuffer is a cursor over a captured pulse stream: a flat slice of
// alternating mark/space durations in microseconds, as delivered by the
// pulse bridge.
//
// Matching is two-phase: PeekPair tests without moving the cursor, and
// ExpectPair advances only when the pair matched. The decoder's scan and
// backtrack logic depends on failed matches being side-effect-free.
type ReceiveBuffer struct {
	durations []int32
	index     int
}

// NewReceiveBuffer creates a cursor positioned at the start of a capture
func NewReceiveBuffer(durations []int32) *ReceiveBuffer {
	return &ReceiveBuffer{durations: durations}
}

// Size returns the total number of samples in the capture
func (r *ReceiveBuffer) Size() int {
	return len(r.durations)
}

// Index returns the current cursor position in samples
func (r *ReceiveBuffer) Index() int {
	return r.index
}

// Advance moves the cursor forward by n samples
func (r *ReceiveBuffer) Advance(n int) {
	r.index += n
}

// PeekPair reports whether the two samples at the cursor plus offset match
// the expected pair within tolerance. The cursor does not move.
func (r *ReceiveBuffer) PeekPair(expected Pulse, offset int) bool {
	at := r.index + offset
	if at+1 >= len(r.durations) {
		return false
	}
	return withinTolerance(r.durations[at], expected.Mark) &&
		withinTolerance(r.durations[at+1], expected.Space)
}

// ExpectPair consumes the pair at the cursor if it matches the expected
// pair within tolerance. Returns false, without moving, if it does not.
func (r *ReceiveBuffer) ExpectPair(expected Pulse) bool {
	if !r.PeekPair(expected, 0) {
		return false
	}
	r.index += 2
	return true
}
