// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

// Pulse is one mark/space duration pair in microseconds. A mark is the
// interval where the OOK carrier is keyed on; the space is the idle
// interval that follows. One pair encodes one bit or a framing marker.
type Pulse struct {
	Mark  int32
	Space int32
}

// Timing templates for the four pair shapes on the wire. The prefix
// borrows the zero-bit space and the suffix borrows the one-bit mark.
var (
	PrefixPulse = Pulse{PrefixMark, ZeroSpace}
	SuffixPulse = Pulse{OneMark, SuffixSpace}
	OnePulse    = Pulse{OneMark, OneSpace}
	ZeroPulse   = Pulse{ZeroMark, ZeroSpace}
)

// withinTolerance reports whether a measured duration falls inside the
// matching window around the expected duration.
func withinTolerance(measured, expected int32) bool {
	delta := expected * TolerancePercent / 100
	return measured >= expected-delta && measured <= expected+delta
}
