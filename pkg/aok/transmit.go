// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

// TransmitSink receives an encoded pulse train. The encoder drives one of
// these; the standard implementation is TransmitBuffer, but a transport
// layer feeding a radio peripheral directly can implement it instead.
type TransmitSink interface {
	// SetCarrierFrequency sets the modulation carrier in Hz. AOK is
	// baseband OOK, so the encoder always passes 0.
	SetCarrierFrequency(hz uint32)

	// Reserve hints the total transmission size in samples (individual
	// durations, two per pulse). Implementations may ignore it; it exists
	// so buffers can preallocate, not for correctness.
	Reserve(samples int)

	// Item appends one mark/space pair in microseconds.
	Item(mark, space int32)
}

// TransmitBuffer is an in-memory TransmitSink that accumulates the pulse
// train for later delivery to the pulse bridge.
type TransmitBuffer struct {
	carrierHz uint32
	pulses    []Pulse
}

// NewTransmitBuffer creates an empty transmit buffer
func NewTransmitBuffer() *TransmitBuffer {
	return &TransmitBuffer{}
}

// SetCarrierFrequency records the carrier frequency in Hz (0 = baseband)
func (t *TransmitBuffer) SetCarrierFrequency(hz uint32) {
	t.carrierHz = hz
}

// Reserve preallocates capacity for the given number of samples
func (t *TransmitBuffer) Reserve(samples int) {
	if cap(t.pulses) < samples/2 {
		grown := make([]Pulse, len(t.pulses), samples/2)
		copy(grown, t.pulses)
		t.pulses = grown
	}
}

// Item appends one mark/space pair
func (t *TransmitBuffer) Item(mark, space int32) {
	t.pulses = append(t.pulses, Pulse{mark, space})
}

// CarrierFrequency returns the configured carrier frequency in Hz
func (t *TransmitBuffer) CarrierFrequency() uint32 {
	return t.carrierHz
}

// Pulses returns the accumulated pulse train
func (t *TransmitBuffer) Pulses() []Pulse {
	return t.pulses
}

// Durations flattens the pulse train into alternating mark/space samples,
// the shape the bridge wire format and ReceiveBuffer both use.
func (t *TransmitBuffer) Durations() []int32 {
	out := make([]int32, 0, len(t.pulses)*2)
	for _, p := range t.pulses {
		out = append(out, p.Mark, p.Space)
	}
	return out
}
