// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

// Encoder encodes AOK packets into pulse trains.
type Encoder struct{}

// NewEncoder creates a new AOK pulse encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// EncodePacket emits one framed packet: the prefix pair, 64 data pairs
// most-significant-bit first, and the suffix pair (66 pairs total).
func (e *Encoder) EncodePacket(dst TransmitSink, p Packet) {
	dst.Item(PrefixMark, ZeroSpace)

	bits := p.Bits()
	for i := PacketBits - 1; i >= 0; i-- {
		if bits>>uint(i)&1 == 1 {
			dst.Item(OneMark, OneSpace)
		} else {
			dst.Item(ZeroMark, ZeroSpace)
		}
	}

	dst.Item(OneMark, SuffixSpace)
}

// Encode emits a complete transmission: preamble zeros, the packet
// repeated Repeats times, and a matching postamble. UP and DOWN are
// momentary buttons, so they are followed by an equal block of RELEASE
// repeats with the same device and channel.
func (e *Encoder) Encode(dst TransmitSink, p Packet) {
	// Baseband OOK, no carrier modulation
	dst.SetCarrierFrequency(0)
	dst.Reserve(TransmissionSize(p))

	for i := 0; i < PrePostZeros; i++ {
		dst.Item(ZeroMark, ZeroSpace)
	}

	for repeat := 0; repeat < Repeats; repeat++ {
		e.EncodePacket(dst, p)
	}

	if p.Command == CommandUp || p.Command == CommandDown {
		release := p
		release.Command = CommandRelease
		for repeat := 0; repeat < Repeats; repeat++ {
			e.EncodePacket(dst, release)
		}
	}

	for i := 0; i < PrePostZeros; i++ {
		dst.Item(ZeroMark, ZeroSpace)
	}
}

// TransmissionSize returns the exact sample count Encode will emit for the
// given packet, for sink preallocation.
func TransmissionSize(p Packet) int {
	blocks := 1
	if p.Command == CommandUp || p.Command == CommandDown {
		blocks = 2
	}
	pairs := PrePostZeros + (1+PacketBits+1)*blocks*Repeats + PrePostZeros
	return pairs * 2
}
