// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

// decodePacket outcomes, for scan diagnostics
const (
	decodeOK = iota
	decodeNoPrefix
	decodeBadBit
	decodeNoSuffix
	decodeBadHeader
	decodeBadChecksum
)

// ScanReport summarizes one Decode pass over a capture. A transmission
// carries up to 2x Repeats copies of the packet, so rejected copies are
// normal on noisy captures and only interesting as confidence signals.
type ScanReport struct {
	PacketsFound    int // packets that passed framing, header, and checksum
	PacketsRejected int // prefix found but packet failed to decode
	SkippedPairs    int // full pairs skipped as noise while hunting a prefix
	Misalignments   int // single-sample nudges applied during resync
	TimingErrors    int // rejections: a bit pair matched neither template
	FramingErrors   int // rejections: prefix or suffix missing
	HeaderErrors    int // rejections: header byte mismatch
	ChecksumErrors  int // rejections: checksum mismatch
}

// Decoder decodes AOK pulse captures back into packets.
type Decoder struct {
	report ScanReport
}

// NewDecoder creates a new AOK pulse decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Report returns diagnostics from the most recent Decode call
func (d *Decoder) Report() ScanReport {
	return d.report
}

// DecodePacket decodes a single framed packet at the cursor. It returns
// false for any failure - missing prefix or suffix, a pair matching
// neither bit template, a wrong header, or a checksum mismatch - and never
// a partial packet, since a bit-field reinterpretation of an invalid
// packet is indistinguishable from valid data.
func (d *Decoder) DecodePacket(src *ReceiveBuffer) (Packet, bool) {
	p, status := d.decodePacket(src)
	return p, status == decodeOK
}

func (d *Decoder) decodePacket(src *ReceiveBuffer) (Packet, int) {
	if !src.ExpectPair(PrefixPulse) {
		return Packet{}, decodeNoPrefix
	}

	// Capture the packet bits, MSB first
	var bits uint64
	for i := 0; i < PacketBits; i++ {
		switch {
		case src.ExpectPair(OnePulse):
			bits = bits<<1 | 1
		case src.ExpectPair(ZeroPulse):
			bits = bits << 1
		default:
			return Packet{}, decodeBadBit
		}
	}

	if !src.ExpectPair(SuffixPulse) {
		return Packet{}, decodeNoSuffix
	}

	if uint8(bits>>56) != Header {
		return Packet{}, decodeBadHeader
	}
	p, ok := packetFromBits(bits)
	if !ok {
		return Packet{}, decodeBadChecksum
	}
	return p, decodeOK
}

// Decode scans a whole capture for AOK transmissions and returns the first
// valid packet. Later copies - repeats, and the RELEASE block after UP or
// DOWN - are still decoded so the report reflects them, but they do not
// affect the returned value.
//
// Captured timing data tends to be noisy: edge-detection jitter shifts the
// stream by one sample far more often than by two. The scanner therefore
// tests the prefix at cursor+1 before skipping a whole pair, otherwise it
// would mis-synchronize on exactly the captures that need recovery most.
func (d *Decoder) Decode(src *ReceiveBuffer) (Packet, bool) {
	d.report = ScanReport{}

	// Cheap early exit: one repeat block plus the pre/post-amble is the
	// least a real transmission can occupy.
	if src.Size() < minPacketSamples*Repeats+PrePostZeros*2 {
		return Packet{}, false
	}

	var first Packet
	found := false

	for src.Index() < src.Size()-minPacketSamples {
		// Hunt for a packet prefix, fixing alignment as we go
		for !src.PeekPair(PrefixPulse, 0) {
			if src.PeekPair(PrefixPulse, 1) {
				src.Advance(1)
				d.report.Misalignments++
			} else {
				src.Advance(2)
				d.report.SkippedPairs++
			}

			// Out of room for even a minimum-size packet
			if src.Index() > src.Size()-minPacketSamples {
				return Packet{}, false
			}
		}

		packet, status := d.decodePacket(src)
		if status == decodeOK {
			d.report.PacketsFound++
			if !found {
				first = packet
				found = true
			}
			continue
		}

		d.report.PacketsRejected++
		switch status {
		case decodeBadBit:
			d.report.TimingErrors++
		case decodeNoPrefix, decodeNoSuffix:
			d.report.FramingErrors++
		case decodeBadHeader:
			d.report.HeaderErrors++
		case decodeBadChecksum:
			d.report.ChecksumErrors++
		}
	}

	return first, found
}
