// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

// Packet represents one decoded AOK command: a 24-bit device identifier,
// a channel mask, and a command code. It is a plain value; the checksum is
// derived from the other fields and is not part of packet identity.
type Packet struct {
	Device  uint32
	Channel Channel
	Command Command
}

// Checksum computes the trailing checksum byte: the low 8 bits of the sum
// of the three device bytes, the two channel bytes, and the command byte.
// Bytes are summed in little-endian order (byte 0 = least significant).
// Real remotes compute this over their in-memory field layout, so the byte
// extraction here must stay explicit rather than relying on native order.
func (p Packet) Checksum() uint8 {
	sum := uint16(p.Device&0xFF) + uint16((p.Device>>8)&0xFF) + uint16((p.Device>>16)&0xFF)
	sum += uint16(p.Channel&0xFF) + uint16(p.Channel>>8)
	sum += uint16(p.Command)
	return uint8(sum)
}

// Equal reports whether two packets carry the same device, channel, and
// command. Checksum is derived and does not participate.
func (p Packet) Equal(other Packet) bool {
	return p.Device == other.Device && p.Channel == other.Channel && p.Command == other.Command
}

// Bits assembles the 64-bit wire word, most-significant-bit first:
//
//	63-56  header (0xA3)
//	55-32  device
//	31-16  channel
//	15-8   command
//	7-0    checksum
//
// The device field is truncated to its 24-bit wire width.
func (p Packet) Bits() uint64 {
	return uint64(Header)<<56 |
		uint64(p.Device&0xFFFFFF)<<32 |
		uint64(p.Channel)<<16 |
		uint64(p.Command)<<8 |
		uint64(p.Checksum())
}

// packetFromBits reverses Bits. It rejects the word unless the header
// matches and the recomputed checksum equals the trailing byte, so a false
// return means the caller never sees a partially-valid packet.
func packetFromBits(bits uint64) (Packet, bool) {
	if uint8(bits>>56) != Header {
		return Packet{}, false
	}

	p := Packet{
		Device:  uint32(bits >> 32 & 0xFFFFFF),
		Channel: Channel(bits >> 16 & 0xFFFF),
		Command: Command(bits >> 8 & 0xFF),
	}

	if p.Checksum() != uint8(bits&0xFF) {
		return Packet{}, false
	}

	return p, true
}
