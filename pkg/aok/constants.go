// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

// Package aok provides a reference Go implementation of the AOK remote protocol.
//
// AOK is a fixed-length, timing-encoded OOK protocol used by AOK-family
// 433 MHz shade and blind remotes. This package provides pulse-train
// encoding/decoding, checksum validation, noisy-capture resynchronization,
// and the CBOR frame format spoken by the shadowband pulse bridge.
package aok

// Command represents the 8-bit command code carried in the wire packet
type Command uint8

// Command codes.
//
// CommandRelease is transmitted automatically after CommandUp and
// CommandDown; real remotes send it when the momentary button is let go,
// and receivers expect it. Callers never encode it directly.
const (
	CommandUp      Command = 0x0B
	CommandDown    Command = 0x43
	CommandStop    Command = 0x23
	CommandProgram Command = 0x53
	CommandRelease Command = 0x24
)

// Channel represents the 16-bit channel selection mask
type Channel uint16

// Channel masks. A well-formed channel selects exactly one of 16 channels
// or broadcasts to all of them. The upper byte carries channels 1-8 and the
// lower byte channels 9-16; this ordering is fixed by the hardware.
const (
	Channel1   Channel = 0x0100
	Channel2   Channel = 0x0200
	Channel3   Channel = 0x0400
	Channel4   Channel = 0x0800
	Channel5   Channel = 0x1000
	Channel6   Channel = 0x2000
	Channel7   Channel = 0x4000
	Channel8   Channel = 0x8000
	Channel9   Channel = 0x0001
	Channel10  Channel = 0x0002
	Channel11  Channel = 0x0004
	Channel12  Channel = 0x0008
	Channel13  Channel = 0x0010
	Channel14  Channel = 0x0020
	Channel15  Channel = 0x0040
	Channel16  Channel = 0x0080
	ChannelAll Channel = 0xFFFF
)

// Wire packet layout
const (
	Header     = 0xA3
	PacketBits = 64
)

// Pulse timing in microseconds. These are protocol-fixed, not tunable per
// instance: a transmitter using different constants will not pair with
// real AOK receivers.
const (
	PrefixMark  = 5000
	SuffixSpace = 5000
	OneMark     = 600
	OneSpace    = 275
	ZeroMark    = 290
	ZeroSpace   = 600
)

// TolerancePercent is the matching window applied to each measured
// duration during decode, as a percentage of the expected value.
const TolerancePercent = 25

// Transmission framing
const (
	// PrePostZeros is the number of zero-bit pairs sent before and after a
	// transmission. Most remotes (not old ones) do 7-8 zeros for a preamble;
	// doubling it and adding a postamble improves reliability with cheap OOK
	// modules like the STX882.
	PrePostZeros = 8 * 2

	// Repeats is the number of consecutive copies of the packet per command.
	Repeats = 6
)

// minPacketSamples is the sample count of one prefix + 64 bits + suffix.
const minPacketSamples = 2 + PacketBits*2 + 2

// Bridge frame message types, CBOR-encoded as [msg_type, payload_map]
const (
	MsgTransmit = 0x01
	MsgCapture  = 0x02
	MsgPing     = 0x03
	MsgPong     = 0x04
)

// Bridge frame payload keys
const (
	keyCarrier   = 0
	keyDurations = 1
	keyRSSI      = 2
	keyUptime    = 0
)
