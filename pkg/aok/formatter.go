// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

import (
	"fmt"
	"math/bits"
	"strings"
)

// FormatPacket formats a packet into a human-readable one-line summary
func FormatPacket(p Packet) string {
	return fmt.Sprintf("AOK: device=0x%06X channel=%s (0x%04X) command=%s (0x%02X) checksum=0x%02X",
		p.Device, FormatChannel(p.Channel), uint16(p.Channel),
		FormatCommand(p.Command), uint8(p.Command), p.Checksum())
}

// FormatCommand returns the human-readable name for a command code
func FormatCommand(c Command) string {
	switch c {
	case CommandUp:
		return "UP"
	case CommandDown:
		return "DOWN"
	case CommandStop:
		return "STOP"
	case CommandProgram:
		return "PROGRAM"
	case CommandRelease:
		return "RELEASE"
	default:
		return "UNKNOWN"
	}
}

// FormatChannel returns the human-readable name for a channel mask.
// Masks that are neither one-hot nor broadcast are rendered as raw hex.
func FormatChannel(ch Channel) string {
	if ch == ChannelAll {
		return "ALL"
	}
	if bits.OnesCount16(uint16(ch)) != 1 {
		return fmt.Sprintf("0x%04X", uint16(ch))
	}
	return fmt.Sprintf("CH%d", ChannelNumber(ch))
}

// ChannelNumber returns the 1-based channel number for a one-hot mask,
// or 0 if the mask is not one-hot. Channels 1-8 occupy the high byte.
func ChannelNumber(ch Channel) int {
	if bits.OnesCount16(uint16(ch)) != 1 {
		return 0
	}
	if uint16(ch)&0xFF00 != 0 {
		return bits.TrailingZeros16(uint16(ch)) - 8 + 1
	}
	return bits.TrailingZeros16(uint16(ch)) + 9
}

// FormatDurations renders a flat duration slice as mark/space pairs,
// eight pairs per line, for pulse-train dumps.
func FormatDurations(durations []int32) string {
	var b strings.Builder
	for i := 0; i+1 < len(durations); i += 2 {
		if i > 0 && i%16 == 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%5d,%-5d ", durations[i], durations[i+1])
	}
	if len(durations)%2 != 0 {
		fmt.Fprintf(&b, "%5d", durations[len(durations)-1])
	}
	return strings.TrimRight(b.String(), " ")
}
