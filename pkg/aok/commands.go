// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

import (
	"fmt"
	"strconv"
	"strings"
)

// Builder and parsing helpers for constructing packets from user-facing
// inputs. These keep channel-mask and command-code knowledge out of the
// CLI layer.

// NewCommandPacket creates a packet for a user action. RELEASE is not a
// user action - the encoder appends it automatically after UP and DOWN -
// so requesting it directly is rejected.
func NewCommandPacket(device uint32, channel Channel, command Command) (Packet, error) {
	if command == CommandRelease {
		return Packet{}, fmt.Errorf("RELEASE is sent automatically after UP and DOWN, not on its own")
	}
	return Packet{Device: device, Channel: channel, Command: command}, nil
}

// ChannelFromNumber returns the one-hot mask for a 1-based channel number
func ChannelFromNumber(n int) (Channel, error) {
	switch {
	case n >= 1 && n <= 8:
		return Channel(1 << (n + 7)), nil
	case n >= 9 && n <= 16:
		return Channel(1 << (n - 9)), nil
	default:
		return 0, fmt.Errorf("channel number %d out of range 1-16", n)
	}
}

// ParseChannel parses a user-supplied channel: a number 1-16, "all", or a
// raw hex mask like 0x0100.
func ParseChannel(s string) (Channel, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "all" {
		return ChannelAll, nil
	}
	if strings.HasPrefix(s, "0x") {
		mask, err := strconv.ParseUint(s[2:], 16, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid channel mask %q", s)
		}
		return Channel(mask), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid channel %q (use 1-16, all, or a hex mask)", s)
	}
	return ChannelFromNumber(n)
}

// ParseCommand parses a user-supplied command name
func ParseCommand(s string) (Command, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "up", "open":
		return CommandUp, nil
	case "down", "close":
		return CommandDown, nil
	case "stop":
		return CommandStop, nil
	case "program", "prog":
		return CommandProgram, nil
	default:
		return 0, fmt.Errorf("unknown command %q (use up, down, stop, or program)", s)
	}
}

// ParseDevice parses a user-supplied device identifier, decimal or hex
func ParseDevice(s string) (uint32, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	base := 10
	if strings.HasPrefix(s, "0x") {
		s = s[2:]
		base = 16
	}
	device, err := strconv.ParseUint(s, base, 32)
	if err != nil || device > 0xFFFFFF {
		return 0, fmt.Errorf("invalid device %q (24-bit identifier, decimal or 0x hex)", s)
	}
	return uint32(device), nil
}
