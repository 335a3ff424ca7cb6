// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

import (
	"fmt"
	"math/bits"
)

// AnomalyType represents different kinds of packet anomalies
type AnomalyType int

const (
	AnomalyUnknownCommand AnomalyType = iota
	AnomalyChannelMask
	AnomalyDeviceRange
)

// ValidationError represents a packet validation finding
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidatePacket checks a packet for values a real remote would never
// produce. This is advisory: every reported packet already passed the
// decoder's header and checksum checks, and any bit pattern is legal on
// the wire. The transmit path does not call this either - channel
// well-formedness is the caller's responsibility.
func ValidatePacket(p Packet) []ValidationError {
	errors := []ValidationError{}

	switch p.Command {
	case CommandUp, CommandDown, CommandStop, CommandProgram, CommandRelease:
	default:
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownCommand,
			Message: fmt.Sprintf("unknown command code 0x%02X", uint8(p.Command)),
			Details: map[string]interface{}{"command": uint8(p.Command)},
		})
	}

	if p.Channel != ChannelAll && bits.OnesCount16(uint16(p.Channel)) != 1 {
		errors = append(errors, ValidationError{
			Type:    AnomalyChannelMask,
			Message: fmt.Sprintf("channel mask 0x%04X is neither one-hot nor broadcast", uint16(p.Channel)),
			Details: map[string]interface{}{"channel": uint16(p.Channel)},
		})
	}

	if p.Device > 0xFFFFFF {
		errors = append(errors, ValidationError{
			Type:    AnomalyDeviceRange,
			Message: fmt.Sprintf("device 0x%08X exceeds the 24-bit wire width", p.Device),
			Details: map[string]interface{}{"device": p.Device},
		})
	}

	return errors
}
