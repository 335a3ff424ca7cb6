// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

import (
	"testing"
)

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		packet   Packet
		expected uint8
	}{
		{
			name:     "reference remote STOP",
			packet:   Packet{Device: 0x123456, Channel: Channel1, Command: CommandStop},
			expected: 0xA1, // 0x56+0x34+0x12 + 0x00+0x01 + 0x23
		},
		{
			name:     "zero fields",
			packet:   Packet{},
			expected: 0x00,
		},
		{
			name:     "broadcast PROGRAM",
			packet:   Packet{Device: 0xFFFFFF, Channel: ChannelAll, Command: CommandProgram},
			expected: uint8((0xFF + 0xFF + 0xFF + 0xFF + 0xFF + 0x53) & 0xFF),
		},
		{
			name:     "byte sum wraps past 0xFF",
			packet:   Packet{Device: 0xFF00FF, Channel: Channel8, Command: CommandDown},
			expected: uint8((0xFF + 0x00 + 0xFF + 0x00 + 0x80 + 0x43) & 0xFF),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.packet.Checksum(); got != tt.expected {
				t.Errorf("Checksum mismatch: expected 0x%02X, got 0x%02X", tt.expected, got)
			}
		})
	}
}

func TestChecksum_LittleEndianByteOrder(t *testing.T) {
	// The device bytes must be summed in little-endian order. The sum is
	// commutative, so instead verify each byte participates individually.
	base := Packet{Device: 0x000000, Channel: Channel9, Command: CommandStop}
	perByte := []struct {
		device uint32
		delta  uint8
	}{
		{0x000001, 0x01},
		{0x000100, 0x01},
		{0x010000, 0x01},
	}
	for _, tt := range perByte {
		p := base
		p.Device = tt.device
		if got, want := p.Checksum(), base.Checksum()+tt.delta; got != want {
			t.Errorf("device=0x%06X: expected checksum 0x%02X, got 0x%02X", tt.device, want, got)
		}
	}
}

// ============================================================
// Packet Bits Tests
// ============================================================

func TestPacketBits_ReferenceLayout(t *testing.T) {
	p := Packet{Device: 0x123456, Channel: Channel1, Command: CommandStop}

	if got, want := p.Bits(), uint64(0xA3123456010023A1); got != want {
		t.Errorf("Bits mismatch: expected 0x%016X, got 0x%016X", want, got)
	}
}

func TestPacketBits_DeviceTruncation(t *testing.T) {
	// Oversized device identifiers are truncated to the 24-bit wire width
	// rather than spilling into the header field.
	p := Packet{Device: 0xFF123456, Channel: Channel2, Command: CommandUp}

	bits := p.Bits()
	if uint8(bits>>56) != Header {
		t.Errorf("header corrupted by oversized device: 0x%02X", uint8(bits>>56))
	}
	if got := uint32(bits >> 32 & 0xFFFFFF); got != 0x123456 {
		t.Errorf("expected truncated device 0x123456, got 0x%06X", got)
	}
}

func TestPacketFromBits_RoundTrip(t *testing.T) {
	want := Packet{Device: 0xABCDEF, Channel: Channel12, Command: CommandDown}

	got, ok := packetFromBits(want.Bits())
	if !ok {
		t.Fatal("expected valid packet")
	}
	if !got.Equal(want) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestPacketFromBits_RejectsBadHeader(t *testing.T) {
	bits := Packet{Device: 0x123456, Channel: Channel1, Command: CommandStop}.Bits()
	bits ^= uint64(0xFF) << 56

	if _, ok := packetFromBits(bits); ok {
		t.Error("expected rejection for corrupted header")
	}
}

func TestPacketFromBits_RejectsBadChecksum(t *testing.T) {
	bits := Packet{Device: 0x123456, Channel: Channel1, Command: CommandStop}.Bits()
	bits ^= 0x01 // trailing checksum byte

	if _, ok := packetFromBits(bits); ok {
		t.Error("expected rejection for corrupted checksum")
	}
}

func TestPacketEqual_IgnoresNothingElse(t *testing.T) {
	a := Packet{Device: 1, Channel: Channel1, Command: CommandUp}

	if !a.Equal(a) {
		t.Error("packet should equal itself")
	}
	for _, other := range []Packet{
		{Device: 2, Channel: Channel1, Command: CommandUp},
		{Device: 1, Channel: Channel2, Command: CommandUp},
		{Device: 1, Channel: Channel1, Command: CommandDown},
	} {
		if a.Equal(other) {
			t.Errorf("expected inequality with %+v", other)
		}
	}
}

// ============================================================
// Channel Helper Tests
// ============================================================

func TestChannelNumber_AllChannels(t *testing.T) {
	masks := []Channel{
		Channel1, Channel2, Channel3, Channel4, Channel5, Channel6, Channel7, Channel8,
		Channel9, Channel10, Channel11, Channel12, Channel13, Channel14, Channel15, Channel16,
	}
	for i, mask := range masks {
		if got := ChannelNumber(mask); got != i+1 {
			t.Errorf("ChannelNumber(0x%04X) = %d, want %d", uint16(mask), got, i+1)
		}
		back, err := ChannelFromNumber(i + 1)
		if err != nil || back != mask {
			t.Errorf("ChannelFromNumber(%d) = 0x%04X, %v; want 0x%04X", i+1, uint16(back), err, uint16(mask))
		}
	}

	if got := ChannelNumber(ChannelAll); got != 0 {
		t.Errorf("ChannelNumber(ALL) = %d, want 0", got)
	}
	if _, err := ChannelFromNumber(17); err == nil {
		t.Error("expected error for channel 17")
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"1", Channel1, false},
		{"16", Channel16, false},
		{"all", ChannelAll, false},
		{"ALL", ChannelAll, false},
		{"0x0100", Channel1, false},
		{"0", 0, true},
		{"17", 0, true},
		{"shade", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChannel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseChannel(%q) = 0x%04X, want 0x%04X", tt.in, uint16(got), uint16(tt.want))
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		want    Command
		wantErr bool
	}{
		{"up", CommandUp, false},
		{"open", CommandUp, false},
		{"DOWN", CommandDown, false},
		{"stop", CommandStop, false},
		{"program", CommandProgram, false},
		{"release", 0, true}, // never user-issued
		{"launch", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommand(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseCommand(%q) = 0x%02X, want 0x%02X", tt.in, uint8(got), uint8(tt.want))
		}
	}
}

func TestParseDevice(t *testing.T) {
	if d, err := ParseDevice("0x123456"); err != nil || d != 0x123456 {
		t.Errorf("ParseDevice(0x123456) = 0x%06X, %v", d, err)
	}
	if d, err := ParseDevice("4660"); err != nil || d != 4660 {
		t.Errorf("ParseDevice(4660) = %d, %v", d, err)
	}
	if _, err := ParseDevice("0x1000000"); err == nil {
		t.Error("expected error for device beyond 24 bits")
	}
}

func TestNewCommandPacket_RejectsRelease(t *testing.T) {
	if _, err := NewCommandPacket(0x123456, Channel1, CommandRelease); err == nil {
		t.Error("expected error for explicit RELEASE")
	}
	p, err := NewCommandPacket(0x123456, Channel1, CommandUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Command != CommandUp {
		t.Errorf("expected UP, got 0x%02X", uint8(p.Command))
	}
}

// ============================================================
// Validator Tests
// ============================================================

func TestValidatePacket(t *testing.T) {
	tests := []struct {
		name      string
		packet    Packet
		anomalies []AnomalyType
	}{
		{
			name:      "clean packet",
			packet:    Packet{Device: 0x123456, Channel: Channel3, Command: CommandUp},
			anomalies: nil,
		},
		{
			name:      "broadcast is well-formed",
			packet:    Packet{Device: 0x123456, Channel: ChannelAll, Command: CommandStop},
			anomalies: nil,
		},
		{
			name:      "unknown command",
			packet:    Packet{Device: 0x123456, Channel: Channel1, Command: 0x99},
			anomalies: []AnomalyType{AnomalyUnknownCommand},
		},
		{
			name:      "two channels set",
			packet:    Packet{Device: 0x123456, Channel: Channel1 | Channel2, Command: CommandStop},
			anomalies: []AnomalyType{AnomalyChannelMask},
		},
		{
			name:      "empty channel mask",
			packet:    Packet{Device: 0x123456, Channel: 0, Command: CommandStop},
			anomalies: []AnomalyType{AnomalyChannelMask},
		},
		{
			name:      "oversized device",
			packet:    Packet{Device: 0x1000000, Channel: Channel1, Command: CommandStop},
			anomalies: []AnomalyType{AnomalyDeviceRange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidatePacket(tt.packet)
			if errs == nil {
				t.Fatal("ValidatePacket returned nil slice")
			}
			if len(errs) != len(tt.anomalies) {
				t.Fatalf("expected %d anomalies, got %d: %v", len(tt.anomalies), len(errs), errs)
			}
			for i, want := range tt.anomalies {
				if errs[i].Type != want {
					t.Errorf("anomaly %d: expected type %d, got %d (%s)", i, want, errs[i].Type, errs[i].Message)
				}
			}
		})
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestFormatPacket(t *testing.T) {
	p := Packet{Device: 0x123456, Channel: Channel1, Command: CommandStop}
	want := "AOK: device=0x123456 channel=CH1 (0x0100) command=STOP (0x23) checksum=0xA1"
	if got := FormatPacket(p); got != want {
		t.Errorf("FormatPacket:\n got %q\nwant %q", got, want)
	}
}

func TestFormatChannel(t *testing.T) {
	tests := []struct {
		ch   Channel
		want string
	}{
		{Channel1, "CH1"},
		{Channel16, "CH16"},
		{ChannelAll, "ALL"},
		{Channel1 | Channel2, "0x0300"},
	}
	for _, tt := range tests {
		if got := FormatChannel(tt.ch); got != tt.want {
			t.Errorf("FormatChannel(0x%04X) = %q, want %q", uint16(tt.ch), got, tt.want)
		}
	}
}

func TestFormatCommand_Unknown(t *testing.T) {
	if got := FormatCommand(0x7F); got != "UNKNOWN" {
		t.Errorf("FormatCommand(0x7F) = %q, want UNKNOWN", got)
	}
}
