// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestTransmitFrame_RoundTrip(t *testing.T) {
	buf := NewTransmitBuffer()
	NewEncoder().Encode(buf, Packet{Device: 0x123456, Channel: Channel1, Command: CommandStop})

	frame, err := NewTransmitFrame(buf.CarrierFrequency(), buf.Durations())
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	msgType, payload, err := ParseFrame(frame)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if msgType != MsgTransmit {
		t.Errorf("expected MsgTransmit, got 0x%02X", msgType)
	}

	carrier, ok := GetMapUint(payload, keyCarrier)
	if !ok || carrier != 0 {
		t.Errorf("expected baseband carrier, got %d, %v", carrier, ok)
	}

	durations, ok := CaptureDurations(payload)
	if !ok {
		t.Fatal("missing durations")
	}
	want := buf.Durations()
	if len(durations) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(durations))
	}
	for i := range want {
		if durations[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], durations[i])
		}
	}
}

func TestCaptureFrame_SignedDurations(t *testing.T) {
	// Some sniffers mark spaces with a negative sign; magnitudes must
	// survive the trip.
	frame, err := EncodeFrame(MsgCapture, map[int]interface{}{
		keyDurations: []int32{5000, -600, 290, -600},
		keyRSSI:      int64(-72),
	})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	msgType, payload, err := ParseFrame(frame)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if msgType != MsgCapture {
		t.Errorf("expected MsgCapture, got 0x%02X", msgType)
	}

	durations, ok := CaptureDurations(payload)
	if !ok {
		t.Fatal("missing durations")
	}
	want := []int32{5000, 600, 290, 600}
	for i := range want {
		if durations[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], durations[i])
		}
	}

	rssi, ok := CaptureRSSI(payload)
	if !ok || rssi != -72 {
		t.Errorf("expected RSSI -72, got %d, %v", rssi, ok)
	}
}

func TestPingFrame(t *testing.T) {
	frame, err := NewPingFrame()
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	msgType, payload, err := ParseFrame(frame)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if msgType != MsgPing {
		t.Errorf("expected MsgPing, got 0x%02X", msgType)
	}
	if payload != nil {
		t.Errorf("expected nil payload, got %v", payload)
	}
}

func TestParseFrame_Malformed(t *testing.T) {
	if _, _, err := ParseFrame(nil); err == nil {
		t.Error("expected error for empty frame")
	}
	if _, _, err := ParseFrame([]byte{0xFF, 0xFF}); err == nil {
		t.Error("expected error for truncated CBOR")
	}

	// A one-element array is not a frame
	data, _ := cbor.Marshal([]interface{}{uint64(MsgPing)})
	if _, _, err := ParseFrame(data); err == nil {
		t.Error("expected error for one-element array")
	}
}

func TestFrameStream_MultipleFrames(t *testing.T) {
	// Bridge connections carry back-to-back CBOR items with no extra
	// framing; the stream decoder must split them.
	var stream bytes.Buffer

	for i := 0; i < 3; i++ {
		frame, err := EncodeFrame(MsgCapture, map[int]interface{}{
			keyDurations: []int32{5000, 600},
		})
		if err != nil {
			t.Fatalf("encode error: %v", err)
		}
		stream.Write(frame)
	}

	reader := NewFrameReader(&stream)
	for i := 0; i < 3; i++ {
		msgType, payload, err := reader.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: stream decode error: %v", i, err)
		}
		if msgType != MsgCapture {
			t.Errorf("frame %d: expected MsgCapture, got 0x%02X", i, msgType)
		}
		if _, ok := CaptureDurations(payload); !ok {
			t.Errorf("frame %d: missing durations", i)
		}
	}
}
