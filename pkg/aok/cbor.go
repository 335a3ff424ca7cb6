// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Bridge frames are CBOR messages of the shape [msg_type, payload_map],
// exchanged with the pulse bridge over serial or WebSocket. CBOR items are
// self-delimiting, so a stream needs no extra framing: feed the connection
// to cbor.NewDecoder and parse each item with ParseFrameValue.

// EncodeFrame encodes a bridge frame: [msgType, payloadMap]
func EncodeFrame(msgType uint8, payload map[int]interface{}) ([]byte, error) {
	var msg interface{}
	if len(payload) == 0 {
		msg = []interface{}{uint64(msgType), nil}
	} else {
		msg = []interface{}{uint64(msgType), payload}
	}
	return cbor.Marshal(msg)
}

// NewTransmitFrame builds a MsgTransmit frame carrying a carrier frequency
// in Hz (0 = baseband) and a flat mark/space duration train to replay.
func NewTransmitFrame(carrierHz uint32, durations []int32) ([]byte, error) {
	return EncodeFrame(MsgTransmit, map[int]interface{}{
		keyCarrier:   uint64(carrierHz),
		keyDurations: durations,
	})
}

// NewPingFrame builds a MsgPing frame
func NewPingFrame() ([]byte, error) {
	return EncodeFrame(MsgPing, nil)
}

// FrameReader splits a byte stream into bridge frames
type FrameReader struct {
	dec *cbor.Decoder
}

// NewFrameReader creates a frame reader over a bridge connection
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{dec: cbor.NewDecoder(r)}
}

// ReadFrame blocks until the next complete frame arrives and parses it.
// Stream errors (including io.EOF) pass through from the underlying reader.
func (f *FrameReader) ReadFrame() (msgType uint8, payload map[int]interface{}, err error) {
	var msg []interface{}
	if err := f.dec.Decode(&msg); err != nil {
		return 0, nil, err
	}
	return ParseFrameValue(msg)
}

// ParseFrame parses an encoded bridge frame.
// Returns the message type and decoded payload map (nil for empty payloads).
func ParseFrame(data []byte) (msgType uint8, payload map[int]interface{}, err error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("empty bridge frame")
	}

	var msg []interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return 0, nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}
	return ParseFrameValue(msg)
}

// ParseFrameValue parses an already-unmarshaled bridge frame, as produced
// by decoding a stream item into []interface{}.
func ParseFrameValue(msg []interface{}) (msgType uint8, payload map[int]interface{}, err error) {
	if len(msg) != 2 {
		return 0, nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	switch v := msg[0].(type) {
	case uint64:
		if v > 255 {
			return 0, nil, fmt.Errorf("message type out of range: %d", v)
		}
		msgType = uint8(v)
	default:
		return 0, nil, fmt.Errorf("expected uint for message type, got %T", msg[0])
	}

	if msg[1] == nil {
		return msgType, nil, nil
	}

	switch v := msg[1].(type) {
	case map[interface{}]interface{}:
		payload = make(map[int]interface{})
		for key, val := range v {
			switch k := key.(type) {
			case uint64:
				payload[int(k)] = val
			case int64:
				payload[int(k)] = val
			default:
				return 0, nil, fmt.Errorf("expected integer map key, got %T", key)
			}
		}
	default:
		return 0, nil, fmt.Errorf("expected map or nil for payload, got %T", msg[1])
	}

	return msgType, payload, nil
}

// CaptureDurations extracts the duration train from a MsgCapture or
// MsgTransmit payload. Durations arrive as a CBOR array of integers;
// negative values (some sniffers mark spaces with a sign) are folded to
// their magnitude.
func CaptureDurations(payload map[int]interface{}) ([]int32, bool) {
	if payload == nil {
		return nil, false
	}
	v, ok := payload[keyDurations]
	if !ok {
		return nil, false
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}

	durations := make([]int32, 0, len(raw))
	for _, item := range raw {
		switch d := item.(type) {
		case uint64:
			durations = append(durations, int32(d))
		case int64:
			if d < 0 {
				d = -d
			}
			durations = append(durations, int32(d))
		default:
			return nil, false
		}
	}
	return durations, true
}

// Map value extraction helpers

// GetMapUint extracts a uint64 from a frame payload map by key
func GetMapUint(m map[int]interface{}, key int) (uint64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case uint64:
		return val, true
	case int64:
		if val >= 0 {
			return uint64(val), true
		}
		return 0, false
	}
	return 0, false
}

// GetMapInt extracts an int64 from a frame payload map by key
func GetMapInt(m map[int]interface{}, key int) (int64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case uint64:
		return int64(val), true
	}
	return 0, false
}

// PongUptime extracts the uptime in milliseconds from a MsgPong payload
func PongUptime(payload map[int]interface{}) (uint64, bool) {
	return GetMapUint(payload, keyUptime)
}

// CaptureRSSI extracts the optional RSSI in dBm from a MsgCapture payload
func CaptureRSSI(payload map[int]interface{}) (int64, bool) {
	return GetMapInt(payload, keyRSSI)
}
