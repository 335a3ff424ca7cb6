// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 500
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 500
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomPacket builds a structurally well-formed random packet
func randomPacket(rng *rand.Rand) Packet {
	commands := []Command{CommandUp, CommandDown, CommandStop, CommandProgram}
	channel := ChannelAll
	if rng.Intn(4) != 0 {
		channel, _ = ChannelFromNumber(rng.Intn(16) + 1)
	}
	return Packet{
		Device:  rng.Uint32() & 0xFFFFFF,
		Channel: channel,
		Command: commands[rng.Intn(len(commands))],
	}
}

// ============================================================
// Round-Trip Fuzz Tests
// ============================================================

// TestFuzzRoundTrip_RandomPackets encodes random well-formed packets and
// verifies the decoder returns an equal packet
func TestFuzzRoundTrip_RandomPackets(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	encoder := NewEncoder()
	decoder := NewDecoder()

	for i := 0; i < rounds; i++ {
		want := randomPacket(rng)

		buf := NewTransmitBuffer()
		encoder.Encode(buf, want)

		got, ok := decoder.Decode(NewReceiveBuffer(buf.Durations()))
		if !ok {
			t.Errorf("Round %d: decode failed for %+v", i, want)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Round %d: round trip mismatch: got %+v, want %+v", i, got, want)
		}
	}
}

// TestFuzzRoundTrip_TimingJitter perturbs every duration inside the
// tolerance window and verifies decode still succeeds
func TestFuzzRoundTrip_TimingJitter(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	encoder := NewEncoder()
	decoder := NewDecoder()

	for i := 0; i < rounds; i++ {
		want := randomPacket(rng)

		buf := NewTransmitBuffer()
		encoder.Encode(buf, want)
		durations := buf.Durations()

		// Jitter each duration by up to ±10%, half the matching window
		for j, d := range durations {
			limit := int(d / 10)
			if limit > 0 {
				durations[j] = d + int32(rng.Intn(2*limit+1)-limit)
			}
		}

		got, ok := decoder.Decode(NewReceiveBuffer(durations))
		if !ok {
			t.Errorf("Round %d: jittered capture failed to decode for %+v", i, want)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Round %d: jittered round trip mismatch: got %+v, want %+v", i, got, want)
		}
	}
}

// TestFuzzRoundTrip_LeadingNoise prepends random sub-template noise and
// verifies the scanner still recovers the packet
func TestFuzzRoundTrip_LeadingNoise(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	encoder := NewEncoder()
	decoder := NewDecoder()

	for i := 0; i < rounds; i++ {
		want := randomPacket(rng)

		buf := NewTransmitBuffer()
		encoder.Encode(buf, want)

		// Noise stays below 200us so no sample can fall into any
		// template's matching window
		noiseSamples := rng.Intn(40) * 2
		capture := make([]int32, 0, noiseSamples+len(buf.Durations()))
		for j := 0; j < noiseSamples; j++ {
			capture = append(capture, int32(rng.Intn(150)+50))
		}
		capture = append(capture, buf.Durations()...)

		got, ok := decoder.Decode(NewReceiveBuffer(capture))
		if !ok {
			t.Errorf("Round %d: noisy capture failed to decode for %+v", i, want)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Round %d: noisy round trip mismatch: got %+v, want %+v", i, got, want)
		}
	}
}

// ============================================================
// Decoder Robustness Fuzz Tests
// ============================================================

// TestFuzzDecoder_RandomDurations feeds entirely random captures to the
// decoder and verifies it neither panics nor fabricates packets
func TestFuzzDecoder_RandomDurations(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	decoder := NewDecoder()

	for i := 0; i < rounds; i++ {
		length := rng.Intn(2000)
		durations := make([]int32, length)
		for j := range durations {
			durations[j] = int32(rng.Intn(8000))
		}

		// Random timing noise must never assemble into a packet: the
		// header and checksum gate makes that astronomically unlikely,
		// and fabricating one would be a decoder bug.
		if p, ok := decoder.Decode(NewReceiveBuffer(durations)); ok {
			t.Errorf("Round %d: decoded a packet from random noise: %+v", i, p)
		}
	}
}

// TestFuzzDecoder_BitFlips flips one random data pair per round and
// verifies the lone packet never decodes
func TestFuzzDecoder_BitFlips(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	encoder := NewEncoder()
	decoder := NewDecoder()

	for i := 0; i < rounds; i++ {
		p := randomPacket(rng)

		buf := NewTransmitBuffer()
		encoder.EncodePacket(buf, p)
		pulses := buf.Pulses()

		at := 1 + rng.Intn(PacketBits)
		if pulses[at] == OnePulse {
			pulses[at] = ZeroPulse
		} else {
			pulses[at] = OnePulse
		}

		flat := make([]int32, 0, len(pulses)*2)
		for _, pulse := range pulses {
			flat = append(flat, pulse.Mark, pulse.Space)
		}

		if got, ok := decoder.DecodePacket(NewReceiveBuffer(flat)); ok {
			t.Errorf("Round %d: bit-flipped packet decoded as %+v", i, got)
		}
	}
}
