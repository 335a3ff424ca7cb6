// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package aok

import (
	"fmt"
	"time"
)

// Statistics tracks capture statistics and error rates across Decode calls
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	Transmissions    uint64 // captures scanned
	Commands         uint64 // captures that yielded a valid packet
	EmptyCaptures    uint64 // captures with no valid packet anywhere
	PacketsDecoded   uint64 // individual valid packets, repeats included
	PacketsRejected  uint64
	TimingErrors     uint64
	FramingErrors    uint64
	HeaderErrors     uint64
	ChecksumErrors   uint64
	SkippedPairs     uint64
	Misalignments    uint64
	AnomalousPackets uint64

	// Rates (calculated)
	CaptureRate float64 // captures/sec
	ErrorRate   float64 // rejected packets/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update folds the result of one Decode call into the totals
func (s *Statistics) Update(found bool, report ScanReport, validationErrors []ValidationError) {
	s.Transmissions++
	if found {
		s.Commands++
	} else {
		s.EmptyCaptures++
	}

	s.PacketsDecoded += uint64(report.PacketsFound)
	s.PacketsRejected += uint64(report.PacketsRejected)
	s.TimingErrors += uint64(report.TimingErrors)
	s.FramingErrors += uint64(report.FramingErrors)
	s.HeaderErrors += uint64(report.HeaderErrors)
	s.ChecksumErrors += uint64(report.ChecksumErrors)
	s.SkippedPairs += uint64(report.SkippedPairs)
	s.Misalignments += uint64(report.Misalignments)

	if len(validationErrors) > 0 {
		s.AnomalousPackets++
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates capture and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.CaptureRate = float64(s.Transmissions) / elapsed
		s.ErrorRate = float64(s.PacketsRejected) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	successRate := 0.0
	if s.Transmissions > 0 {
		successRate = float64(s.Commands) / float64(s.Transmissions) * 100
	}

	return fmt.Sprintf(`=== Capture Statistics ===
Runtime:         %s
Captures:        %d (%.2f/sec)
Commands:        %d (%.1f%% of captures)
Empty captures:  %d
Packets decoded: %d
Packets rejected: %d (%.2f/sec)
  Bit timing:    %d
  Framing:       %d
  Header:        %d
  Checksum:      %d
Noise skipped:   %d pairs
Realignments:    %d
Anomalous:       %d`,
		time.Since(s.StartTime).Round(time.Second),
		s.Transmissions, s.CaptureRate,
		s.Commands, successRate,
		s.EmptyCaptures,
		s.PacketsDecoded,
		s.PacketsRejected, s.ErrorRate,
		s.TimingErrors,
		s.FramingErrors,
		s.HeaderErrors,
		s.ChecksumErrors,
		s.SkippedPairs,
		s.Misalignments,
		s.AnomalousPackets)
}
