// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package cmd

import (
	"fmt"
	"time"

	"github.com/openshade/shadowband/pkg/aok"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var sniffCmd = &cobra.Command{
	Use:   "sniff",
	Short: "Capture and decode remote traffic",
	Long: `Stream capture frames from the pulse bridge and decode each one.

Every capture is scanned for AOK transmissions. The scanner tolerates
leading noise, misaligned samples, and corrupted repeats, and tracks:
  - Bit timing, framing, header, and checksum errors
  - Noise skipped and realignments per capture
  - Anomalous packets (unknown commands, odd channel masks)
  - Capture and error rates

By default, only captures that yield a packet (or errors) are displayed.
Use --show-all to display empty captures too.`,
	RunE: runSniff,
}

func init() {
	rootCmd.AddCommand(sniffCmd)
	sniffCmd.Flags().BoolVar(&showAll, "show-all", false, "Show empty captures (not just decoded packets)")
	sniffCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	sniffCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

// captureResult is one decoded capture frame
type captureResult struct {
	packet           aok.Packet
	found            bool
	report           aok.ScanReport
	validationErrors []aok.ValidationError
	samples          int
	rssi             int64
	hasRSSI          bool
}

// decodeCapture runs the scanner over one capture payload
func decodeCapture(payload map[int]interface{}) (captureResult, bool) {
	durations, ok := aok.CaptureDurations(payload)
	if !ok {
		return captureResult{}, false
	}

	decoder := aok.NewDecoder()
	packet, found := decoder.Decode(aok.NewReceiveBuffer(durations))

	result := captureResult{
		packet:  packet,
		found:   found,
		report:  decoder.Report(),
		samples: len(durations),
	}
	if found {
		result.validationErrors = aok.ValidatePacket(packet)
	}
	if rssi, ok := aok.CaptureRSSI(payload); ok {
		result.rssi = rssi
		result.hasRSSI = true
	}
	return result, true
}

func runSniff(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if useTUI {
		return runSniffTUI(conn, connInfo)
	}
	return runSniffText(conn, connInfo)
}

// printCaptureResult prints one decoded capture in text mode
func printCaptureResult(result captureResult) {
	timestamp := time.Now().Format("15:04:05.000")

	if !result.found {
		fmt.Printf("[%s] \033[1;33mEMPTY CAPTURE:\033[0m %d samples, no valid packet", timestamp, result.samples)
		r := result.report
		if r.PacketsRejected > 0 {
			fmt.Printf(" (%d rejected: timing=%d framing=%d header=%d checksum=%d)",
				r.PacketsRejected, r.TimingErrors, r.FramingErrors, r.HeaderErrors, r.ChecksumErrors)
		}
		fmt.Printf("\n\n")
		return
	}

	fmt.Printf("[%s] \033[1;32mCAPTURE:\033[0m %s\n", timestamp, aok.FormatPacket(result.packet))
	fmt.Printf("  Repeats: %d valid", result.report.PacketsFound)
	if result.report.PacketsRejected > 0 {
		fmt.Printf(", %d rejected", result.report.PacketsRejected)
	}
	if result.report.SkippedPairs > 0 {
		fmt.Printf(", %d noise pairs skipped", result.report.SkippedPairs)
	}
	if result.hasRSSI {
		fmt.Printf(", RSSI %d dBm", result.rssi)
	}
	fmt.Printf("\n")

	for i, verr := range result.validationErrors {
		fmt.Printf("  Anomaly %d: \033[1;33m%s\033[0m\n", i+1, verr.Message)
	}
	fmt.Printf("\n")
}

// runSniffText streams captures in plain text mode
func runSniffText(conn Connection, connInfo string) error {
	fmt.Printf("Shadowband - Sniffer\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All captures\n")
	} else {
		fmt.Printf("Mode: Decoded packets only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := aok.NewStatistics()

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	// Channel for frames read off the connection
	frames := make(chan captureResult, 10)
	readErr := make(chan error, 1)
	go func() {
		reader := aok.NewFrameReader(conn)
		for {
			msgType, payload, err := reader.ReadFrame()
			if err != nil {
				readErr <- err
				return
			}
			if msgType != aok.MsgCapture {
				continue
			}
			if result, ok := decodeCapture(payload); ok {
				frames <- result
			}
		}
	}()

	for {
		select {
		case result := <-frames:
			stats.Update(result.found, result.report, result.validationErrors)
			if result.found || showAll {
				printCaptureResult(result)
			}

		case err := <-readErr:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
			return fmt.Errorf("connection lost: %v", err)

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}

// runSniffTUI streams captures in TUI mode
func runSniffTUI(conn Connection, connInfo string) error {
	m := initialSniffModel(connInfo, showAll)
	p := tea.NewProgram(m)

	go func() {
		reader := aok.NewFrameReader(conn)
		for {
			msgType, payload, err := reader.ReadFrame()
			if err != nil {
				p.Send(connLostMsg{err: err})
				return
			}
			if msgType != aok.MsgCapture {
				continue
			}
			if result, ok := decodeCapture(payload); ok {
				p.Send(captureMsg{result: result})
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
