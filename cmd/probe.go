// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/openshade/shadowband/pkg/aok"
	"github.com/spf13/cobra"
)

var (
	probeTimeout int
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test the connection by waiting for a decodable capture",
	Long: `Wait for a capture frame that decodes to a valid AOK packet.

This command connects to the bridge and waits until a capture arrives
that the decoder accepts. Empty captures and noise are ignored; press a
button on a paired remote within the timeout window.

Exit codes:
  0 - Valid packet decoded before timeout
  1 - Timeout reached without decoding a packet
  2 - Connection error

Useful for verifying the bridge receiver and antenna placement.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a packet")
}

func runProbe(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Shadowband - Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for a decodable capture...\n\n")

	// Channel for the first decoded capture
	resultChan := make(chan captureResult, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		reader := aok.NewFrameReader(conn)
		emptyCaptures := 0
		for {
			msgType, payload, err := reader.ReadFrame()
			if err != nil {
				errChan <- err
				return
			}
			if msgType != aok.MsgCapture {
				continue
			}

			result, ok := decodeCapture(payload)
			if !ok {
				continue
			}
			if !result.found {
				// Noise or truncated capture, keep waiting
				emptyCaptures++
				continue
			}

			if emptyCaptures > 0 {
				fmt.Printf("(skipped %d empty captures)\n", emptyCaptures)
			}
			resultChan <- result
			return
		}
	}()

	// Wait for packet or timeout
	select {
	case result := <-resultChan:
		fmt.Printf("SUCCESS: Decoded valid packet\n")
		fmt.Printf("  %s\n", aok.FormatPacket(result.packet))
		fmt.Printf("  Repeats: %d valid, %d rejected\n",
			result.report.PacketsFound, result.report.PacketsRejected)
		if result.hasRSSI {
			fmt.Printf("  RSSI: %d dBm\n", result.rssi)
		}
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(probeTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No decodable capture within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}
