// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openshade/shadowband/pkg/aok"
	"github.com/spf13/cobra"
)

var (
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the bridge by sending ping frames",
	Long: `Send ping frames to the pulse bridge and wait for pong responses.

The bridge answers each ping with a pong carrying its uptime. This is
useful for verifying:
  - The connection is established (serial or WebSocket)
  - HTTP Basic authentication works
  - The bridge firmware is processing frames

Exit codes:
  0 - All pings answered
  1 - One or more pings failed or timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

// formatUptime formats uptime in milliseconds to human-friendly string
func formatUptime(ms uint64) string {
	if ms == 0 {
		return "0 seconds"
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	parts := []string{}
	if days > 0 {
		if days == 1 {
			parts = append(parts, "1 day")
		} else {
			parts = append(parts, fmt.Sprintf("%d days", days))
		}
	}
	if hours > 0 {
		if hours == 1 {
			parts = append(parts, "1 hour")
		} else {
			parts = append(parts, fmt.Sprintf("%d hours", hours))
		}
	}
	if minutes > 0 {
		if minutes == 1 {
			parts = append(parts, "1 minute")
		} else {
			parts = append(parts, fmt.Sprintf("%d minutes", minutes))
		}
	}
	if seconds > 0 || len(parts) == 0 {
		if seconds == 1 {
			parts = append(parts, "1 second")
		} else {
			parts = append(parts, fmt.Sprintf("%d seconds", seconds))
		}
	}

	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func runPing(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Shadowband - Bridge Ping\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	reader := aok.NewFrameReader(conn)
	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		frame, err := aok.NewPingFrame()
		if err != nil {
			fmt.Printf("ENCODE FAILED: %v\n", err)
			failCount++
			continue
		}

		startTime := time.Now()
		if _, err := conn.Write(frame); err != nil {
			fmt.Printf("SEND FAILED: %v\n", err)
			failCount++
			continue
		}

		// Wait for the pong, letting capture frames pass by
		responseChan := make(chan map[int]interface{}, 1)
		errChan := make(chan error, 1)

		go func() {
			for {
				msgType, payload, err := reader.ReadFrame()
				if err != nil {
					errChan <- err
					return
				}
				if msgType == aok.MsgPong {
					responseChan <- payload
					return
				}
				// Ignore captures and anything else
			}
		}()

		select {
		case payload := <-responseChan:
			rtt := time.Since(startTime)
			if uptime, ok := aok.PongUptime(payload); ok {
				fmt.Printf("PONG, bridge uptime=%s, rtt=%v\n", formatUptime(uptime), rtt.Round(time.Millisecond))
			} else {
				fmt.Printf("PONG, rtt=%v\n", rtt.Round(time.Millisecond))
			}
			successCount++

		case err := <-errChan:
			fmt.Printf("READ FAILED: %v\n", err)
			failCount++

		case <-time.After(time.Duration(pingTimeout) * time.Second):
			fmt.Printf("TIMEOUT (no response in %ds)\n", pingTimeout)
			failCount++
		}

		// Small delay between pings
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Summary
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% packet loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
