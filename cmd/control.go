// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package cmd

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openshade/shadowband/pkg/aok"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var controlRemoteSpecs []string

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for operating shades",
	Long: `Operate shades via an interactive terminal UI.

Remotes are virtual: each one is a device identifier plus a channel, and
the bridge transmits on their behalf. Define remotes up front with
--remote, or add them inside the TUI.

  shadowband control --port /dev/ttyUSB0 \
    --remote living:0x123456:1 --remote bedroom:0x123456:2

Keys:
  u/o - UP (open)       d/c - DOWN (close)
  s   - STOP            p   - PROGRAM (pairing)
  a   - add a remote    q   - quit

Captures heard by the bridge while the TUI is open are decoded and shown
in the event log, so you can watch physical remotes alongside your own
transmissions. The connection reconnects automatically if lost.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
	controlCmd.Flags().StringArrayVar(&controlRemoteSpecs, "remote", nil,
		"Virtual remote as name:device:channel (repeatable)")
}

// remote is a virtual remote: a device identity plus a channel
type remote struct {
	name    string
	device  uint32
	channel aok.Channel
}

// parseRemoteSpec parses a name:device:channel flag value
func parseRemoteSpec(spec string) (remote, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return remote{}, fmt.Errorf("invalid remote %q: expected name:device:channel", spec)
	}
	if parts[0] == "" {
		return remote{}, fmt.Errorf("invalid remote %q: empty name", spec)
	}
	device, err := aok.ParseDevice(parts[1])
	if err != nil {
		return remote{}, fmt.Errorf("invalid remote %q: %v", spec, err)
	}
	channel, err := aok.ParseChannel(parts[2])
	if err != nil {
		return remote{}, fmt.Errorf("invalid remote %q: %v", spec, err)
	}
	return remote{name: parts[0], device: device, channel: channel}, nil
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	conn     Connection
	connInfo string
	mu       sync.RWMutex
	p        *tea.Program
	done     chan struct{}
}

func (cm *connectionManager) getConn() Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

// transmit encodes a packet and hands it to the bridge
func (cm *connectionManager) transmit(packet aok.Packet) error {
	conn := cm.getConn()
	if conn == nil {
		return fmt.Errorf("connection lost")
	}

	buf := aok.NewTransmitBuffer()
	aok.NewEncoder().Encode(buf, packet)
	frame, err := aok.NewTransmitFrame(buf.CarrierFrequency(), buf.Durations())
	if err != nil {
		return err
	}
	_, err = conn.Write(frame)
	return err
}

func runControl(cmd *cobra.Command, args []string) error {
	remotes := make([]remote, 0, len(controlRemoteSpecs))
	for _, spec := range controlRemoteSpecs {
		r, err := parseRemoteSpec(spec)
		if err != nil {
			return err
		}
		remotes = append(remotes, r)
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}

	cm := &connectionManager{
		conn:     conn,
		connInfo: connInfo,
		done:     make(chan struct{}),
	}

	m := initialControlModel(cm, connInfo, remotes)

	p := tea.NewProgram(m, tea.WithAltScreen())
	cm.p = p

	go cm.readerLoop()

	if _, err := p.Run(); err != nil {
		close(cm.done)
		cm.getConn().Close()
		return fmt.Errorf("TUI error: %v", err)
	}

	close(cm.done)
	cm.getConn().Close()
	return nil
}

// readerLoop reads frames from the connection with automatic reconnection
func (cm *connectionManager) readerLoop() {
	for {
		select {
		case <-cm.done:
			return
		default:
		}

		connLost := cm.readFromConnection()

		if connLost {
			cm.p.Send(connectionLostMsg{})

			if !cm.reconnect() {
				return // Shutdown requested during reconnect
			}
		}
	}
}

// readFromConnection decodes capture frames until the connection fails.
// Returns true if the connection was lost, false if shutdown was requested.
func (cm *connectionManager) readFromConnection() bool {
	conn := cm.getConn()
	if conn == nil {
		return false
	}

	reader := aok.NewFrameReader(conn)
	for {
		select {
		case <-cm.done:
			return false
		default:
		}

		msgType, payload, err := reader.ReadFrame()
		if err != nil {
			select {
			case <-cm.done:
				return false
			default:
				return true // Connection lost
			}
		}

		if msgType != aok.MsgCapture {
			continue
		}
		if result, ok := decodeCapture(payload); ok {
			cm.p.Send(controlCaptureMsg{result: result})
		}
	}
}

// reconnect attempts to reconnect with exponential backoff.
// Returns false if shutdown was requested during reconnection.
func (cm *connectionManager) reconnect() bool {
	if conn := cm.getConn(); conn != nil {
		conn.Close()
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := OpenConnection()
		if err == nil {
			cm.setConn(conn, connInfo)
			cm.p.Send(reconnectedMsg{connInfo: connInfo})
			return true
		}

		// Exponential backoff
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
