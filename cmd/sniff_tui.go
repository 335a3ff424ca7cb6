// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/openshade/shadowband/pkg/aok"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Capture log entry
type captureLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for rejections and anomalies, false for info
}

// Sniffer TUI model
type sniffModel struct {
	connInfo      string
	showAll       bool
	stats         *aok.Statistics
	captureLog    []captureLogEntry
	maxLogEntries int
	lastPacket    *aok.Packet
	lastRSSI      int64
	hasRSSI       bool
	width         int
	height        int
	quitting      bool
}

// Messages
type tickMsg time.Time
type captureMsg struct {
	result captureResult
}
type connLostMsg struct {
	err error
}

func initialSniffModel(connInfo string, showAll bool) sniffModel {
	return sniffModel{
		connInfo:      connInfo,
		showAll:       showAll,
		stats:         aok.NewStatistics(),
		captureLog:    make([]captureLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m sniffModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m sniffModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		// Update statistics rates
		m.stats.CalculateRates()
		return m, tickCmd()

	case connLostMsg:
		m.addLogEntry(fmt.Sprintf("CONNECTION LOST: %v", msg.err), true)

	case captureMsg:
		result := msg.result
		m.stats.Update(result.found, result.report, result.validationErrors)

		if result.found {
			packet := result.packet
			m.lastPacket = &packet
			m.lastRSSI = result.rssi
			m.hasRSSI = result.hasRSSI

			entry := fmt.Sprintf("%s ch %s dev 0x%06X (%d/%d repeats)",
				aok.FormatCommand(packet.Command),
				aok.FormatChannel(packet.Channel),
				packet.Device,
				result.report.PacketsFound,
				result.report.PacketsFound+result.report.PacketsRejected)
			m.addLogEntry(entry, false)

			for _, verr := range result.validationErrors {
				m.addLogEntry(fmt.Sprintf("ANOMALY: %s", verr.Message), true)
			}
		} else if m.showAll {
			r := result.report
			m.addLogEntry(fmt.Sprintf("empty capture (%d samples, %d rejected)",
				result.samples, r.PacketsRejected), r.PacketsRejected > 0)
		}
	}

	return m, nil
}

func (m *sniffModel) addLogEntry(message string, isError bool) {
	entry := captureLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.captureLog = append(m.captureLog, entry)

	// Keep only last N entries
	if len(m.captureLog) > m.maxLogEntries {
		m.captureLog = m.captureLog[len(m.captureLog)-m.maxLogEntries:]
	}
}

func (m sniffModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("SHADOWBAND - SNIFFER"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | Press 'q' to quit",
		m.connInfo, func() string {
			if m.showAll {
				return "All captures"
			}
			return "Decoded only"
		}())))
	s.WriteString("\n\n")

	// Statistics
	m.stats.CalculateRates()
	var successPercent float64
	if m.stats.Transmissions > 0 {
		successPercent = float64(m.stats.Commands) * 100.0 / float64(m.stats.Transmissions)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Captures:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Transmissions)),
		statsLabelStyle.Render("Commands:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.Commands, successPercent)),
		statsLabelStyle.Render("Packets:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.PacketsDecoded)),
	))

	if m.stats.PacketsRejected > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d, %s: %d)\n",
			statsLabelStyle.Render("Rejected:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.PacketsRejected)),
			headerStyle.Render("timing"), m.stats.TimingErrors,
			headerStyle.Render("framing"), m.stats.FramingErrors,
			headerStyle.Render("header"), m.stats.HeaderErrors,
			headerStyle.Render("checksum"), m.stats.ChecksumErrors,
		))
	}

	if m.stats.SkippedPairs > 0 || m.stats.Misalignments > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Noise skipped:"), warningStyle.Render(fmt.Sprintf("%d pairs", m.stats.SkippedPairs)),
			statsLabelStyle.Render("Realignments:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.Misalignments)),
		))
	}

	if m.stats.AnomalousPackets > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s\n",
			statsLabelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousPackets)),
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Capture Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.CaptureRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Last decoded packet (only shown once something decoded)
	if m.lastPacket != nil {
		s.WriteString(statsLabelStyle.Render("Latest Command:"))
		s.WriteString("\n")

		packetContent := strings.Builder{}
		packetContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Command:"), statsValueStyle.Render(aok.FormatCommand(m.lastPacket.Command)),
			statsLabelStyle.Render("Channel:"), statsValueStyle.Render(aok.FormatChannel(m.lastPacket.Channel)),
		))
		packetContent.WriteString(fmt.Sprintf("%s %s   %s 0x%02X",
			statsLabelStyle.Render("Device:"), statsValueStyle.Render(fmt.Sprintf("0x%06X", m.lastPacket.Device)),
			statsLabelStyle.Render("Checksum:"), m.lastPacket.Checksum(),
		))
		if m.hasRSSI {
			packetContent.WriteString(fmt.Sprintf("   %s %s",
				statsLabelStyle.Render("RSSI:"), statsValueStyle.Render(fmt.Sprintf("%d dBm", m.lastRSSI)),
			))
		}

		s.WriteString(boxStyle.Render(packetContent.String()))
		s.WriteString("\n\n")
	}

	// Capture log
	s.WriteString(statsLabelStyle.Render("Recent Captures:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 15 // Reserve space for header and stats
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.captureLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.captureLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no captures yet)"))
	} else {
		for i := startIdx; i < len(m.captureLog); i++ {
			entry := m.captureLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					statsValueStyle.Render("● "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
