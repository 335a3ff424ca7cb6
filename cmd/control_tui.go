// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/openshade/shadowband/pkg/aok"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusRemoteList = iota
	focusAddInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// Implement list.Item interface
func (r remote) Title() string { return r.name }
func (r remote) Description() string {
	return fmt.Sprintf("0x%06X ch %s", r.device, aok.FormatChannel(r.channel))
}
func (r remote) FilterValue() string { return r.name }

// controlLogEntry is one line in the event log
type controlLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	// Connection manager (for transmitting and reconnection)
	connMgr  *connectionManager
	connInfo string

	// Remote bank
	remotes    []remote
	remoteList list.Model

	// Add-remote form
	addInput     textinput.Model
	focusedField int

	// Event log
	eventLog      []controlLogEntry
	maxLogEntries int

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type controlCaptureMsg struct {
	result captureResult
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(connMgr *connectionManager, connInfo string, remotes []remote) controlModel {
	// Text input for the add-remote form
	ti := textinput.New()
	ti.Placeholder = "name:device:channel"
	ti.CharLimit = 40
	ti.Width = 24

	// Remote list
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	remoteList := list.New([]list.Item{}, delegate, 30, 10)
	remoteList.Title = "Remotes"
	remoteList.SetShowStatusBar(false)
	remoteList.SetShowHelp(false)
	remoteList.SetFilteringEnabled(false)

	m := controlModel{
		connMgr:       connMgr,
		connInfo:      connInfo,
		remotes:       remotes,
		remoteList:    remoteList,
		addInput:      ti,
		focusedField:  focusRemoteList,
		eventLog:      make([]controlLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
	m.updateRemoteList()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case controlTickMsg:
		return m, controlTickCmd()

	case controlCaptureMsg:
		result := msg.result
		if result.found {
			m.addLogEntry(fmt.Sprintf("heard %s ch %s dev 0x%06X",
				aok.FormatCommand(result.packet.Command),
				aok.FormatChannel(result.packet.Channel),
				result.packet.Device), false)
		}

	case connectionLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost - reconnecting...", true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected", false)
	}

	// Update child components
	var cmd tea.Cmd
	if m.focusedField == focusAddInput {
		m.addInput, cmd = m.addInput.Update(msg)
	}
	if m.focusedField == focusRemoteList {
		m.remoteList, cmd = m.remoteList.Update(msg)
	}

	return m, cmd
}

func (m *controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The add form swallows everything except escape and enter
	if m.focusedField == focusAddInput {
		switch msg.String() {
		case "esc":
			m.addInput.Blur()
			m.addInput.SetValue("")
			m.focusedField = focusRemoteList
			return m, nil
		case "enter":
			return m.handleAddRemote()
		default:
			var cmd tea.Cmd
			m.addInput, cmd = m.addInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "a":
		m.focusedField = focusAddInput
		m.addInput.Focus()
		return m, nil

	case "u", "o":
		return m.sendCommand(aok.CommandUp)

	case "d", "c":
		return m.sendCommand(aok.CommandDown)

	case "s":
		return m.sendCommand(aok.CommandStop)

	case "p":
		return m.sendCommand(aok.CommandProgram)

	case "up", "k", "down", "j":
		m.remoteList, _ = m.remoteList.Update(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.remoteList, cmd = m.remoteList.Update(msg)
	return m, cmd
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

func (m *controlModel) sendCommand(command aok.Command) (tea.Model, tea.Cmd) {
	if m.connectionLost {
		m.addLogEntry("Cannot send: connection lost", true)
		return m, nil
	}

	selected := m.getSelectedRemote()
	if selected == nil {
		m.addLogEntry("No remote selected (add one with 'a')", true)
		return m, nil
	}

	packet, err := aok.NewCommandPacket(selected.device, selected.channel, command)
	if err != nil {
		m.addLogEntry(fmt.Sprintf("Cannot send: %v", err), true)
		return m, nil
	}

	if err := m.connMgr.transmit(packet); err != nil {
		m.addLogEntry(fmt.Sprintf("Failed to send %s: %v", aok.FormatCommand(command), err), true)
		return m, nil
	}

	m.addLogEntry(fmt.Sprintf("Sent %s to %s (0x%06X ch %s)",
		aok.FormatCommand(command), selected.name,
		selected.device, aok.FormatChannel(selected.channel)), false)
	return m, nil
}

func (m *controlModel) handleAddRemote() (tea.Model, tea.Cmd) {
	spec := strings.TrimSpace(m.addInput.Value())
	if spec == "" {
		m.addInput.Blur()
		m.focusedField = focusRemoteList
		return m, nil
	}

	r, err := parseRemoteSpec(spec)
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	m.remotes = append(m.remotes, r)
	m.updateRemoteList()
	m.remoteList.Select(len(m.remotes) - 1)
	m.addLogEntry(fmt.Sprintf("Added remote %s (0x%06X ch %s)",
		r.name, r.device, aok.FormatChannel(r.channel)), false)

	m.addInput.Blur()
	m.addInput.SetValue("")
	m.focusedField = focusRemoteList
	return m, nil
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
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

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("SHADOWBAND CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | u=up d=down s=stop p=program a=add q=quit", connStatus)))
	s.WriteString("\n\n")

	// Layout: left panel (remotes) | right panel (selected remote)
	leftWidth := 30
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 20 {
		rightWidth = 20
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusRemoteList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	remotePanel := listStyle.Render(m.remoteList.View())

	detailContent := m.renderDetailPanel(labelStyle, valueStyle, headerStyle)
	detailStyle := boxStyle.Width(rightWidth)
	if m.focusedField == focusAddInput {
		detailStyle = focusedBoxStyle.Width(rightWidth)
	}
	detailPanel := detailStyle.Render(detailContent)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, remotePanel, " ", detailPanel))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(m.renderEventLog(labelStyle, valueStyle, errorStyle, headerStyle, boxStyle))

	return s.String()
}

func (m controlModel) renderDetailPanel(labelStyle, valueStyle, headerStyle lipgloss.Style) string {
	var s strings.Builder

	if m.focusedField == focusAddInput {
		s.WriteString(labelStyle.Render("Add remote"))
		s.WriteString("\n\n")
		s.WriteString(m.addInput.View())
		s.WriteString("\n\n")
		s.WriteString(headerStyle.Render("Format: name:device:channel\nExample: kitchen:0x123456:3\nEnter to add, Esc to cancel"))
		return s.String()
	}

	selected := m.getSelectedRemote()
	if selected == nil {
		s.WriteString(headerStyle.Render("No remotes configured.\nPress 'a' to add one, or use --remote."))
		return s.String()
	}

	s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Remote:"), valueStyle.Render(selected.name)))
	s.WriteString(fmt.Sprintf("%s 0x%06X\n", labelStyle.Render("Device:"), selected.device))
	s.WriteString(fmt.Sprintf("%s %s (0x%04X)\n\n", labelStyle.Render("Channel:"),
		valueStyle.Render(aok.FormatChannel(selected.channel)), uint16(selected.channel)))
	s.WriteString(headerStyle.Render("u=up  d=down  s=stop  p=program"))

	return s.String()
}

func (m controlModel) renderEventLog(labelStyle, valueStyle, errorStyle, headerStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	logHeight := m.height - 18
	if logHeight < 5 {
		logHeight = 5
	}

	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				s.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("x "+entry.message)))
			} else {
				s.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					valueStyle.Render("* "+entry.message)))
			}
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) addLogEntry(message string, isError bool) {
	entry := controlLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m *controlModel) getSelectedRemote() *remote {
	if len(m.remotes) == 0 {
		return nil
	}

	idx := m.remoteList.Index()
	if idx < 0 || idx >= len(m.remotes) {
		return nil
	}

	return &m.remotes[idx]
}

func (m *controlModel) updateRemoteList() {
	items := make([]list.Item, len(m.remotes))
	for i, r := range m.remotes {
		items[i] = r
	}
	m.remoteList.SetItems(items)
}

func (m *controlModel) updateListSize() {
	listHeight := m.height / 3
	if listHeight < 5 {
		listHeight = 5
	}
	m.remoteList.SetSize(28, listHeight)
}
