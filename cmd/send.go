// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package cmd

import (
	"fmt"

	"github.com/openshade/shadowband/pkg/aok"
	"github.com/spf13/cobra"
)

var (
	sendDevice  string
	sendChannel string
	sendCommand string
	sendDryRun  bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Transmit an AOK command through the pulse bridge",
	Long: `Encode an AOK command as a pulse train and hand it to the bridge for
transmission.

The encoded transmission repeats the packet six times; UP and DOWN are
followed by an equal block of RELEASE repeats, matching what a physical
remote sends when the button is let go.

Examples:
  shadowband send --port /dev/ttyUSB0 --device 0x123456 --channel 1 --command up
  shadowband send --url ws://bridge.local/ws --device 0x123456 --channel all --command stop

Use --dry-run to print the pulse train instead of transmitting.`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendDevice, "device", "", "24-bit device identifier (decimal or 0x hex)")
	sendCmd.Flags().StringVar(&sendChannel, "channel", "", "Channel: 1-16, all, or a hex mask")
	sendCmd.Flags().StringVar(&sendCommand, "command", "", "Command: up, down, stop, or program")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "Print the pulse train instead of transmitting")
	sendCmd.MarkFlagRequired("device")
	sendCmd.MarkFlagRequired("channel")
	sendCmd.MarkFlagRequired("command")
}

// buildSendPacket assembles the packet from the send flags
func buildSendPacket() (aok.Packet, error) {
	device, err := aok.ParseDevice(sendDevice)
	if err != nil {
		return aok.Packet{}, err
	}
	channel, err := aok.ParseChannel(sendChannel)
	if err != nil {
		return aok.Packet{}, err
	}
	command, err := aok.ParseCommand(sendCommand)
	if err != nil {
		return aok.Packet{}, err
	}
	return aok.NewCommandPacket(device, channel, command)
}

func runSend(cmd *cobra.Command, args []string) error {
	packet, err := buildSendPacket()
	if err != nil {
		return err
	}

	buf := aok.NewTransmitBuffer()
	aok.NewEncoder().Encode(buf, packet)

	if sendDryRun {
		fmt.Println(aok.FormatPacket(packet))
		fmt.Printf("Transmission: %d pulse pairs (%d samples)\n\n", len(buf.Pulses()), len(buf.Durations()))
		fmt.Println(aok.FormatDurations(buf.Durations()))
		return nil
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	frame, err := aok.NewTransmitFrame(buf.CarrierFrequency(), buf.Durations())
	if err != nil {
		return fmt.Errorf("failed to encode bridge frame: %v", err)
	}
	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("failed to send transmit frame: %v", err)
	}

	fmt.Printf("Sent via %s\n", connInfo)
	fmt.Println(aok.FormatPacket(packet))
	if packet.Command == aok.CommandUp || packet.Command == aok.CommandDown {
		fmt.Println("RELEASE block appended automatically")
	}
	return nil
}
