// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openshade Project

package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/openshade/shadowband/pkg/aok"
	"github.com/spf13/cobra"
)

var (
	decodeCBOR    bool
	decodeVerbose bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a recorded pulse capture offline",
	Long: `Run the decoder over a capture recorded earlier, without a bridge.

By default the file holds pulse durations in microseconds as plain text,
separated by whitespace or commas. Signed values are accepted; some
sniffers mark spaces with a negative sign, and the sign is folded away.

With --cbor the file holds raw bridge frames as captured off the wire,
and every capture frame in it is decoded in order.

Reads stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeCBOR, "cbor", false, "Input is raw bridge frames instead of text durations")
	decodeCmd.Flags().BoolVar(&decodeVerbose, "verbose", false, "Print the scan report for each capture")
}

// parseDurationsText parses a plain-text duration listing. Values may be
// separated by any mix of whitespace and commas; signs are folded to
// magnitude.
func parseDurationsText(text string) ([]int32, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	durations := make([]int32, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %v", field, err)
		}
		if v < 0 {
			v = -v
		}
		durations = append(durations, int32(v))
	}

	if len(durations) == 0 {
		return nil, fmt.Errorf("no durations found")
	}
	return durations, nil
}

// reportDecode prints the result of decoding one capture
func reportDecode(label string, durations []int32) bool {
	decoder := aok.NewDecoder()
	packet, found := decoder.Decode(aok.NewReceiveBuffer(durations))
	report := decoder.Report()

	if found {
		fmt.Printf("%s%s\n", label, aok.FormatPacket(packet))
		fmt.Printf("  Repeats: %d valid, %d rejected\n", report.PacketsFound, report.PacketsRejected)
		for i, verr := range aok.ValidatePacket(packet) {
			fmt.Printf("  Anomaly %d: %s\n", i+1, verr.Message)
		}
	} else {
		fmt.Printf("%sno valid packet in %d samples\n", label, len(durations))
	}

	if decodeVerbose {
		fmt.Printf("  Scan: skipped=%d realigned=%d timing=%d framing=%d header=%d checksum=%d\n",
			report.SkippedPairs, report.Misalignments,
			report.TimingErrors, report.FramingErrors,
			report.HeaderErrors, report.ChecksumErrors)
	}
	return found
}

func runDecode(cmd *cobra.Command, args []string) error {
	var input io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %v", args[0], err)
		}
		defer f.Close()
		input = f
	}

	if decodeCBOR {
		reader := aok.NewFrameReader(input)
		captures := 0
		decoded := 0
		for {
			msgType, payload, err := reader.ReadFrame()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read frame: %v", err)
			}
			if msgType != aok.MsgCapture {
				continue
			}
			durations, ok := aok.CaptureDurations(payload)
			if !ok {
				continue
			}
			captures++
			if reportDecode(fmt.Sprintf("Capture %d: ", captures), durations) {
				decoded++
			}
		}
		if captures == 0 {
			return fmt.Errorf("no capture frames in input")
		}
		fmt.Printf("\n%d/%d captures decoded\n", decoded, captures)
		if decoded == 0 {
			os.Exit(1)
		}
		return nil
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %v", err)
	}
	durations, err := parseDurationsText(string(data))
	if err != nil {
		return err
	}
	if !reportDecode("", durations) {
		os.Exit(1)
	}
	return nil
}
